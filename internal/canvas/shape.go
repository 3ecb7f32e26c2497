package canvas

import (
	"math"

	"github.com/oklog/ulid/v2"
)

// ShapeType tags the variant of a Shape.
type ShapeType string

const (
	ShapeRect   ShapeType = "rect"
	ShapeCircle ShapeType = "circle"
	ShapeLine   ShapeType = "line"
	ShapeArrow  ShapeType = "arrow"
	ShapePencil ShapeType = "pencil" // freehand segment
	ShapeText   ShapeType = "text"
)

// DefaultColor is used when a shape carries no explicit color. Color is a
// display attribute only.
const DefaultColor = "#FFFFFF"

// MinDragSize is the minimum width/height/radius, in device-independent
// pixels, below which a drag is considered degenerate and produces no shape.
const MinDragSize = 2.0

// Shape is a drawable primitive. Which fields are meaningful depends on
// Type: rect uses X/Y/Width/Height, circle uses CenterX/CenterY/Radius,
// line/arrow/pencil use StartX/StartY/EndX/EndY, text uses
// X/Y/Content/FontSize. Coordinates are always room-space, never
// screen-space. ID is a ULID assigned at creation and is the stable handle
// deletes and moves refer to.
type Shape struct {
	ID   string    `json:"id"`
	Type ShapeType `json:"type"`

	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	CenterX float64 `json:"centerX,omitempty"`
	CenterY float64 `json:"centerY,omitempty"`
	Radius  float64 `json:"radius,omitempty"`

	StartX float64 `json:"startX,omitempty"`
	StartY float64 `json:"startY,omitempty"`
	EndX   float64 `json:"endX,omitempty"`
	EndY   float64 `json:"endY,omitempty"`

	Content  string  `json:"content,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`

	Color string `json:"color,omitempty"`
}

// NewShapeID returns a fresh ULID string. ULIDs sort by creation time, so
// shape lists stay ordered even after a replace-in-place.
func NewShapeID() string {
	return ulid.Make().String()
}

// RectFromDrag builds a normalized rect from two drag endpoints. The
// bounding box is computed via min/abs so width and height are never
// negative. Returns false for drags below MinDragSize in both dimensions.
func RectFromDrag(x0, y0, x1, y1 float64, color string) (Shape, bool) {
	w := math.Abs(x1 - x0)
	h := math.Abs(y1 - y0)
	if w < MinDragSize && h < MinDragSize {
		return Shape{}, false
	}
	return Shape{
		ID:     NewShapeID(),
		Type:   ShapeRect,
		X:      math.Min(x0, x1),
		Y:      math.Min(y0, y1),
		Width:  w,
		Height: h,
		Color:  color,
	}, true
}

// CircleFromDrag builds a circle inscribed in the drag's bounding box:
// center at the drag midpoint, radius half the drag diagonal. Radius is
// always >= 0. Returns false for degenerate drags.
func CircleFromDrag(x0, y0, x1, y1 float64, color string) (Shape, bool) {
	dx := x1 - x0
	dy := y1 - y0
	r := math.Hypot(dx, dy) / 2
	if r < MinDragSize {
		return Shape{}, false
	}
	return Shape{
		ID:      NewShapeID(),
		Type:    ShapeCircle,
		CenterX: x0 + dx/2,
		CenterY: y0 + dy/2,
		Radius:  r,
		Color:   color,
	}, true
}

// SegmentFromDrag builds a line, arrow, or pencil segment between two drag
// endpoints. Zero-length segments are allowed (a dot is a valid stroke).
func SegmentFromDrag(t ShapeType, x0, y0, x1, y1 float64, color string) Shape {
	return Shape{
		ID:     NewShapeID(),
		Type:   t,
		StartX: x0,
		StartY: y0,
		EndX:   x1,
		EndY:   y1,
		Color:  color,
	}
}

// TextAt builds a text shape anchored at (x, y).
func TextAt(x, y float64, content string, fontSize float64, color string) Shape {
	return Shape{
		ID:       NewShapeID(),
		Type:     ShapeText,
		X:        x,
		Y:        y,
		Content:  content,
		FontSize: fontSize,
		Color:    color,
	}
}

// DisplayColor returns the shape's color, or DefaultColor when unset.
func (s Shape) DisplayColor() string {
	if s.Color == "" {
		return DefaultColor
	}
	return s.Color
}

// Translate returns a copy of the shape moved by (dx, dy). The fields that
// move depend on the variant: rect and text move their anchor, circle its
// center, segment shapes both endpoints.
func (s Shape) Translate(dx, dy float64) Shape {
	switch s.Type {
	case ShapeRect, ShapeText:
		s.X += dx
		s.Y += dy
	case ShapeCircle:
		s.CenterX += dx
		s.CenterY += dy
	case ShapeLine, ShapeArrow, ShapePencil:
		s.StartX += dx
		s.StartY += dy
		s.EndX += dx
		s.EndY += dy
	}
	return s
}
