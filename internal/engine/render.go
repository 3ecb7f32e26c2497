package engine

import (
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gosuda/scrawl/internal/canvas"
)

const (
	backgroundColor = "#0F172A"
	gridColor       = "#1E293B"
	gridSpacing     = 50.0
	strokeWidth     = 2.0
	arrowHeadLen    = 12.0
	defaultFontSize = 16.0
)

// textFont is the embedded face for text shapes; derived per draw at the
// shape's scaled size so rendered text matches its hit box.
var textFont = func() *truetype.Font {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
	return f
}()

// Render draws the current frame: background, reference grid, every shape
// under the view transform, and the in-progress drag preview. Shape
// coordinates stay room-space; the transform is applied per draw call.
func (e *Engine) Render() image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()

	dc := gg.NewContext(e.width, e.height)

	dc.SetHexColor(backgroundColor)
	dc.Clear()

	e.renderGrid(dc)

	dc.SetLineWidth(strokeWidth)
	for _, s := range e.shapes {
		e.renderShape(dc, s)
	}
	if preview, ok := e.previewShape(); ok {
		e.renderShape(dc, preview)
	}

	return dc.Image()
}

// previewShape builds the transient shape for an in-progress drag. It
// carries no ID; it is never applied or sent.
func (e *Engine) previewShape() (canvas.Shape, bool) {
	if !e.dragging {
		return canvas.Shape{}, false
	}
	switch e.tool {
	case ToolRect:
		return canvas.Shape{
			Type:   canvas.ShapeRect,
			X:      math.Min(e.originX, e.curX),
			Y:      math.Min(e.originY, e.curY),
			Width:  math.Abs(e.curX - e.originX),
			Height: math.Abs(e.curY - e.originY),
			Color:  e.color,
		}, true
	case ToolCircle:
		dx := e.curX - e.originX
		dy := e.curY - e.originY
		return canvas.Shape{
			Type:    canvas.ShapeCircle,
			CenterX: e.originX + dx/2,
			CenterY: e.originY + dy/2,
			Radius:  math.Hypot(dx, dy) / 2,
			Color:   e.color,
		}, true
	case ToolLine, ToolArrow, ToolPencil:
		return canvas.Shape{
			Type:   canvas.ShapeType(e.tool),
			StartX: e.originX,
			StartY: e.originY,
			EndX:   e.curX,
			EndY:   e.curY,
			Color:  e.color,
		}, true
	}
	return canvas.Shape{}, false
}

func (e *Engine) renderGrid(dc *gg.Context) {
	step := gridSpacing * e.view.Scale
	if step < 4 {
		// Grid would be denser than readable at extreme zoom-out.
		return
	}

	dc.SetHexColor(gridColor)
	dc.SetLineWidth(1)

	w := float64(e.width)
	h := float64(e.height)
	for x := math.Mod(e.view.OffsetX, step); x < w; x += step {
		dc.DrawLine(x, 0, x, h)
	}
	for y := math.Mod(e.view.OffsetY, step); y < h; y += step {
		dc.DrawLine(0, y, w, y)
	}
	dc.Stroke()
}

func (e *Engine) renderShape(dc *gg.Context, s canvas.Shape) {
	v := e.view
	dc.SetHexColor(s.DisplayColor())

	switch s.Type {
	case canvas.ShapeRect:
		x, y := v.ToScreen(s.X, s.Y)
		dc.DrawRectangle(x, y, s.Width*v.Scale, s.Height*v.Scale)
		dc.Stroke()

	case canvas.ShapeCircle:
		cx, cy := v.ToScreen(s.CenterX, s.CenterY)
		dc.DrawCircle(cx, cy, s.Radius*v.Scale)
		dc.Stroke()

	case canvas.ShapeLine, canvas.ShapePencil:
		x0, y0 := v.ToScreen(s.StartX, s.StartY)
		x1, y1 := v.ToScreen(s.EndX, s.EndY)
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()

	case canvas.ShapeArrow:
		x0, y0 := v.ToScreen(s.StartX, s.StartY)
		x1, y1 := v.ToScreen(s.EndX, s.EndY)
		dc.DrawLine(x0, y0, x1, y1)
		// Arrow head: two barbs at 30 degrees off the shaft.
		angle := math.Atan2(y1-y0, x1-x0)
		for _, off := range []float64{math.Pi / 6, -math.Pi / 6} {
			dc.DrawLine(x1, y1,
				x1-arrowHeadLen*math.Cos(angle-off),
				y1-arrowHeadLen*math.Sin(angle-off))
		}
		dc.Stroke()

	case canvas.ShapeText:
		x, y := v.ToScreen(s.X, s.Y)
		size := s.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		dc.SetFontFace(truetype.NewFace(textFont, &truetype.Options{Size: size * v.Scale}))
		dc.DrawString(s.Content, x, y)
	}
}
