package engine

// Scale bounds for the zoom lens.
const (
	MinScale = 0.1
	MaxScale = 5.0
)

// ViewTransform is the client-local pan/zoom lens mapping room-space
// coordinates to screen-space. It is never sent over the wire; shapes are
// always stored in room-space.
type ViewTransform struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
}

// NewViewTransform returns the identity lens.
func NewViewTransform() ViewTransform {
	return ViewTransform{Scale: 1}
}

// ToRoom maps a screen-space point to room-space.
func (v ViewTransform) ToRoom(sx, sy float64) (float64, float64) {
	return (sx - v.OffsetX) / v.Scale, (sy - v.OffsetY) / v.Scale
}

// ToScreen maps a room-space point to screen-space.
func (v ViewTransform) ToScreen(rx, ry float64) (float64, float64) {
	return rx*v.Scale + v.OffsetX, ry*v.Scale + v.OffsetY
}

// Pan shifts the lens by a screen-space delta.
func (v ViewTransform) Pan(dx, dy float64) ViewTransform {
	v.OffsetX += dx
	v.OffsetY += dy
	return v
}

// Zoom multiplies the scale by factor, clamped to [MinScale, MaxScale],
// recentering on the screen-space point (sx, sy) so the room point under
// the cursor stays fixed.
func (v ViewTransform) Zoom(factor, sx, sy float64) ViewTransform {
	next := v.Scale * factor
	if next < MinScale {
		next = MinScale
	}
	if next > MaxScale {
		next = MaxScale
	}
	ratio := next / v.Scale
	v.OffsetX = sx - (sx-v.OffsetX)*ratio
	v.OffsetY = sy - (sy-v.OffsetY)*ratio
	v.Scale = next
	return v
}
