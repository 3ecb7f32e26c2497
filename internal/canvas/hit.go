package canvas

import "math"

// hitTolerance is the extra slop, in room-space pixels, granted around
// circles, lines, and arrows when hit-testing.
const hitTolerance = 5.0

// textCharWidth approximates the rendered width of one character when
// hit-testing text shapes.
const textCharWidth = 8.0

// Hits reports whether the room-space point (px, py) lands on the shape.
func (s Shape) Hits(px, py float64) bool {
	switch s.Type {
	case ShapeRect:
		return px >= s.X && px <= s.X+s.Width && py >= s.Y && py <= s.Y+s.Height
	case ShapeCircle:
		return math.Hypot(px-s.CenterX, py-s.CenterY) <= s.Radius+hitTolerance
	case ShapeLine, ShapeArrow, ShapePencil:
		return segmentDistance(px, py, s.StartX, s.StartY, s.EndX, s.EndY) <= hitTolerance
	case ShapeText:
		w := float64(len(s.Content)) * textCharWidth
		return px >= s.X && px <= s.X+w && py >= s.Y-s.FontSize && py <= s.Y
	}
	return false
}

// HitTest scans shapes from most-recently-drawn to least-recently-drawn
// and returns the index of the first shape containing (px, py), so newer
// shapes occlude older ones for both erase and move. Returns -1 on miss.
func HitTest(shapes []Shape, px, py float64) int {
	for i := len(shapes) - 1; i >= 0; i-- {
		if shapes[i].Hits(px, py) {
			return i
		}
	}
	return -1
}

// segmentDistance is the distance from point (px, py) to the segment
// (x0,y0)-(x1,y1), clamping the projection to the segment's extent.
func segmentDistance(px, py, x0, y0, x1, y1 float64) float64 {
	dx := x1 - x0
	dy := y1 - y0
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-x0, py-y0)
	}
	t := ((px-x0)*dx + (py-y0)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(x0+t*dx), py-(y0+t*dy))
}
