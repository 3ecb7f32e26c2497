package canvas

// Apply folds one operation into a shape list and returns the new list.
// This is the single reconstruction rule: a draw appends, unless a shape
// with the same ID is already present, in which case it is replaced in
// place (last write wins per shape, which makes re-applying a broadcast
// echo or a move's corrected copy idempotent); a delete removes the shape
// with the matching ID, and an unknown ID is a no-op; a clear resets the
// list. The same rule runs incrementally on a live stream and in bulk over
// a replayed log.
func Apply(shapes []Shape, op Operation) []Shape {
	switch op.Kind {
	case OpDraw:
		if op.Shape == nil {
			return shapes
		}
		if i := IndexByID(shapes, op.Shape.ID); i >= 0 {
			shapes[i] = *op.Shape
			return shapes
		}
		return append(shapes, *op.Shape)
	case OpDelete:
		if i := IndexByID(shapes, op.ShapeID); i >= 0 {
			return append(shapes[:i], shapes[i+1:]...)
		}
		return shapes
	case OpClear:
		return shapes[:0]
	}
	return shapes
}

// IndexByID returns the position of the shape with the given ID, or -1.
func IndexByID(shapes []Shape, id string) int {
	for i := range shapes {
		if shapes[i].ID == id {
			return i
		}
	}
	return -1
}

// Reduce replays an ordered operation sequence into the current shape set.
func Reduce(ops []Operation) []Shape {
	var shapes []Shape
	for _, op := range ops {
		shapes = Apply(shapes, op)
	}
	return shapes
}
