package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
)

// OpKind tags the variant of an Operation.
type OpKind string

const (
	OpDraw   OpKind = "draw"
	OpDelete OpKind = "delete"
	OpClear  OpKind = "clear"
)

// ErrMalformedOp is returned when an operation payload cannot be decoded
// or fails validation. Callers drop the message and keep the connection.
var ErrMalformedOp = errors.New("canvas: malformed operation")

// Operation is the atomic wire/log unit mutating a room's shape set.
// Created by exactly one client, immutable once broadcast. Draw carries a
// full shape (a move is a Draw with the mover's final state, same ID);
// Delete references the target by its stable shape ID.
type Operation struct {
	Kind    OpKind `json:"kind"`
	Shape   *Shape `json:"shape,omitempty"`
	ShapeID string `json:"shapeId,omitempty"`
}

// DrawOp wraps a shape in a draw operation.
func DrawOp(s Shape) Operation {
	return Operation{Kind: OpDraw, Shape: &s}
}

// DeleteOp targets a shape by ID.
func DeleteOp(shapeID string) Operation {
	return Operation{Kind: OpDelete, ShapeID: shapeID}
}

// ClearOp empties the room.
func ClearOp() Operation {
	return Operation{Kind: OpClear}
}

// Validate checks the structural invariants of an operation.
func (op Operation) Validate() error {
	switch op.Kind {
	case OpDraw:
		if op.Shape == nil || op.Shape.ID == "" {
			return fmt.Errorf("%w: draw without shape", ErrMalformedOp)
		}
		switch op.Shape.Type {
		case ShapeRect, ShapeCircle, ShapeLine, ShapeArrow, ShapePencil, ShapeText:
		default:
			return fmt.Errorf("%w: unknown shape type %q", ErrMalformedOp, op.Shape.Type)
		}
		if op.Shape.Radius < 0 || op.Shape.Width < 0 || op.Shape.Height < 0 {
			return fmt.Errorf("%w: negative extent", ErrMalformedOp)
		}
	case OpDelete:
		if op.ShapeID == "" {
			return fmt.Errorf("%w: delete without shape id", ErrMalformedOp)
		}
	case OpClear:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedOp, op.Kind)
	}
	return nil
}

// Encode marshals the operation for the wire or the log.
func (op Operation) Encode() ([]byte, error) {
	data, err := json.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("canvas.Operation.Encode: %w", err)
	}
	return data, nil
}

// DecodeOperation parses and validates a JSON operation payload.
func DecodeOperation(data []byte) (Operation, error) {
	var op Operation
	if err := json.Unmarshal(data, &op); err != nil {
		return Operation{}, fmt.Errorf("%w: %s", ErrMalformedOp, err)
	}
	if err := op.Validate(); err != nil {
		return Operation{}, err
	}
	return op, nil
}
