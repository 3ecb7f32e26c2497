package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CanvasOp is one durably recorded drawing operation for a room. Payload is
// the JSON-encoded canvas.Operation, stored verbatim so replay returns
// exactly what was broadcast. Seq gives the per-room append order.
type CanvasOp struct {
	ID        uuid.UUID
	RoomID    uuid.UUID
	UserID    uuid.UUID
	Seq       int64
	Payload   []byte
	CreatedAt time.Time
}

// CanvasOpRepository is the durable, room-keyed append-only operation log.
// Replay returns every surviving operation in append order; Clear removes a
// room's entries atomically, so a concurrent Replay sees either the
// pre-clear or the post-clear log, never a partially cleared one.
type CanvasOpRepository interface {
	Append(ctx context.Context, op *CanvasOp) error
	Replay(ctx context.Context, roomID uuid.UUID) ([]*CanvasOp, error)
	Clear(ctx context.Context, roomID uuid.UUID) error
}
