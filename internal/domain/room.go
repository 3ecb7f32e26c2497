package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Room is the isolation unit for both broadcast membership and the
// operation log. Identified by an opaque slug; created explicitly via the
// REST API or implicitly (upsert) on the first operation written to it.
// Clear empties a room's log but never deletes the room row.
type Room struct {
	ID        uuid.UUID
	Slug      string
	AdminID   uuid.UUID
	CreatedAt time.Time
}

type RoomRepository interface {
	Create(ctx context.Context, r *Room) error
	GetBySlug(ctx context.Context, slug string) (*Room, error)
	// Upsert returns the room with the given slug, creating it owned by
	// adminID if absent.
	Upsert(ctx context.Context, slug string, adminID uuid.UUID) (*Room, error)
}
