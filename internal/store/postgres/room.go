package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/scrawl/internal/domain"
)

type RoomRepo struct {
	pool *pgxpool.Pool
}

func NewRoomRepo(pool *pgxpool.Pool) *RoomRepo {
	return &RoomRepo{pool: pool}
}

func (r *RoomRepo) Create(ctx context.Context, room *domain.Room) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO rooms (id, slug, admin_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		room.ID, room.Slug, room.AdminID, room.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("roomRepo.Create: %w", domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("roomRepo.Create: %w", err)
	}

	return nil
}

func (r *RoomRepo) GetBySlug(ctx context.Context, slug string) (*domain.Room, error) {
	var room domain.Room

	err := r.pool.QueryRow(ctx,
		`SELECT id, slug, admin_id, created_at FROM rooms WHERE slug = $1`,
		slug,
	).Scan(&room.ID, &room.Slug, &room.AdminID, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("roomRepo.GetBySlug: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("roomRepo.GetBySlug: %w", err)
	}

	return &room, nil
}

// Upsert returns the room with the given slug, creating it owned by
// adminID if it does not exist yet. Rooms are created implicitly on first
// write, so a lost insert race resolves to the winner's row.
func (r *RoomRepo) Upsert(ctx context.Context, slug string, adminID uuid.UUID) (*domain.Room, error) {
	var room domain.Room

	err := r.pool.QueryRow(ctx,
		`INSERT INTO rooms (id, slug, admin_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		 RETURNING id, slug, admin_id, created_at`,
		uuid.New(), slug, adminID, time.Now(),
	).Scan(&room.ID, &room.Slug, &room.AdminID, &room.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("roomRepo.Upsert: %w", err)
	}

	return &room, nil
}
