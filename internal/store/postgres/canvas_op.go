package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/scrawl/internal/domain"
)

type CanvasOpRepo struct {
	pool *pgxpool.Pool
}

func NewCanvasOpRepo(pool *pgxpool.Pool) *CanvasOpRepo {
	return &CanvasOpRepo{pool: pool}
}

// Append records an operation after all previously appended operations for
// the room. seq is a table-wide bigserial, which gives a strictly
// monotonic per-room order; cross-room ordering is irrelevant.
func (r *CanvasOpRepo) Append(ctx context.Context, op *domain.CanvasOp) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO canvas_ops (id, room_id, user_id, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING seq`,
		op.ID, op.RoomID, op.UserID, op.Payload, op.CreatedAt,
	).Scan(&op.Seq)
	if err != nil {
		return fmt.Errorf("canvasOpRepo.Append: %w", err)
	}

	return nil
}

func (r *CanvasOpRepo) Replay(ctx context.Context, roomID uuid.UUID) ([]*domain.CanvasOp, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, room_id, user_id, seq, payload, created_at
		 FROM canvas_ops WHERE room_id = $1
		 ORDER BY seq ASC`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("canvasOpRepo.Replay: %w", err)
	}
	defer rows.Close()

	var ops []*domain.CanvasOp
	for rows.Next() {
		var op domain.CanvasOp

		err = rows.Scan(&op.ID, &op.RoomID, &op.UserID, &op.Seq, &op.Payload, &op.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("canvasOpRepo.Replay: scan: %w", err)
		}
		ops = append(ops, &op)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("canvasOpRepo.Replay: rows: %w", err)
	}

	return ops, nil
}

// Clear removes every operation for the room. A single DELETE, so a
// concurrent Replay observes the pre-clear or post-clear log, never a
// partially cleared one.
func (r *CanvasOpRepo) Clear(ctx context.Context, roomID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM canvas_ops WHERE room_id = $1`,
		roomID,
	)
	if err != nil {
		return fmt.Errorf("canvasOpRepo.Clear: %w", err)
	}

	return nil
}
