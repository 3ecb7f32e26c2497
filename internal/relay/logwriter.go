package relay

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/scrawl/internal/domain"
)

const (
	logQueueSize   = 1024
	appendAttempts = 3
	retryBackoff   = 250 * time.Millisecond
)

type logTask struct {
	room    string
	userID  uuid.UUID
	payload []byte // nil for clear
	clear   bool
}

// LogWriter persists operations off the fan-out path. Enqueue never
// blocks: a full queue drops the task with a warning, trading durability
// for live-session latency (peers already hold the operation in memory).
// Failed appends are retried with backoff before being dropped.
type LogWriter struct {
	rooms domain.RoomRepository
	ops   domain.CanvasOpRepository

	queue  chan logTask
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLogWriter(rooms domain.RoomRepository, ops domain.CanvasOpRepository) *LogWriter {
	return &LogWriter{
		rooms: rooms,
		ops:   ops,
		queue: make(chan logTask, logQueueSize),
		done:  make(chan struct{}),
	}
}

// Start launches the background worker. Close drains nothing; pending
// tasks are abandoned on shutdown, which the replay contract tolerates.
func (w *LogWriter) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go func() {
		defer close(w.done)
		for {
			select {
			case <-ctx.Done():
				return
			case task := <-w.queue:
				w.process(ctx, task)
			}
		}
	}()
}

// Close stops the worker and waits for it to exit.
func (w *LogWriter) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	<-w.done
}

// Append schedules a durable append of the operation payload.
func (w *LogWriter) Append(room string, userID uuid.UUID, payload []byte) {
	w.enqueue(logTask{room: room, userID: userID, payload: payload})
}

// Clear schedules a purge of the room's log.
func (w *LogWriter) Clear(room string, userID uuid.UUID) {
	w.enqueue(logTask{room: room, userID: userID, clear: true})
}

func (w *LogWriter) enqueue(task logTask) {
	select {
	case w.queue <- task:
	default:
		log.Warn().Str("room", task.room).Msg("logwriter: queue full, dropping task")
	}
}

func (w *LogWriter) process(ctx context.Context, task logTask) {
	room, err := w.rooms.Upsert(ctx, task.room, task.userID)
	if err != nil {
		log.Error().Err(err).Str("room", task.room).Msg("logwriter: room upsert")
		return
	}

	for attempt := 1; attempt <= appendAttempts; attempt++ {
		if task.clear {
			err = w.ops.Clear(ctx, room.ID)
		} else {
			err = w.ops.Append(ctx, &domain.CanvasOp{
				ID:        uuid.New(),
				RoomID:    room.ID,
				UserID:    task.userID,
				Payload:   task.payload,
				CreatedAt: time.Now(),
			})
		}
		if err == nil {
			return
		}

		log.Warn().Err(err).
			Str("room", task.room).
			Int("attempt", attempt).
			Bool("clear", task.clear).
			Msg("logwriter: persist failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
}
