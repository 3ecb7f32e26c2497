package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/scrawl/internal/canvas"
	"github.com/gosuda/scrawl/internal/domain"
	"github.com/gosuda/scrawl/internal/server/middleware"
)

type CreateRoomInput struct {
	Body struct {
		Name string `json:"name" minLength:"1" maxLength:"64" pattern:"^[a-z0-9-]+$" doc:"Room slug"`
	}
}

type CreateRoomOutput struct {
	Body *domain.Room
}

type GetRoomInput struct {
	Slug string `path:"slug" doc:"Room slug"`
}

type GetRoomOutput struct {
	Body *domain.Room
}

type GetShapesInput struct {
	Slug string `path:"slug" doc:"Room slug"`
}

type GetShapesOutput struct {
	Body struct {
		Shapes []canvas.Shape `json:"shapes"`
	}
}

func RegisterRoomRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "create-room",
		Method:      http.MethodPost,
		Path:        "/rooms",
		Summary:     "Create a drawing room",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error403Forbidden("missing user context")
		}

		room := &domain.Room{
			ID:        uuid.New(),
			Slug:      input.Body.Name,
			AdminID:   userID,
			CreatedAt: time.Now(),
		}
		if err := store.Rooms().Create(ctx, room); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("room with that name already exists")
			}
			return nil, huma.Error500InternalServerError("failed to create room", err)
		}

		return &CreateRoomOutput{Body: room}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-room",
		Method:      http.MethodGet,
		Path:        "/rooms/{slug}",
		Summary:     "Look up a room by slug",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error) {
		room, err := store.Rooms().GetBySlug(ctx, input.Slug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("room not found")
			}
			return nil, huma.Error500InternalServerError("failed to look up room", err)
		}

		return &GetRoomOutput{Body: room}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-room-shapes",
		Method:      http.MethodGet,
		Path:        "/rooms/{slug}/shapes",
		Summary:     "Get the room's current shape set, reduced from its operation log",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *GetShapesInput) (*GetShapesOutput, error) {
		out := &GetShapesOutput{}
		out.Body.Shapes = []canvas.Shape{}

		room, err := store.Rooms().GetBySlug(ctx, input.Slug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// A room that has never been written to is an empty canvas.
				return out, nil
			}
			return nil, huma.Error500InternalServerError("failed to look up room", err)
		}

		entries, err := store.CanvasOps().Replay(ctx, room.ID)
		if err != nil {
			// Fail open: the live session matters more than strict
			// durability reporting.
			log.Error().Err(err).Str("room", input.Slug).Msg("shapes: replay failed, returning empty set")
			return out, nil
		}

		var shapes []canvas.Shape
		for _, entry := range entries {
			op, decodeErr := canvas.DecodeOperation(entry.Payload)
			if decodeErr != nil {
				log.Warn().Err(decodeErr).Str("room", input.Slug).Int64("seq", entry.Seq).Msg("shapes: skipping bad log entry")
				continue
			}
			shapes = canvas.Apply(shapes, op)
		}

		if shapes != nil {
			out.Body.Shapes = shapes
		}
		return out, nil
	})
}
