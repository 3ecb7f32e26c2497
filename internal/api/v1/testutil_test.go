package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/gosuda/scrawl/internal/domain"
	"github.com/gosuda/scrawl/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject the authenticated user for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserID, userID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users domain.UserRepository
	rooms domain.RoomRepository
	ops   domain.CanvasOpRepository
}

func (m *mockDataStore) Users() domain.UserRepository         { return m.users }
func (m *mockDataStore) Rooms() domain.RoomRepository         { return m.rooms }
func (m *mockDataStore) CanvasOps() domain.CanvasOpRepository { return m.ops }

// ---------------------------------------------------------------------------
// Mock RoomRepository
// ---------------------------------------------------------------------------

type mockRoomRepo struct {
	createFunc    func(ctx context.Context, r *domain.Room) error
	getBySlugFunc func(ctx context.Context, slug string) (*domain.Room, error)
	upsertFunc    func(ctx context.Context, slug string, adminID uuid.UUID) (*domain.Room, error)
}

func (m *mockRoomRepo) Create(ctx context.Context, r *domain.Room) error {
	return m.createFunc(ctx, r)
}

func (m *mockRoomRepo) GetBySlug(ctx context.Context, slug string) (*domain.Room, error) {
	return m.getBySlugFunc(ctx, slug)
}

func (m *mockRoomRepo) Upsert(ctx context.Context, slug string, adminID uuid.UUID) (*domain.Room, error) {
	return m.upsertFunc(ctx, slug, adminID)
}

// ---------------------------------------------------------------------------
// Mock CanvasOpRepository
// ---------------------------------------------------------------------------

type mockCanvasOpRepo struct {
	appendFunc func(ctx context.Context, op *domain.CanvasOp) error
	replayFunc func(ctx context.Context, roomID uuid.UUID) ([]*domain.CanvasOp, error)
	clearFunc  func(ctx context.Context, roomID uuid.UUID) error
}

func (m *mockCanvasOpRepo) Append(ctx context.Context, op *domain.CanvasOp) error {
	return m.appendFunc(ctx, op)
}

func (m *mockCanvasOpRepo) Replay(ctx context.Context, roomID uuid.UUID) ([]*domain.CanvasOp, error) {
	return m.replayFunc(ctx, roomID)
}

func (m *mockCanvasOpRepo) Clear(ctx context.Context, roomID uuid.UUID) error {
	return m.clearFunc(ctx, roomID)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFunc    func(ctx context.Context, email, password string) (string, string, error)
	refreshFunc  func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, string, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshFunc(ctx, refreshToken)
}
