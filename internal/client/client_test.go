package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/scrawl/internal/api/ws"
	"github.com/gosuda/scrawl/internal/auth"
	"github.com/gosuda/scrawl/internal/canvas"
	"github.com/gosuda/scrawl/internal/client"
	"github.com/gosuda/scrawl/internal/domain"
	"github.com/gosuda/scrawl/internal/relay"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// ---------------------------------------------------------------------------
// In-memory persistence for the relay's log writer
// ---------------------------------------------------------------------------

type memRooms struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room
}

func newMemRooms() *memRooms {
	return &memRooms{rooms: make(map[string]*domain.Room)}
}

func (m *memRooms) Create(_ context.Context, r *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[r.Slug]; ok {
		return domain.ErrConflict
	}
	m.rooms[r.Slug] = r
	return nil
}

func (m *memRooms) GetBySlug(_ context.Context, slug string) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (m *memRooms) Upsert(_ context.Context, slug string, adminID uuid.UUID) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[slug]; ok {
		return r, nil
	}
	r := &domain.Room{ID: uuid.New(), Slug: slug, AdminID: adminID, CreatedAt: time.Now()}
	m.rooms[slug] = r
	return r, nil
}

type memOps struct {
	mu      sync.Mutex
	entries []*domain.CanvasOp
}

func (m *memOps) Append(_ context.Context, op *domain.CanvasOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	op.Seq = int64(len(m.entries) + 1)
	m.entries = append(m.entries, op)
	return nil
}

func (m *memOps) Replay(_ context.Context, roomID uuid.UUID) ([]*domain.CanvasOp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.CanvasOp
	for _, e := range m.entries {
		if e.RoomID == roomID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memOps) Clear(_ context.Context, roomID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.RoomID != roomID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *memOps) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// ---------------------------------------------------------------------------
// Test server wiring
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T) (*httptest.Server, *memOps) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ops := &memOps{}
	logw := relay.NewLogWriter(newMemRooms(), ops)
	logw.Start(ctx)
	t.Cleanup(logw.Close)

	rly := relay.New(relay.NewRegistry(), logw, nil)
	hub := ws.NewHub(rly, nil, testSecret)

	r := chi.NewRouter()
	r.Get("/ws", hub.ServeSession)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, ops
}

func accessToken(t *testing.T) string {
	t.Helper()
	tok, err := auth.IssueAccessToken(testSecret, uuid.New(), time.Minute)
	require.NoError(t, err)
	return tok
}

func recvOp(t *testing.T, c *client.Client) canvas.Operation {
	t.Helper()
	select {
	case op, ok := <-c.Ops():
		require.True(t, ok, "ops channel closed early")
		return op
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for operation")
		return canvas.Operation{}
	}
}

// ---------------------------------------------------------------------------
// Session round-trips
// ---------------------------------------------------------------------------

func TestSessionFanOut(t *testing.T) {
	t.Parallel()

	srv, ops := newTestServer(t)
	ctx := context.Background()

	alice, err := client.Dial(ctx, srv.URL, accessToken(t))
	require.NoError(t, err)
	defer alice.Close()

	bob, err := client.Dial(ctx, srv.URL, accessToken(t))
	require.NoError(t, err)
	defer bob.Close()

	require.NoError(t, alice.JoinRoom(ctx, "sketch-club"))
	require.NoError(t, bob.JoinRoom(ctx, "sketch-club"))

	// Membership is processed in arrival order per connection, but the
	// join races the other client's send; give the registry a beat.
	time.Sleep(50 * time.Millisecond)

	shape := canvas.Shape{ID: canvas.NewShapeID(), Type: canvas.ShapeRect, X: 10, Y: 10, Width: 40, Height: 40}
	require.NoError(t, alice.Send(canvas.DrawOp(shape)))

	// Sender gets its own echo; the peer gets the broadcast.
	got := recvOp(t, bob)
	assert.Equal(t, canvas.OpDraw, got.Kind)
	require.NotNil(t, got.Shape)
	assert.Equal(t, shape.ID, got.Shape.ID)
	assert.Equal(t, shape, *got.Shape)

	echo := recvOp(t, alice)
	assert.Equal(t, shape.ID, echo.Shape.ID)

	// The op lands in the durable log behind the fan-out.
	require.Eventually(t, func() bool { return ops.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestSessionRoomIsolation(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	ctx := context.Background()

	alice, err := client.Dial(ctx, srv.URL, accessToken(t))
	require.NoError(t, err)
	defer alice.Close()

	bob, err := client.Dial(ctx, srv.URL, accessToken(t))
	require.NoError(t, err)
	defer bob.Close()

	require.NoError(t, alice.JoinRoom(ctx, "room-a"))
	require.NoError(t, bob.JoinRoom(ctx, "room-b"))
	time.Sleep(50 * time.Millisecond)

	shape := canvas.Shape{ID: canvas.NewShapeID(), Type: canvas.ShapeCircle, CenterX: 5, CenterY: 5, Radius: 3}
	require.NoError(t, alice.Send(canvas.DrawOp(shape)))

	// Alice's echo proves the broadcast ran; Bob must see nothing.
	recvOp(t, alice)
	select {
	case op := <-bob.Ops():
		t.Fatalf("crossed rooms: %+v", op)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendWithoutJoin(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	ctx := context.Background()

	c, err := client.Dial(ctx, srv.URL, accessToken(t))
	require.NoError(t, err)
	defer c.Close()

	shape := canvas.Shape{ID: canvas.NewShapeID(), Type: canvas.ShapeRect, X: 0, Y: 0, Width: 1, Height: 1}
	require.Error(t, c.Send(canvas.DrawOp(shape)))
}

func TestRejectedToken(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	ctx := context.Background()

	c, err := client.Dial(ctx, srv.URL, "not-a-token")
	// The handshake succeeds; the server closes with a policy violation
	// immediately after, which surfaces as the ops channel closing.
	require.NoError(t, err)
	defer c.Close()

	select {
	case _, ok := <-c.Ops():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected server to close the session")
	}
}

// ---------------------------------------------------------------------------
// REST seed fetch
// ---------------------------------------------------------------------------

func TestFetchShapes(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logw := relay.NewLogWriter(newMemRooms(), &memOps{})
	logw.Start(ctx)
	t.Cleanup(logw.Close)

	hub := ws.NewHub(relay.New(relay.NewRegistry(), logw, nil), nil, testSecret)

	shape := canvas.Shape{ID: canvas.NewShapeID(), Type: canvas.ShapeRect, X: 1, Y: 2, Width: 3, Height: 4}

	r := chi.NewRouter()
	r.Get("/ws", hub.ServeSession)
	r.Get("/api/v1/rooms/{slug}/shapes", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "sketch-club", chi.URLParam(req, "slug"))
		assert.Contains(t, req.Header.Get("Authorization"), "Bearer ")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"shapes":[{"id":"` + shape.ID + `","type":"rect","x":1,"y":2,"width":3,"height":4}]}`))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c, err := client.Dial(ctx, srv.URL, accessToken(t))
	require.NoError(t, err)
	defer c.Close()

	shapes, err := c.FetchShapes(ctx, "sketch-club")
	require.NoError(t, err)
	require.Len(t, shapes, 1)
	assert.Equal(t, shape, shapes[0])
}
