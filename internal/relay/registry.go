package relay

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Peer is one live connection as the relay sees it. Send must be safe to
// call on a closed connection (returning an error, never panicking).
type Peer interface {
	ID() uuid.UUID
	UserID() uuid.UUID
	Send(ctx context.Context, payload []byte) error
}

// Registry maps live connections to the rooms they have joined. It is the
// single mutual-exclusion domain for membership state; callers never see
// the raw tables, only Join/Leave/MembersOf/Remove. State is in-memory
// only and rebuilt from client join messages after a restart.
type Registry struct {
	mu     sync.RWMutex
	peers  map[uuid.UUID]Peer
	rooms  map[string]map[uuid.UUID]struct{} // slug -> conn ids
	joined map[uuid.UUID]map[string]struct{} // conn id -> slugs
}

func NewRegistry() *Registry {
	return &Registry{
		peers:  make(map[uuid.UUID]Peer),
		rooms:  make(map[string]map[uuid.UUID]struct{}),
		joined: make(map[uuid.UUID]map[string]struct{}),
	}
}

// Add registers a connection with no room memberships.
func (r *Registry) Add(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[p.ID()] = p
	r.joined[p.ID()] = make(map[string]struct{})
}

// Join adds the room to the connection's set. Idempotent; joining an
// already-joined room is a no-op. Unknown connections are ignored.
func (r *Registry) Join(connID uuid.UUID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.peers[connID]; !ok {
		return
	}
	r.joined[connID][room] = struct{}{}
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[uuid.UUID]struct{})
	}
	r.rooms[room][connID] = struct{}{}
}

// Leave removes the room from the connection's set. No-op if absent.
func (r *Registry) Leave(connID uuid.UUID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.joined[connID]; ok {
		delete(set, room)
	}
	if members, ok := r.rooms[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.rooms, room)
		}
	}
}

// MembersOf returns every connection currently joined to the room. The
// slice is a snapshot; peers that disconnect after the call may still be
// attempted, and such sends fail silently.
func (r *Registry) MembersOf(room string) []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	out := make([]Peer, 0, len(members))
	for id := range members {
		if p, ok := r.peers[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Remove purges the connection from the registry entirely. Called exactly
// once on disconnect.
func (r *Registry) Remove(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.joined[connID] {
		if members, ok := r.rooms[room]; ok {
			delete(members, connID)
			if len(members) == 0 {
				delete(r.rooms, room)
			}
		}
	}
	delete(r.joined, connID)
	delete(r.peers, connID)
}
