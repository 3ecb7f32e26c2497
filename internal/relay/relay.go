package relay

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/scrawl/internal/canvas"
)

// Feed receives a copy of every fanned-out envelope for out-of-band
// observers (the watch endpoint's pub/sub channel). Best effort.
type Feed interface {
	PublishRoom(ctx context.Context, room string, payload []byte) error
}

// Relay fans operations out to room members and schedules their durable
// append. Fan-out is synchronous with receipt and never waits on, or is
// ordered after, persistence.
type Relay struct {
	registry *Registry
	logw     *LogWriter
	feed     Feed // nil disables the observer feed
}

func New(registry *Registry, logw *LogWriter, feed Feed) *Relay {
	return &Relay{registry: registry, logw: logw, feed: feed}
}

// Registry exposes membership bookkeeping for the connection lifecycle
// (Add on accept, Remove on disconnect).
func (r *Relay) Registry() *Registry {
	return r.registry
}

// HandleMessage processes one inbound wire message from a connection.
// Malformed messages are dropped with a warning; they never terminate the
// connection.
func (r *Relay) HandleMessage(ctx context.Context, from Peer, data []byte) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		log.Warn().Err(err).Str("conn", from.ID().String()).Msg("relay: dropping malformed message")
		return
	}

	switch env.Type {
	case MsgJoinRoom:
		r.registry.Join(from.ID(), env.RoomID)
	case MsgLeaveRoom:
		r.registry.Leave(from.ID(), env.RoomID)
	case MsgOp:
		r.broadcast(ctx, from, env, data)
	}
}

// broadcast forwards the envelope verbatim to every member of the room,
// sender included (client reduction is idempotent on re-application),
// then hands the operation to the log writer. A member that disconnected
// after the membership snapshot fails its send silently.
func (r *Relay) broadcast(ctx context.Context, from Peer, env Envelope, raw []byte) {
	for _, p := range r.registry.MembersOf(env.RoomID) {
		if err := p.Send(ctx, raw); err != nil {
			log.Debug().Err(err).Str("conn", p.ID().String()).Msg("relay: send to peer")
		}
	}

	if r.feed != nil {
		if err := r.feed.PublishRoom(ctx, env.RoomID, raw); err != nil {
			log.Warn().Err(err).Str("room", env.RoomID).Msg("relay: observer feed publish")
		}
	}

	if env.Op.Kind == canvas.OpClear {
		r.logw.Clear(env.RoomID, from.UserID())
		return
	}

	payload, err := env.Op.Encode()
	if err != nil {
		log.Error().Err(err).Str("room", env.RoomID).Msg("relay: encode op for log")
		return
	}
	r.logw.Append(env.RoomID, from.UserID(), payload)
}
