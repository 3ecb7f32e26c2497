package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/scrawl/internal/auth"
	"github.com/gosuda/scrawl/internal/relay"
	redisstore "github.com/gosuda/scrawl/internal/store/redis"
)

const (
	// Text content on the wire is not length-capped, so session messages
	// get more headroom than the library's 32 KiB default read limit
	// while a frame stays bounded.
	maxMessageSize = 1 << 20

	writeTimeout = 5 * time.Second
)

// Hub terminates WebSocket connections and hands their traffic to the
// relay. The watch endpoint is fed from Redis pub/sub instead of the
// registry so observers never appear as room members.
type Hub struct {
	relay     *relay.Relay
	pubsub    *redisstore.PubSub
	jwtSecret string
}

func NewHub(r *relay.Relay, pubsub *redisstore.PubSub, jwtSecret string) *Hub {
	return &Hub{relay: r, pubsub: pubsub, jwtSecret: jwtSecret}
}

// peer adapts one websocket connection to the relay's Peer interface.
type peer struct {
	conn   *websocket.Conn
	id     uuid.UUID
	userID uuid.UUID
}

func (p *peer) ID() uuid.UUID     { return p.id }
func (p *peer) UserID() uuid.UUID { return p.userID }

// Send writes one envelope to the connection. A slow or dead peer only
// stalls its own write deadline, never the relay's fan-out loop past it.
func (p *peer) Send(ctx context.Context, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return p.conn.Write(ctx, websocket.MessageText, payload)
}

// ServeSession handles the drawing session endpoint. The access token
// rides the query string because browser WebSocket clients cannot set an
// Authorization header; a bad token closes the socket with a policy
// violation after the handshake so the client sees a close code rather
// than a failed upgrade.
func (h *Hub) ServeSession(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	userID, err := auth.VerifyAccess(h.jwtSecret, r.URL.Query().Get("token"))
	if err != nil {
		log.Debug().Err(err).Msg("websocket session: rejected token")
		_ = conn.Close(websocket.StatusPolicyViolation, "invalid token")
		return
	}

	conn.SetReadLimit(maxMessageSize)

	ctx := r.Context()
	p := &peer{conn: conn, id: uuid.New(), userID: userID}

	reg := h.relay.Registry()
	reg.Add(p)
	defer reg.Remove(p.id)

	log.Debug().Str("conn", p.id.String()).Str("user", userID.String()).Msg("websocket session open")

	for {
		_, data, readErr := conn.Read(ctx)
		if readErr != nil {
			// Normal closure and network errors alike end the session;
			// Remove handles the membership cleanup either way.
			log.Debug().Err(readErr).Str("conn", p.id.String()).Msg("websocket session closed")
			return
		}
		h.relay.HandleMessage(ctx, p, data)
	}
}

// ServeWatch streams a room's live operation envelopes read-only.
// Subscribes to Redis channel "room:<slug>"; watchers never join the
// registry and cannot send.
func (h *Hub) ServeWatch(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		http.Error(w, "missing room slug", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	messages, cleanup, err := h.pubsub.Subscribe(ctx, redisstore.RoomChannel(slug))
	if err != nil {
		log.Error().Err(err).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
