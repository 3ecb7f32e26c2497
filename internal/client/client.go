// Package client is the Go client for a scrawl server: it dials the
// drawing session socket, tracks the joined room, and exposes the traffic
// as decoded operations for an engine to fold in.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/scrawl/internal/canvas"
	"github.com/gosuda/scrawl/internal/relay"
)

const (
	sendTimeout = 5 * time.Second
	opsBuffer   = 64
)

// Client holds one authenticated session against a scrawl server. Send
// satisfies the engine's OpSender, and Ops feeds its Subscribe loop. A
// client is bound to at most one room at a time.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client

	conn *websocket.Conn

	mu   sync.Mutex
	room string

	ops    chan canvas.Operation
	cancel context.CancelFunc
	done   chan struct{}
}

// Dial opens the drawing session socket. baseURL is the server's HTTP
// origin ("http://host:8080"); the access token rides the query string
// because browser WebSocket clients cannot set headers, and the native
// client stays wire-compatible with them.
func Dial(ctx context.Context, baseURL, token string) (*Client, error) {
	wsURL, err := sessionURL(baseURL, token)
	if err != nil {
		return nil, fmt.Errorf("client.Dial: %w", err)
	}

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("client.Dial: %w", err)
	}

	readCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 10 * time.Second},
		conn:    conn,
		ops:     make(chan canvas.Operation, opsBuffer),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go c.readLoop(readCtx)

	return c, nil
}

func sessionURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Ops returns the stream of operations for the joined room. The channel
// closes when the connection drops or Close is called.
func (c *Client) Ops() <-chan canvas.Operation {
	return c.ops
}

// JoinRoom subscribes the session to a room. Joining a second room leaves
// the first; server-side membership is per-connection and additive, so the
// explicit leave keeps the single-room contract.
func (c *Client) JoinRoom(ctx context.Context, slug string) error {
	c.mu.Lock()
	prev := c.room
	c.room = slug
	c.mu.Unlock()

	if prev != "" && prev != slug {
		if err := c.write(ctx, relay.Envelope{Type: relay.MsgLeaveRoom, RoomID: prev}); err != nil {
			return fmt.Errorf("client.JoinRoom: leave %q: %w", prev, err)
		}
	}
	if err := c.write(ctx, relay.Envelope{Type: relay.MsgJoinRoom, RoomID: slug}); err != nil {
		return fmt.Errorf("client.JoinRoom: %w", err)
	}
	return nil
}

// LeaveRoom unsubscribes from the current room.
func (c *Client) LeaveRoom(ctx context.Context) error {
	c.mu.Lock()
	slug := c.room
	c.room = ""
	c.mu.Unlock()

	if slug == "" {
		return nil
	}
	if err := c.write(ctx, relay.Envelope{Type: relay.MsgLeaveRoom, RoomID: slug}); err != nil {
		return fmt.Errorf("client.LeaveRoom: %w", err)
	}
	return nil
}

// Send broadcasts one operation to the joined room. Satisfies the
// engine's OpSender interface.
func (c *Client) Send(op canvas.Operation) error {
	c.mu.Lock()
	slug := c.room
	c.mu.Unlock()

	if slug == "" {
		return fmt.Errorf("client.Send: no room joined")
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	o := op
	if err := c.write(ctx, relay.Envelope{Type: relay.MsgOp, RoomID: slug, Op: &o}); err != nil {
		return fmt.Errorf("client.Send: %w", err)
	}
	return nil
}

func (c *Client) write(ctx context.Context, env relay.Envelope) error {
	data, err := env.Encode()
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// readLoop decodes inbound envelopes and forwards operations for the
// joined room. The server echoes the client's own operations back; the
// engine's reduction is idempotent, so they pass through unfiltered.
func (c *Client) readLoop(ctx context.Context) {
	defer close(c.ops)
	defer close(c.done)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("client: read loop closed")
			return
		}

		env, err := relay.DecodeEnvelope(data)
		if err != nil {
			log.Warn().Err(err).Msg("client: dropping malformed server message")
			continue
		}
		if env.Type != relay.MsgOp {
			continue
		}

		c.mu.Lock()
		slug := c.room
		c.mu.Unlock()
		if env.RoomID != slug {
			continue
		}

		select {
		case c.ops <- *env.Op:
		case <-ctx.Done():
			return
		}
	}
}

// FetchShapes reads a room's current shape set over REST, the seed for a
// fresh engine before the live stream starts.
func (c *Client) FetchShapes(ctx context.Context, slug string) ([]canvas.Shape, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/rooms/"+url.PathEscape(slug)+"/shapes", nil)
	if err != nil {
		return nil, fmt.Errorf("client.FetchShapes: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client.FetchShapes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("client.FetchShapes: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Shapes []canvas.Shape `json:"shapes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("client.FetchShapes: decode: %w", err)
	}
	return body.Shapes, nil
}

// Close tears the session down. Safe to call once.
func (c *Client) Close() error {
	c.cancel()
	err := c.conn.Close(websocket.StatusNormalClosure, "client closed")
	<-c.done
	if err != nil {
		return fmt.Errorf("client.Close: %w", err)
	}
	return nil
}
