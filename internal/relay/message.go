package relay

import (
	"encoding/json"
	"fmt"

	"github.com/gosuda/scrawl/internal/canvas"
)

// Message types on the websocket wire.
const (
	MsgJoinRoom  = "join_room"
	MsgLeaveRoom = "leave_room"
	MsgOp        = "op"
)

// Envelope is the single structured wire message: a tagged union with a
// typed inner operation payload. Join and leave carry only the room slug;
// op carries the operation.
type Envelope struct {
	Type   string            `json:"type"`
	RoomID string            `json:"roomId"`
	Op     *canvas.Operation `json:"op,omitempty"`
}

// DecodeEnvelope parses an inbound wire message and validates its shape.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %s", canvas.ErrMalformedOp, err)
	}

	switch env.Type {
	case MsgJoinRoom, MsgLeaveRoom:
		if env.RoomID == "" {
			return Envelope{}, fmt.Errorf("%w: %s without roomId", canvas.ErrMalformedOp, env.Type)
		}
	case MsgOp:
		if env.RoomID == "" || env.Op == nil {
			return Envelope{}, fmt.Errorf("%w: incomplete op message", canvas.ErrMalformedOp)
		}
		if err := env.Op.Validate(); err != nil {
			return Envelope{}, err
		}
	default:
		return Envelope{}, fmt.Errorf("%w: unknown message type %q", canvas.ErrMalformedOp, env.Type)
	}

	return env, nil
}

// Encode marshals the envelope for the wire.
func (e Envelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("relay.Envelope.Encode: %w", err)
	}
	return data, nil
}
