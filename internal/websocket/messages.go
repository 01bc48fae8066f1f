package websocket

import (
	"encoding/json"
	"time"

	"github.com/duosync/backend/internal/timeline"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeClockTick        MessageType = "clock.tick"
	TypeTimelineMarker   MessageType = "timeline.marker"
	TypeTimelineScroll   MessageType = "timeline.scroll"
	TypeStateChanged     MessageType = "state.changed"
	TypeBridgeSyncFailed MessageType = "bridge.sync_failed"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// ClockPayload is the payload for clock.tick events.
type ClockPayload = timeline.Clock

// MarkerPayload is the payload for timeline.marker events.
type MarkerPayload struct {
	Offset      float64 `json:"offset"`
	CurrentSlot int     `json:"current_slot"`
	// Visible is false when the viewed day is not today.
	Visible bool `json:"visible"`
}

// ScrollPayload is the payload for timeline.scroll events.
type ScrollPayload struct {
	Offset  float64 `json:"offset"`
	DateKey string  `json:"date_key"`
}

// StateChangedPayload is the payload for state.changed events.
type StateChangedPayload struct {
	Reason string `json:"reason"` // events, highlights, feelings, active_user, bridge
}

// BridgeFailurePayload is the payload for bridge.sync_failed events.
type BridgeFailurePayload struct {
	Operation string `json:"operation"` // push or pull
	Error     string `json:"error"`
	Message   string `json:"message"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
