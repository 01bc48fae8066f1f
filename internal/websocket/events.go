package websocket

import (
	log "github.com/sirupsen/logrus"

	"github.com/duosync/backend/internal/timeline"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastClockTick sends both participants' current-time labels.
func (b *EventBroadcaster) BroadcastClockTick(clock timeline.Clock) {
	b.broadcast(NewMessage(TypeClockTick, ClockPayload(clock)))
}

// BroadcastMarker sends the refreshed "now" marker position.
func (b *EventBroadcaster) BroadcastMarker(offset float64, slot int, today bool) {
	payload := MarkerPayload{
		Offset:      offset,
		CurrentSlot: slot,
		Visible:     today,
	}

	msg := NewMessage(TypeTimelineMarker, payload)
	b.broadcast(msg)
}

// BroadcastScroll sends the scroll target for the viewed day.
func (b *EventBroadcaster) BroadcastScroll(offset float64, dateKey string) {
	payload := ScrollPayload{
		Offset:  offset,
		DateKey: dateKey,
	}

	msg := NewMessage(TypeTimelineScroll, payload)
	b.broadcast(msg)
}

// BroadcastStateChanged tells clients to refetch the named slice of state.
func (b *EventBroadcaster) BroadcastStateChanged(reason string) {
	msg := NewMessage(TypeStateChanged, StateChangedPayload{Reason: reason})
	b.broadcast(msg)
}

// BroadcastBridgeFailure reports a failed push or pull.
func (b *EventBroadcaster) BroadcastBridgeFailure(op string, err error) {
	payload := BridgeFailurePayload{
		Operation: op,
		Error:     "bridge_error",
		Message:   err.Error(),
	}

	msg := NewMessage(TypeBridgeSyncFailed, payload)
	b.broadcast(msg)
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
