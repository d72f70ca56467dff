package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/persistorai/actorweb/internal/interaction"
)

// Message types sent to clients.
const (
	TypeFrame    = "frame"
	TypeResult   = "result"
	TypeClosed   = "closed"
	TypeError    = "error"
	TypeReset    = "reset"
	TypeShutdown = "shutdown"
)

// Message types accepted from clients.
const (
	TypeSubscribe = "subscribe"
	TypeEvent     = "event"
)

// Event is the structured message sent to WebSocket clients.
type Event struct {
	Type      string          `json:"type"`
	ID        uint64          `json:"id"`
	SessionID string          `json:"-"`
	Data      json.RawMessage `json:"data"`
	Time      time.Time       `json:"time"`
}

// ClientMsg is a message received from a client. Subscribe requests replay of
// buffered events after LastEventID; event carries an interaction envelope.
type ClientMsg struct {
	Type        string                `json:"type"`
	LastEventID uint64                `json:"last_event_id,omitempty"`
	Event       *interaction.Envelope `json:"event,omitempty"`
}

// ResetMsg tells the client to do a full refresh (requested events too old).
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// ErrorMsg reports a rejected client message to that client only.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// EventSequence tracks monotonic event IDs per session.
type EventSequence struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// NewEventSequence creates a new EventSequence.
func NewEventSequence() *EventSequence {
	return &EventSequence{counters: make(map[string]uint64)}
}

// Next returns the next sequence number for a session.
func (es *EventSequence) Next(sessionID string) uint64 {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.counters[sessionID]++

	return es.counters[sessionID]
}

// Forget drops the counter of a closed session.
func (es *EventSequence) Forget(sessionID string) {
	es.mu.Lock()
	delete(es.counters, sessionID)
	es.mu.Unlock()
}
