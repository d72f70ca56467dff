package ws

import (
	"sync"
	"time"
)

const (
	defaultBufferMaxLen = 64
	defaultBufferMaxAge = 10 * time.Minute
)

// EventBuffer stores recent non-frame events per session for replay on
// reconnect, plus the latest frame. Frames supersede each other, so only the
// newest is kept.
type EventBuffer struct {
	mu     sync.RWMutex
	events map[string][]Event
	frames map[string]Event
	maxAge time.Duration
	maxLen int
}

// NewEventBuffer creates an EventBuffer with the given limits.
func NewEventBuffer(maxLen int, maxAge time.Duration) *EventBuffer {
	return &EventBuffer{
		events: make(map[string][]Event),
		frames: make(map[string]Event),
		maxAge: maxAge,
		maxLen: maxLen,
	}
}

// evictStale removes sessions whose newest event is older than maxAge.
func (eb *EventBuffer) evictStale() {
	cutoff := time.Now().Add(-eb.maxAge)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	for sid, buf := range eb.events {
		if len(buf) == 0 || buf[len(buf)-1].Time.Before(cutoff) {
			delete(eb.events, sid)
		}
	}

	for sid, f := range eb.frames {
		if f.Time.Before(cutoff) {
			delete(eb.frames, sid)
		}
	}
}

// Append stores an event for potential replay, evicting old entries.
func (eb *EventBuffer) Append(event *Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if event.Type == TypeFrame {
		eb.frames[event.SessionID] = *event
		return
	}

	buf := eb.events[event.SessionID]

	cutoff := time.Now().Add(-eb.maxAge)
	start := 0
	for start < len(buf) && buf[start].Time.Before(cutoff) {
		start++
	}
	if start > 0 {
		buf = buf[start:]
	}

	buf = append(buf, *event)
	if len(buf) > eb.maxLen {
		buf = buf[len(buf)-eb.maxLen:]
	}

	eb.events[event.SessionID] = buf
}

// Since returns buffered non-frame events of a session with ID > lastEventID.
func (eb *EventBuffer) Since(sessionID string, lastEventID uint64) []Event {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	buf := eb.events[sessionID]
	if len(buf) == 0 {
		return nil
	}

	lo, hi := 0, len(buf)
	for lo < hi {
		mid := (lo + hi) / 2
		if buf[mid].ID <= lastEventID {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	if lo >= len(buf) {
		return nil
	}

	result := make([]Event, len(buf)-lo)
	copy(result, buf[lo:])

	return result
}

// OldestID returns the oldest buffered event ID for a session, or 0 if empty.
func (eb *EventBuffer) OldestID(sessionID string) uint64 {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	buf := eb.events[sessionID]
	if len(buf) == 0 {
		return 0
	}

	return buf[0].ID
}

// LatestFrame returns the newest frame event of a session.
func (eb *EventBuffer) LatestFrame(sessionID string) (Event, bool) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	f, ok := eb.frames[sessionID]

	return f, ok
}

// Forget drops everything buffered for a session.
func (eb *EventBuffer) Forget(sessionID string) {
	eb.mu.Lock()
	delete(eb.events, sessionID)
	delete(eb.frames, sessionID)
	eb.mu.Unlock()
}
