// Package ws streams session frames and interaction results to WebSocket
// clients. Each client subscribes to exactly one session.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/metrics"
	"github.com/persistorai/actorweb/internal/session"
)

// Hub channel buffer sizes and connection limits.
const (
	broadcastBuffer   = 1024
	registerBuffer    = 64
	maxClients        = 1000
	maxSessionClients = 16
)

// maxBroadcastPayload bounds one serialized message.
const maxBroadcastPayload = 1 << 20

// drainTimeout is how long the hub waits for clients to flush after shutdown.
const drainTimeout = 3 * time.Second

// cleanupInterval is how often stale replay buffers are evicted.
const cleanupInterval = 5 * time.Minute

// sessionBroadcast is sent through the broadcast channel to the Run goroutine.
type sessionBroadcast struct {
	sessionID string
	msg       []byte
	// droppable messages are skipped for a slow client instead of
	// disconnecting it; a newer frame will follow.
	droppable bool
}

// Hub manages active WebSocket clients and fans messages out per session.
// All client map mutations happen exclusively in the Run goroutine.
type Hub struct {
	clients      map[*Client]bool
	sessionCount map[string]int
	register     chan *Client
	unregister   chan *Client
	broadcast    chan sessionBroadcast
	closeSession chan string
	shutdown     chan struct{}
	done         chan struct{}
	count        atomic.Int64
	log          *logrus.Logger
	seq          *EventSequence
	buffer       *EventBuffer
}

var _ session.Publisher = (*Hub)(nil)

// NewHub creates a new Hub instance.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		sessionCount: make(map[string]int),
		register:     make(chan *Client, registerBuffer),
		unregister:   make(chan *Client, registerBuffer),
		broadcast:    make(chan sessionBroadcast, broadcastBuffer),
		closeSession: make(chan string, registerBuffer),
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		log:          log,
		seq:          NewEventSequence(),
		buffer:       NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
	}
}

// Run starts the hub event loop. It should be run as a goroutine.
// It exits when Shutdown is called or the context is cancelled.
func (h *Hub) Run(ctx context.Context) { //nolint:gocognit,gocyclo,cyclop // one select owns all client state.
	defer close(h.done)

	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-ctx.Done():
			h.drainClients()

			return
		case <-h.shutdown:
			h.drainClients()

			return

		case <-cleanup.C:
			h.buffer.evictStale()

		case client := <-h.register:
			if len(h.clients) >= maxClients {
				h.log.Warn("global connection limit reached, dropping client")
				client.closeSend()

				continue
			}

			if h.sessionCount[client.SessionID] >= maxSessionClients {
				h.log.WithField("session_id", client.SessionID).Warn("per-session connection limit reached, dropping client")
				client.closeSend()

				continue
			}

			h.clients[client] = true
			h.sessionCount[client.SessionID]++
			h.updateCount()
			h.log.WithFields(logrus.Fields{
				"session_id": client.SessionID,
				"total":      len(h.clients),
			}).Info("client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.remove(client)
			}
			h.updateCount()
			h.log.WithField("total", len(h.clients)).Info("client unregistered")

		case b := <-h.broadcast:
			for client := range h.clients {
				if client.SessionID != b.sessionID {
					continue
				}

				if !client.trySend(b.msg) && !b.droppable {
					h.remove(client)
				}
			}
			h.updateCount()

		case sid := <-h.closeSession:
			msg := closedMessage(sid)
			for client := range h.clients {
				if client.SessionID != sid {
					continue
				}

				client.trySend(msg)
				h.remove(client)
			}
			h.seq.Forget(sid)
			h.buffer.Forget(sid)
			h.updateCount()
		}
	}
}

func (h *Hub) remove(client *Client) {
	delete(h.clients, client)
	client.closeSend()

	h.sessionCount[client.SessionID]--
	if h.sessionCount[client.SessionID] <= 0 {
		delete(h.sessionCount, client.SessionID)
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

func closedMessage(sessionID string) []byte {
	msg, _ := json.Marshal(Event{ //nolint:errchkjson // static shape.
		Type:      TypeClosed,
		SessionID: sessionID,
		Data:      json.RawMessage(`{"reason":"session closed"}`),
		Time:      time.Now().UTC(),
	})

	return msg
}

// Publish implements session.Publisher. It runs on the session goroutine and
// never blocks.
func (h *Hub) Publish(sessionID string, f *session.Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		h.log.WithError(err).WithField("session_id", sessionID).Error("failed to marshal frame")
		return
	}

	h.emit(TypeFrame, sessionID, data, true)
}

// BroadcastEvent assigns a sequence ID, stores the event for replay, and
// sends it to every client of the session.
func (h *Hub) BroadcastEvent(eventType, sessionID string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		h.log.WithError(err).WithField("type", eventType).Error("failed to marshal event data")
		return
	}

	h.emit(eventType, sessionID, raw, false)
}

func (h *Hub) emit(eventType, sessionID string, data json.RawMessage, droppable bool) {
	evt := Event{
		Type:      eventType,
		ID:        h.seq.Next(sessionID),
		SessionID: sessionID,
		Data:      data,
		Time:      time.Now().UTC(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	if len(msg) > maxBroadcastPayload {
		h.log.WithFields(logrus.Fields{
			"session_id":   sessionID,
			"payload_size": len(msg),
			"max_size":     maxBroadcastPayload,
		}).Warn("dropping oversized broadcast payload")

		return
	}

	h.buffer.Append(&evt)

	select {
	case h.broadcast <- sessionBroadcast{sessionID: sessionID, msg: msg, droppable: droppable}:
	default:
		h.log.Warn("broadcast channel full, dropping message")
	}
}

// CloseSession tells every client of a session that it ended and
// disconnects them.
func (h *Hub) CloseSession(sessionID string) {
	select {
	case h.closeSession <- sessionID:
	default:
		h.log.WithField("session_id", sessionID).Warn("close channel full, clients will time out")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		// Run loop already exited; cleanup happened in drainClients.
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Shutdown sends a shutdown frame to every client, waits for their write
// pumps to flush, then closes all connections. It blocks until Run returns.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"shutdown","data":{"reason":"server shutting down"}}`)
	for client := range h.clients {
		client.trySend(shutdownMsg)
	}

	deadline := time.After(drainTimeout)
	ticker := time.NewTicker(50 * time.Millisecond) //nolint:mnd // poll interval
	defer ticker.Stop()

drain:
	for {
		allDrained := true

		for client := range h.clients {
			if len(client.send) > 0 {
				allDrained = false

				break
			}
		}

		if allDrained {
			break
		}

		select {
		case <-deadline:
			h.log.Warn("WebSocket drain timeout, closing remaining clients")

			break drain
		case <-ticker.C:
		}
	}

	for client := range h.clients {
		client.closeSend()
		delete(h.clients, client)
	}

	h.sessionCount = make(map[string]int)
	h.updateCount()
}

// Replay sends buffered events after lastEventID and then the latest frame.
// It returns false if the requested ID is no longer buffered.
func (h *Hub) Replay(client *Client, lastEventID uint64) bool {
	oldest := h.buffer.OldestID(client.SessionID)
	if oldest > 0 && lastEventID > 0 && lastEventID < oldest {
		return false
	}

	events := h.buffer.Since(client.SessionID, lastEventID)
	if f, ok := h.buffer.LatestFrame(client.SessionID); ok {
		events = append(events, f)
	}

	for _, evt := range events {
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}

		if !client.trySend(msg) {
			return true
		}
	}

	return true
}
