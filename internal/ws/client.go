package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/interaction"
)

const (
	writeTimeout     = 10 * time.Second
	dispatchTimeout  = 5 * time.Second
	wsReadLimit      = 4096
	clientSendBuffer = 256
	maxConnLifetime  = 4 * time.Hour
	pingInterval     = 30 * time.Second
	pingTimeout      = 10 * time.Second
	maxMissedPongs   = int32(2)
)

// Dispatcher applies an interaction event to a session.
type Dispatcher interface {
	Dispatch(ctx context.Context, sessionID string, ev interaction.Event) (interaction.Result, error)
}

// Client wraps a single WebSocket connection subscribed to one session.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	log         *logrus.Logger
	SessionID   string
	dispatcher  Dispatcher
	mu          sync.Mutex
	closed      bool
	connectedAt time.Time
}

// NewClient creates a new Client for the given WebSocket connection.
// A nil dispatcher makes the client receive-only.
func NewClient(hub *Hub, conn *websocket.Conn, sessionID string, dispatcher Dispatcher) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, clientSendBuffer),
		log:         hub.log,
		SessionID:   sessionID,
		dispatcher:  dispatcher,
		connectedAt: time.Now(),
	}
}

// trySend queues msg without blocking. It reports false when the buffer is
// full or the client was closed.
func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads client messages until the connection closes.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown
	}()

	c.conn.SetReadLimit(wsReadLimit)

	for {
		_, msgBytes, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				c.log.WithField("status", websocket.CloseStatus(err)).Debug("client disconnected")
			}

			return
		}

		c.handleMessage(ctx, msgBytes)
	}
}

// handleMessage processes one client message: a replay subscription or an
// interaction event.
func (c *Client) handleMessage(ctx context.Context, msgBytes []byte) {
	var msg ClientMsg
	if err := json.Unmarshal(msgBytes, &msg); err != nil {
		c.reply(ErrorMsg{Type: TypeError, Message: "malformed message"})
		return
	}

	switch msg.Type {
	case TypeSubscribe:
		if !c.hub.Replay(c, msg.LastEventID) {
			c.reply(ResetMsg{
				Type:   TypeReset,
				Reason: "requested events no longer available, perform full refresh",
			})
		}
	case TypeEvent:
		c.dispatch(ctx, msg.Event)
	default:
		c.reply(ErrorMsg{Type: TypeError, Message: "unknown message type"})
	}
}

func (c *Client) dispatch(ctx context.Context, env *interaction.Envelope) {
	if c.dispatcher == nil {
		c.reply(ErrorMsg{Type: TypeError, Message: "events are not accepted on this connection"})
		return
	}

	if env == nil {
		c.reply(ErrorMsg{Type: TypeError, Message: "event is required"})
		return
	}

	ev, err := env.Event()
	if err != nil {
		c.reply(ErrorMsg{Type: TypeError, Message: err.Error()})
		return
	}

	dctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	res, err := c.dispatcher.Dispatch(dctx, c.SessionID, ev)
	cancel()

	if err != nil {
		c.reply(ErrorMsg{Type: TypeError, Message: dispatchMessage(err)})
		return
	}

	c.hub.BroadcastEvent(TypeResult, c.SessionID, res)
}

func dispatchMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "session busy"
	}

	return err.Error()
}

func (c *Client) reply(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		return
	}

	c.trySend(msg)
}

// sendPing sends a WebSocket ping and tracks missed pongs.
// Returns true if the connection should be closed.
func (c *Client) sendPing(ctx context.Context, missedPongs *atomic.Int32) bool {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := c.conn.Ping(pingCtx)
	cancel()

	if err != nil {
		if missedPongs.Add(1) >= maxMissedPongs {
			c.log.Debug("closing: 2 consecutive missed pongs")

			return true
		}

		return false
	}

	missedPongs.Store(0)

	return false
}

// WritePump writes queued messages to the connection. It returns when the
// send channel closes, a write fails, or the connection lifetime ends.
func (c *Client) WritePump(ctx context.Context) {
	defer c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown

	lifetimeTimer := time.NewTimer(time.Until(c.connectedAt.Add(maxConnLifetime)))
	defer lifetimeTimer.Stop()

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	var missedPongs atomic.Int32

	for {
		select {
		case <-pingTicker.C:
			if c.sendPing(ctx, &missedPongs) {
				return
			}
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "") //nolint:errcheck // best-effort
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()

			if err != nil {
				c.log.WithError(err).Debug("write failed")

				return
			}
		case <-lifetimeTimer.C:
			c.log.Info("closing WebSocket: max connection lifetime exceeded")
			c.conn.Close(websocket.StatusNormalClosure, "max connection lifetime exceeded") //nolint:errcheck // best-effort

			return
		case <-ctx.Done():
			return
		}
	}
}
