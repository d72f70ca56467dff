package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/interaction"
	"github.com/persistorai/actorweb/internal/layout"
	"github.com/persistorai/actorweb/internal/metrics"
	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/popup"
)

// Default manager settings.
const (
	DefaultTickInterval = 16 * time.Millisecond
	DefaultMaxSessions  = 100
)

// GraphBuilder builds the connection graph for a catalog key.
type GraphBuilder interface {
	BuildGraph(ctx context.Context, key string) (*models.GraphModel, error)
}

// SessionCloser is implemented by publishers that hold per-session state,
// such as connected viewers, to release when a session is discarded.
type SessionCloser interface {
	CloseSession(sessionID string)
}

// Config holds the settings applied to every session a Manager creates.
type Config struct {
	TickInterval time.Duration
	MaxSessions  int
	Layout       layout.Config
	Popup        popup.Config
	Interaction  interaction.Config
}

// DefaultConfig returns the manager defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval: DefaultTickInterval,
		MaxSessions:  DefaultMaxSessions,
		Layout:       layout.DefaultConfig(),
		Popup:        popup.DefaultConfig(),
		Interaction:  interaction.DefaultConfig(),
	}
}

// CreateRequest describes a new session.
type CreateRequest struct {
	Key    string
	Width  float64
	Height float64
	// Replaces is the id of a previous session of the same host. It is
	// closed before the new session starts.
	Replaces string
}

// Manager creates, tracks and discards sessions.
type Manager struct {
	cfg     Config
	builder GraphBuilder
	pub     Publisher
	log     *logrus.Logger

	ctx    context.Context //nolint:containedctx // parent of every session goroutine.
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager. Sessions run until deleted or Shutdown.
func NewManager(cfg Config, builder GraphBuilder, pub Publisher, log *logrus.Logger) *Manager {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		cfg:      cfg,
		builder:  builder,
		pub:      pub,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Create builds the graph for req.Key and starts a session for it. The
// session named by req.Replaces, if any, is discarded first.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*Session, error) {
	if req.Key == "" {
		return nil, models.ErrMissingKey
	}

	if !(req.Width > 0) || !(req.Height > 0) {
		return nil, fmt.Errorf("%w: viewport %vx%v", models.ErrInvalidEvent, req.Width, req.Height)
	}

	if req.Replaces != "" {
		if err := m.Delete(req.Replaces); err != nil {
			m.log.WithField("session_id", req.Replaces).Debug("session.replace_missing")
		}
	}

	model, err := m.builder.BuildGraph(ctx, req.Key)
	if err != nil {
		return nil, fmt.Errorf("building graph for %q: %w", req.Key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.cfg.MaxSessions {
		return nil, models.ErrSessionLimit
	}

	s := New(model, Options{
		ID:           uuid.NewString(),
		Key:          req.Key,
		Viewport:     models.Vec{X: req.Width, Y: req.Height},
		TickInterval: m.cfg.TickInterval,
		Layout:       m.cfg.Layout,
		Popup:        m.cfg.Popup,
		Interaction:  m.cfg.Interaction,
	}, m.pub, m.log)

	m.sessions[s.ID()] = s
	s.Start(m.ctx)
	metrics.SessionsActive.Set(float64(len(m.sessions)))

	m.log.WithFields(logrus.Fields{
		"session_id": s.ID(),
		"key":        req.Key,
		"nodes":      len(model.Nodes),
		"edges":      len(model.Edges),
	}).Info("session.created")

	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	return s, nil
}

// Delete closes and forgets a session. No tick of the session runs after
// Delete returns.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return models.ErrSessionNotFound
	}

	s.Close()
	if c, ok := m.pub.(SessionCloser); ok {
		c.CloseSession(id)
	}
	metrics.SessionsActive.Set(float64(n))
	m.log.WithField("session_id", id).Info("session.deleted")

	return nil
}

// Summary describes a live session.
type Summary struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	Nodes     int       `json:"nodes"`
	AtRest    bool      `json:"at_rest"`
}

// List returns a summary of every live session, oldest first.
func (m *Manager) List() []Summary {
	m.mu.Lock()
	out := make([]Summary, 0, len(m.sessions))
	for _, s := range m.sessions {
		f := s.Latest()
		out = append(out, Summary{
			ID:        s.ID(),
			Key:       s.Key(),
			CreatedAt: s.CreatedAt(),
			Nodes:     len(s.Model().Nodes),
			AtRest:    f.Snapshot.AtRest,
		})
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Shutdown closes every session and waits for their goroutines to exit.
func (m *Manager) Shutdown() {
	m.cancel()

	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}

	metrics.SessionsActive.Set(0)
	m.log.WithField("sessions", len(all)).Info("session manager stopped")
}
