// Package session owns live layout sessions: one connection graph, its
// simulation, interaction controller and popup resolver, driven by a single
// goroutine.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/interaction"
	"github.com/persistorai/actorweb/internal/layout"
	"github.com/persistorai/actorweb/internal/metrics"
	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/popup"
)

// ExportVersion is the format version of session exports.
const ExportVersion = "1.0"

// requestBuffer bounds the number of queued host requests per session.
const requestBuffer = 64

// ErrClosed is returned for requests made after a session was closed.
var ErrClosed = errors.New("session closed")

// Publisher receives a frame after every tick and every applied event.
type Publisher interface {
	Publish(sessionID string, f *Frame)
}

// Frame is the render state of a session at one point in time.
type Frame struct {
	SessionID   string             `json:"session_id"`
	Snapshot    layout.Snapshot    `json:"snapshot"`
	State       interaction.State  `json:"state"`
	EdgeOpacity []float64          `json:"edge_opacity"`
	NodeScale   map[string]float64 `json:"node_scale,omitempty"`
}

// Options configures a new session.
type Options struct {
	ID           string
	Key          string
	Viewport     models.Vec
	TickInterval time.Duration
	Layout       layout.Config
	Popup        popup.Config
	Interaction  interaction.Config
}

// Session is one live connection graph. All engine and controller access
// happens on the goroutine started by Start; other goroutines talk to it
// through Dispatch, Export and Latest.
type Session struct {
	id        string
	key       string
	createdAt time.Time
	interval  time.Duration

	model *models.GraphModel
	sim   *layout.Simulation
	ctrl  *interaction.Controller

	log *logrus.Logger
	pub Publisher

	requests chan func()
	quit     chan struct{}
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
	latest   atomic.Pointer[Frame]
}

// New creates a session for model. Config values out of range are replaced by
// defaults and logged.
func New(model *models.GraphModel, opts Options, pub Publisher, log *logrus.Logger) *Session {
	sim, simWarn := layout.New(model, opts.Viewport, opts.Layout)
	res, popWarn := popup.NewResolver(opts.Popup)
	ctrl, ctrlWarn := interaction.New(model, sim, res, opts.Viewport, opts.Interaction)

	logWarnings(log, "layout", opts.ID, simWarn)
	logWarnings(log, "popup", opts.ID, popWarn)
	logWarnings(log, "interaction", opts.ID, ctrlWarn)

	s := &Session{
		id:        opts.ID,
		key:       opts.Key,
		createdAt: time.Now().UTC(),
		interval:  opts.TickInterval,
		model:     model,
		sim:       sim,
		ctrl:      ctrl,
		log:       log,
		pub:       pub,
		requests:  make(chan func(), requestBuffer),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	s.latest.Store(s.frame(sim.Snapshot()))

	return s
}

func logWarnings(log *logrus.Logger, component, id string, warnings []string) {
	for _, w := range warnings {
		metrics.ConfigWarnings.WithLabelValues(component).Inc()
		log.WithFields(logrus.Fields{
			"session_id": id,
			"component":  component,
		}).Warn(w)
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Key returns the catalog key of the center title.
func (s *Session) Key() string { return s.key }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Model returns the session's graph model. Models are immutable.
func (s *Session) Model() *models.GraphModel { return s.model }

// Latest returns the most recent frame.
func (s *Session) Latest() *Frame { return s.latest.Load() }

// Start launches the session goroutine. It stops when ctx is cancelled or
// Close is called.
func (s *Session) Start(ctx context.Context) {
	if s.started.Swap(true) {
		return
	}

	go s.run(ctx)
}

// Close stops the session goroutine and waits for it to exit. It is safe to
// call more than once and before Start.
func (s *Session) Close() {
	s.stopOnce.Do(func() { close(s.quit) })

	if s.started.Load() {
		<-s.done
	}
}

// Done is closed once the session goroutine has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) run(ctx context.Context) { //nolint:gocognit // single select loop owns all state.
	defer close(s.done)

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)

	arm := func() {
		if ticker != nil || !s.sim.Active() {
			return
		}
		ticker = time.NewTicker(s.interval)
		tick = ticker.C
		metrics.SessionsRunning.Inc()
	}

	disarm := func() {
		if ticker == nil {
			return
		}
		ticker.Stop()
		ticker, tick = nil, nil
		metrics.SessionsRunning.Dec()
	}

	defer func() {
		disarm()
		s.sim.Stop()
		s.log.WithField("session_id", s.id).Debug("session.stopped")
	}()

	arm()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case fn := <-s.requests:
			fn()
			arm()
		case <-tick:
			start := time.Now()
			snap := s.sim.Step()
			metrics.TickDuration.Observe(time.Since(start).Seconds())
			metrics.TicksTotal.Inc()

			s.publish(snap)

			if !s.sim.Active() {
				disarm()
				s.log.WithFields(logrus.Fields{
					"session_id": s.id,
					"tick":       snap.Tick,
				}).Debug("session.rest")
			}
		}
	}
}

func (s *Session) frame(snap layout.Snapshot) *Frame {
	f := &Frame{
		SessionID:   s.id,
		Snapshot:    snap,
		State:       s.ctrl.State(),
		EdgeOpacity: s.ctrl.EdgeOpacities(snap.Edges),
	}

	if h := f.State.Hovered; h != "" {
		f.NodeScale = map[string]float64{h: s.ctrl.NodeScale(h)}
	}

	return f
}

func (s *Session) publish(snap layout.Snapshot) {
	f := s.frame(snap)
	s.latest.Store(f)

	if s.pub != nil {
		s.pub.Publish(s.id, f)
	}
}

// call runs fn on the session goroutine and waits for it to finish.
func (s *Session) call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case <-s.quit:
		return ErrClosed
	default:
	}

	select {
	case s.requests <- wrapped:
	case <-s.quit:
		return ErrClosed
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch applies a host event between ticks and publishes the new state.
func (s *Session) Dispatch(ctx context.Context, ev interaction.Event) (interaction.Result, error) {
	var (
		res    interaction.Result
		evtErr error
	)

	err := s.call(ctx, func() {
		res, evtErr = s.ctrl.Dispatch(ev)
		s.publish(s.sim.Snapshot())
	})
	if err != nil {
		return interaction.Result{}, err
	}

	outcome := "ok"
	if evtErr != nil {
		outcome = "error"
	}
	metrics.EventsTotal.WithLabelValues(eventType(ev), outcome).Inc()

	if res.Popup != nil {
		metrics.PopupsResolved.WithLabelValues(fmt.Sprint(res.Popup.Empty)).Inc()
	}

	s.log.WithFields(logrus.Fields{
		"session_id": s.id,
		"event":      eventType(ev),
	}).Debug("session.event")

	return res, evtErr
}

func eventType(ev interaction.Event) string {
	if ev == nil {
		return "unknown"
	}

	return ev.Type()
}

// Export returns the model with the latest node positions.
func (s *Session) Export(ctx context.Context) (*models.GraphExport, error) {
	var snap layout.Snapshot

	if err := s.call(ctx, func() { snap = s.sim.Snapshot() }); err != nil {
		return nil, err
	}

	shared := 0
	for _, e := range s.model.Edges {
		shared += len(e.SharedActors)
	}

	return &models.GraphExport{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		SessionID:  s.id,
		Center:     s.model.CenterID,
		Stats: models.ExportStats{
			NodeCount:   len(s.model.Nodes),
			EdgeCount:   len(s.model.Edges),
			SharedCount: shared,
		},
		Nodes: snap.Apply(s.model),
		Edges: s.model.Edges,
	}, nil
}
