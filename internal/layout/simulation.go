// Package layout implements the force-directed layout of a connection graph.
//
// A Simulation is advanced one tick at a time by an external driver calling
// Step. Each tick sums link, charge and centering forces into an acceleration
// for every free node, integrates semi-implicitly, then relaxes collisions.
// Step is synchronous and never blocks; the type is not safe for concurrent
// use and expects a single owner goroutine.
package layout

import (
	"math"

	"github.com/persistorai/actorweb/internal/models"
)

// Phyllotaxis constants for deterministic initial placement.
const (
	initialRadius = 10.0
	maxWeightGrow = 2.0
	weightStep    = 0.2
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

type body struct {
	id     string
	center bool
	radius float64
	pos    models.Vec
	vel    models.Vec
	acc    models.Vec
	pin    *models.Vec
}

type link struct {
	source, target int
	strength, bias float64
}

// Simulation is the state of one force-directed layout.
type Simulation struct {
	cfg         Config
	bodies      []body
	index       map[string]int
	links       []link
	edges       []models.EdgeState
	target      models.Vec
	alpha       float64
	alphaTarget float64
	tick        uint64
	stopped     bool
}

// New seeds a simulation from a model for a viewport of the given size. It
// returns warnings for configuration values that were replaced by defaults.
func New(model *models.GraphModel, viewport models.Vec, cfg Config) (*Simulation, []string) {
	cfg, warnings := cfg.Sanitize()

	s := &Simulation{
		cfg:    cfg,
		index:  make(map[string]int, len(model.Nodes)),
		target: viewport.Scale(0.5),
		alpha:  cfg.AlphaStart,
	}

	s.bodies = make([]body, 0, len(model.Nodes))
	for i, n := range model.Nodes {
		if _, dup := s.index[n.ID]; dup {
			continue
		}

		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		b := body{
			id:     n.ID,
			center: n.IsCenter,
			radius: cfg.radiusFor(&n),
			pos:    models.Vec{X: s.target.X + r*math.Cos(a), Y: s.target.Y + r*math.Sin(a)},
		}

		if n.Pin != nil {
			p := *n.Pin
			b.pin = &p
			b.pos = p
		}

		s.index[n.ID] = len(s.bodies)
		s.bodies = append(s.bodies, b)
	}

	s.initLinks(model.Edges)

	return s, warnings
}

func (c *Config) radiusFor(n *models.Node) float64 {
	if n.IsCenter {
		return c.CenterRadius
	}

	if !c.RadiusByWeight || n.Weight <= 1 {
		return c.ConnectedRadius
	}

	grow := math.Min(1+weightStep*float64(n.Weight-1), maxWeightGrow)

	return c.ConnectedRadius * grow
}

func (s *Simulation) initLinks(edges []models.Edge) {
	count := make([]int, len(s.bodies))

	for _, e := range edges {
		si, ok1 := s.index[e.Source]
		ti, ok2 := s.index[e.Target]
		if !ok1 || !ok2 || si == ti {
			continue
		}

		count[si]++
		count[ti]++
		s.links = append(s.links, link{source: si, target: ti})
		s.edges = append(s.edges, models.EdgeState{Source: e.Source, Target: e.Target, Weight: e.Weight})
	}

	for i := range s.links {
		l := &s.links[i]
		cs, ct := float64(count[l.source]), float64(count[l.target])
		l.strength = 1 / math.Min(cs, ct)
		l.bias = cs / (cs + ct)
	}
}

// Step advances the simulation by one tick and returns the resulting snapshot.
// With no nodes it does nothing.
func (s *Simulation) Step() Snapshot {
	if len(s.bodies) == 0 {
		return s.Snapshot()
	}

	for i := range s.bodies {
		s.bodies[i].acc = models.Vec{}
	}

	s.applyLinks()
	s.applyCharge()
	s.applyCentering()
	s.integrate()
	s.relaxCollisions()

	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.DecayRate
	s.tick++

	return s.Snapshot()
}

func (s *Simulation) integrate() {
	damping := s.cfg.DragDamping

	for i := range s.bodies {
		b := &s.bodies[i]
		if b.pin != nil {
			b.pos = *b.pin
			b.vel = models.Vec{}

			continue
		}

		b.vel = b.vel.Add(b.acc.Scale(s.alpha))
		b.pos = b.pos.Add(b.vel)
		b.vel = b.vel.Scale(damping)
	}
}

// RunUntilRest steps until the simulation is at rest or maxTicks ticks have
// run, and returns the last snapshot and the number of ticks taken.
func (s *Simulation) RunUntilRest(maxTicks int) (Snapshot, int) {
	n := 0
	for n < maxTicks && !s.AtRest() {
		s.Step()
		n++
	}

	return s.Snapshot(), n
}

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 { return s.alpha }

// AlphaTarget returns the value alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlpha sets alpha, clamped to [0, 1].
func (s *Simulation) SetAlpha(a float64) {
	s.alpha = clamp01(a)
}

// SetAlphaTarget sets the value alpha decays toward, clamped to [0, 1].
func (s *Simulation) SetAlphaTarget(a float64) {
	s.alphaTarget = clamp01(a)
}

// Reheat raises alpha to at least the configured reheat level and clears a
// previous Stop.
func (s *Simulation) Reheat() {
	if s.alpha < s.cfg.ReheatAlpha {
		s.alpha = s.cfg.ReheatAlpha
	}
	s.stopped = false
}

// Restart clears a previous Stop without touching alpha.
func (s *Simulation) Restart() { s.stopped = false }

// Stop marks the simulation as stopped. Drivers must not schedule further
// ticks until Restart or Reheat. It is safe to call in any state.
func (s *Simulation) Stop() { s.stopped = true }

// Stopped reports whether Stop was called since the last restart.
func (s *Simulation) Stopped() bool { return s.stopped }

// AtRest reports whether alpha decayed below AlphaMin with nothing holding it
// up, or there is nothing to lay out. A raised alpha target keeps the
// simulation awake even while alpha itself is still below AlphaMin.
func (s *Simulation) AtRest() bool {
	return len(s.bodies) == 0 || (s.alpha < s.cfg.AlphaMin && s.alphaTarget < s.cfg.AlphaMin)
}

// Active reports whether a driver should keep scheduling ticks.
func (s *Simulation) Active() bool {
	return !s.stopped && !s.AtRest()
}

// Tick returns the number of ticks run so far.
func (s *Simulation) Tick() uint64 { return s.tick }

// Config returns the sanitized configuration in use.
func (s *Simulation) Config() Config { return s.cfg }

// Len returns the number of nodes in the simulation.
func (s *Simulation) Len() int { return len(s.bodies) }

// Has reports whether id is a node of the simulation.
func (s *Simulation) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Position returns the current position of a node.
func (s *Simulation) Position(id string) (models.Vec, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Vec{}, false
	}

	return s.bodies[i].pos, true
}

// Pin fixes a node at p until Unpin. The node's velocity is discarded.
func (s *Simulation) Pin(id string, p models.Vec) error {
	i, ok := s.index[id]
	if !ok {
		return models.ErrNodeNotFound
	}

	pin := p
	b := &s.bodies[i]
	b.pin = &pin
	b.pos = pin
	b.vel = models.Vec{}

	return nil
}

// Unpin releases a pinned node back to the physics.
func (s *Simulation) Unpin(id string) error {
	i, ok := s.index[id]
	if !ok {
		return models.ErrNodeNotFound
	}

	s.bodies[i].pin = nil

	return nil
}

// Pinned reports whether a node is pinned.
func (s *Simulation) Pinned(id string) bool {
	i, ok := s.index[id]

	return ok && s.bodies[i].pin != nil
}

// Resize moves the centering target to the middle of the new viewport and
// reheats. Node positions are not moved directly.
func (s *Simulation) Resize(viewport models.Vec) {
	s.target = viewport.Scale(0.5)
	s.Reheat()
}

// CenterTarget returns the point the centering force pulls the centroid toward.
func (s *Simulation) CenterTarget() models.Vec { return s.target }

// Focus shifts the centering target so that the given node drifts toward the
// middle of the viewport, then reheats.
func (s *Simulation) Focus(id string, viewport models.Vec) error {
	i, ok := s.index[id]
	if !ok {
		return models.ErrNodeNotFound
	}

	offset := s.centroid().Sub(s.bodies[i].pos)
	s.target = viewport.Scale(0.5).Add(offset)
	s.Reheat()

	return nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}
