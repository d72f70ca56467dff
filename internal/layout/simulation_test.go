package layout_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/persistorai/actorweb/internal/layout"
	"github.com/persistorai/actorweb/internal/models"
)

var viewport = models.Vec{X: 800, Y: 600}

// star builds a model with a center and n connected titles.
func star(n int) *models.GraphModel {
	g := &models.GraphModel{CenterID: "c", Nodes: []models.Node{{ID: "c", IsCenter: true}}}
	for i := range n {
		id := "n" + strconv.Itoa(i)
		g.Nodes = append(g.Nodes, models.Node{ID: id, Weight: 1})
		g.Edges = append(g.Edges, models.Edge{
			Source: "c", Target: id, Weight: 1,
			SharedActors: []models.SharedActor{{ActorID: "a"}},
		})
	}

	return g
}

func newSim(t *testing.T, g *models.GraphModel, cfg layout.Config) *layout.Simulation {
	t.Helper()

	sim, warnings := layout.New(g, viewport, cfg)
	if len(warnings) != 0 {
		t.Fatalf("unexpected config warnings: %v", warnings)
	}

	return sim
}

func TestStep_NoNodes(t *testing.T) {
	sim := newSim(t, &models.GraphModel{}, layout.DefaultConfig())

	snap := sim.Step()
	if snap.Tick != 0 || len(snap.Nodes) != 0 {
		t.Fatalf("Step on empty model changed state: %+v", snap)
	}

	if !sim.AtRest() || sim.Active() {
		t.Error("empty simulation should be at rest and inactive")
	}
}

func TestStep_SingleNodeCenters(t *testing.T) {
	sim := newSim(t, star(0), layout.DefaultConfig())

	snap, _ := sim.RunUntilRest(1000)

	p := snap.Nodes[0].Position
	if math.Abs(p.X-400) > 0.5 || math.Abs(p.Y-300) > 0.5 {
		t.Errorf("single node settled at %+v, want near (400, 300)", p)
	}
}

func TestStep_LinkDistance(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.ChargeStrength = 0
	cfg.CenterStrength = 0
	sim := newSim(t, star(1), cfg)

	sim.RunUntilRest(1000)

	a, _ := sim.Position("c")
	b, _ := sim.Position("n0")
	if d := b.Sub(a).Len(); math.Abs(d-cfg.LinkDistance) > 1 {
		t.Errorf("linked distance = %.3f, want %.0f", d, cfg.LinkDistance)
	}
}

func TestAlpha_DecaysMonotonicallyToRest(t *testing.T) {
	cfg := layout.DefaultConfig()
	sim := newSim(t, star(5), cfg)

	prev := sim.Alpha()
	ticks := 0

	for sim.Active() {
		sim.Step()
		ticks++

		if sim.Alpha() > prev {
			t.Fatalf("alpha increased at tick %d: %v -> %v", ticks, prev, sim.Alpha())
		}
		prev = sim.Alpha()

		if ticks > 10_000 {
			t.Fatal("simulation never came to rest")
		}
	}

	want := cfg.TicksToRest(cfg.AlphaStart)
	if ticks < want-1 || ticks > want+1 {
		t.Errorf("ticks to rest = %d, want about %d", ticks, want)
	}

	// Step stays callable at rest.
	before := sim.Snapshot()
	after := sim.Step()
	if after.Tick != before.Tick+1 {
		t.Errorf("Step at rest did not advance tick")
	}
}

func TestPin_PositionInvariant(t *testing.T) {
	sim := newSim(t, star(6), layout.DefaultConfig())
	pin := models.Vec{X: 123, Y: 456}

	if err := sim.Pin("n2", pin); err != nil {
		t.Fatalf("Pin: %v", err)
	}

	for i := range 200 {
		snap := sim.Step()
		st, _ := snap.Node("n2")

		if st.Position != pin {
			t.Fatalf("tick %d: pinned node moved to %+v", i, st.Position)
		}

		if !st.Pinned {
			t.Fatalf("tick %d: node not reported pinned", i)
		}
	}

	if err := sim.Unpin("n2"); err != nil {
		t.Fatalf("Unpin: %v", err)
	}

	sim.Reheat()
	sim.Step()

	if sim.Pinned("n2") {
		t.Error("node still pinned after Unpin")
	}
}

func TestPin_UnknownNode(t *testing.T) {
	sim := newSim(t, star(1), layout.DefaultConfig())

	if err := sim.Pin("missing", models.Vec{}); err == nil {
		t.Error("expected error pinning unknown node")
	}
}

func assertSeparated(t *testing.T, snap layout.Snapshot, tol float64) {
	t.Helper()

	for i := range snap.Nodes {
		for j := i + 1; j < len(snap.Nodes); j++ {
			a, b := snap.Nodes[i], snap.Nodes[j]
			d := b.Position.Sub(a.Position).Len()
			if d < a.Radius+b.Radius-tol {
				t.Errorf("%s and %s overlap: distance %.3f < %.3f", a.ID, b.ID, d, a.Radius+b.Radius)
			}
		}
	}
}

// pair returns two unlinked nodes seeded at fixed positions.
func pair(a, b models.Vec) *models.GraphModel {
	return &models.GraphModel{
		CenterID: "c",
		Nodes: []models.Node{
			{ID: "c", IsCenter: true, Pin: &a},
			{ID: "n", Pin: &b},
		},
	}
}

func TestCharge_Direction(t *testing.T) {
	tests := []struct {
		name     string
		strength float64
		farther  bool
	}{
		{"positive repels", 160_000, true},
		{"negative attracts", -160_000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := layout.DefaultConfig()
			cfg.ChargeStrength = tt.strength
			cfg.CenterStrength = 0

			sim := newSim(t, pair(models.Vec{X: 100, Y: 300}, models.Vec{X: 700, Y: 300}), cfg)
			_ = sim.Unpin("c")
			_ = sim.Unpin("n")

			for range 50 {
				sim.Step()
			}

			a, _ := sim.Position("c")
			b, _ := sim.Position("n")
			d := b.Sub(a).Len()

			if tt.farther && d <= 600 {
				t.Errorf("distance = %.2f, want > 600", d)
			}
			if !tt.farther && d >= 600 {
				t.Errorf("distance = %.2f, want < 600", d)
			}
		})
	}
}

func TestCollision_SeparatesAtRest(t *testing.T) {
	snap, _ := newSim(t, star(20), layout.DefaultConfig()).RunUntilRest(1000)
	assertSeparated(t, snap, 0.5)
}

func TestCollision_SeparatesWithoutRepulsion(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.ChargeStrength = 0
	cfg.LinkDistance = 0
	cfg.CollisionIterations = 16

	snap, _ := newSim(t, star(20), cfg).RunUntilRest(1000)
	assertSeparated(t, snap, 0.5)
}

func TestCollision_RadiusByRole(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.RadiusByWeight = true

	g := star(2)
	g.Nodes[2].Weight = 3
	g.Edges[1].Weight = 3

	snap := newSim(t, g, cfg).Snapshot()

	if snap.Nodes[0].Radius != cfg.CenterRadius {
		t.Errorf("center radius = %v", snap.Nodes[0].Radius)
	}

	if snap.Nodes[1].Radius != cfg.ConnectedRadius {
		t.Errorf("weight-1 radius = %v", snap.Nodes[1].Radius)
	}

	if want := cfg.ConnectedRadius * 1.4; math.Abs(snap.Nodes[2].Radius-want) > 1e-9 {
		t.Errorf("weight-3 radius = %v, want %v", snap.Nodes[2].Radius, want)
	}
}

func TestResize_ReheatsWithoutJump(t *testing.T) {
	sim := newSim(t, star(4), layout.DefaultConfig())
	sim.RunUntilRest(1000)

	before := sim.Snapshot()
	sim.Resize(models.Vec{X: 1200, Y: 900})
	after := sim.Snapshot()

	for i := range before.Nodes {
		if before.Nodes[i].Position != after.Nodes[i].Position {
			t.Fatalf("resize moved %s instantly", before.Nodes[i].ID)
		}
	}

	if sim.Alpha() < sim.Config().ReheatAlpha {
		t.Errorf("alpha after resize = %v, want >= %v", sim.Alpha(), sim.Config().ReheatAlpha)
	}

	if sim.CenterTarget() != (models.Vec{X: 600, Y: 450}) {
		t.Errorf("center target = %+v", sim.CenterTarget())
	}
}

func TestStop_SafeInAnyState(t *testing.T) {
	sim := newSim(t, star(3), layout.DefaultConfig())

	sim.Stop()
	if sim.Active() {
		t.Error("stopped simulation reported active")
	}

	sim.Stop()
	sim.Reheat()
	if !sim.Active() {
		t.Error("reheat should resume a stopped simulation")
	}

	sim.RunUntilRest(1000)
	sim.Stop()
	if sim.Active() || !sim.Stopped() {
		t.Error("stop at rest should leave the simulation stopped")
	}
}

func TestAlphaTarget_HoldsAlpha(t *testing.T) {
	sim := newSim(t, star(3), layout.DefaultConfig())
	sim.RunUntilRest(1000)

	sim.SetAlphaTarget(0.3)
	sim.Restart()

	if sim.AtRest() {
		t.Error("raised alpha target should wake the simulation before alpha climbs")
	}

	for range 1000 {
		sim.Step()
	}

	if math.Abs(sim.Alpha()-0.3) > 0.01 {
		t.Errorf("alpha = %v, want to converge to target 0.3", sim.Alpha())
	}

	if !sim.Active() {
		t.Error("simulation with a raised target must stay active")
	}
}

func TestSimulation_Deterministic(t *testing.T) {
	run := func() layout.Snapshot {
		sim, _ := layout.New(star(12), viewport, layout.DefaultConfig())
		for range 100 {
			sim.Step()
		}

		return sim.Snapshot()
	}

	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("simulation not deterministic:\n%s", diff)
	}
}

func TestFocus(t *testing.T) {
	sim := newSim(t, star(4), layout.DefaultConfig())
	sim.RunUntilRest(1000)

	mid := viewport.Scale(0.5)
	p, _ := sim.Position("n1")
	before := p.Sub(mid).Len()

	if err := sim.Focus("n1", viewport); err != nil {
		t.Fatalf("Focus: %v", err)
	}

	sim.RunUntilRest(5000)

	p, _ = sim.Position("n1")
	if after := p.Sub(mid).Len(); after > before/4 {
		t.Errorf("focused node %.2fpx from viewport center, was %.2fpx", after, before)
	}

	if err := sim.Focus("missing", viewport); err == nil {
		t.Error("expected error focusing unknown node")
	}
}

func TestConfig_Sanitize(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.LinkDistance = -5
	cfg.DecayRate = 0
	cfg.DragDamping = 1.5
	cfg.CollisionIterations = 0
	cfg.AlphaMin = math.NaN()

	got, warnings := cfg.Sanitize()
	if len(warnings) != 5 {
		t.Fatalf("warnings = %v, want 5", warnings)
	}

	if diff := cmp.Diff(layout.DefaultConfig(), got); diff != "" {
		t.Errorf("sanitized config should fall back to defaults (-want +got):\n%s", diff)
	}

	ok := layout.DefaultConfig()
	ok.ChargeStrength = -300 // attraction is allowed
	if _, w := ok.Sanitize(); len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}
}

func TestSnapshot_Apply(t *testing.T) {
	g := star(2)
	sim := newSim(t, g, layout.DefaultConfig())
	_ = sim.Pin("n1", models.Vec{X: 10, Y: 20})
	snap := sim.Step()

	nodes := snap.Apply(g)
	if nodes[2].Pin == nil || *nodes[2].Pin != (models.Vec{X: 10, Y: 20}) {
		t.Errorf("pinned node export = %+v", nodes[2])
	}

	if g.Nodes[2].Pin != nil {
		t.Error("Apply must not modify the model")
	}
}
