package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/goleak"

	"github.com/persistorai/actorweb/internal/graph"
	"github.com/persistorai/actorweb/internal/interaction"
	"github.com/persistorai/actorweb/internal/layout"
	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/popup"
	"github.com/persistorai/actorweb/internal/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func testModel() *models.GraphModel {
	a := models.Entity{ID: "A", Title: "Alpha", Cast: []models.CastMember{
		{ActorID: "1", ActorName: "W"}, {ActorID: "2", ActorName: "X"},
	}}
	corpus := []models.Entity{
		{ID: "B", Title: "Beta", Cast: []models.CastMember{{ActorID: "1"}}},
		{ID: "C", Title: "Gamma", Cast: []models.CastMember{{ActorID: "2"}}},
	}

	g, _ := graph.Build(a, corpus)

	return g
}

// fastLayout settles in a few dozen ticks.
func fastLayout() layout.Config {
	cfg := layout.DefaultConfig()
	cfg.DecayRate = 0.2

	return cfg
}

func testOptions(id string) session.Options {
	return session.Options{
		ID:           id,
		Key:          "a",
		Viewport:     models.Vec{X: 800, Y: 600},
		TickInterval: time.Millisecond,
		Layout:       fastLayout(),
		Popup:        popup.DefaultConfig(),
		Interaction:  interaction.DefaultConfig(),
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	frames int
	last   *session.Frame
}

func (p *recordingPublisher) Publish(_ string, f *session.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frames++
	p.last = f
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSession_RunsToRest(t *testing.T) {
	pub := &recordingPublisher{}
	s := session.New(testModel(), testOptions("s1"), pub, testLogger())
	s.Start(context.Background())
	defer s.Close()

	waitFor(t, "rest", func() bool { return s.Latest().Snapshot.AtRest })

	frames := pub.count()
	if frames == 0 {
		t.Fatal("no frames published")
	}

	// At rest the ticker is disarmed, so no more frames arrive.
	time.Sleep(20 * time.Millisecond)

	if got := pub.count(); got != frames {
		t.Errorf("frames kept arriving at rest: %d -> %d", frames, got)
	}
}

func TestSession_EventWakesSimulation(t *testing.T) {
	s := session.New(testModel(), testOptions("s2"), nil, testLogger())
	s.Start(context.Background())
	defer s.Close()

	waitFor(t, "rest", func() bool { return s.Latest().Snapshot.AtRest })
	restTick := s.Latest().Snapshot.Tick

	res, err := s.Dispatch(context.Background(), interaction.DragStart{NodeID: "B", Pos: models.Vec{X: 10, Y: 10}})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if !res.Reheated || res.State.Dragged != "B" {
		t.Errorf("result = %+v", res)
	}

	waitFor(t, "ticks after drag", func() bool { return s.Latest().Snapshot.Tick > restTick+5 })

	st, _ := s.Latest().Snapshot.Node("B")
	if st.Position != (models.Vec{X: 10, Y: 10}) || !st.Pinned {
		t.Errorf("dragged node state = %+v", st)
	}

	if _, err := s.Dispatch(context.Background(), interaction.DragEnd{}); err != nil {
		t.Fatalf("DragEnd: %v", err)
	}

	waitFor(t, "rest after drag", func() bool { return s.Latest().Snapshot.AtRest })
}

func TestSession_HoverFrame(t *testing.T) {
	s := session.New(testModel(), testOptions("s3"), nil, testLogger())
	s.Start(context.Background())
	defer s.Close()

	if _, err := s.Dispatch(context.Background(), interaction.Hover{NodeID: "B"}); err != nil {
		t.Fatal(err)
	}

	f := s.Latest()
	if f.State.Hovered != "B" || f.NodeScale["B"] != 1.2 {
		t.Errorf("frame state = %+v scale = %v", f.State, f.NodeScale)
	}

	if len(f.EdgeOpacity) != 2 || f.EdgeOpacity[0] != 1 || f.EdgeOpacity[1] != 0.2 {
		t.Errorf("edge opacity = %v", f.EdgeOpacity)
	}

	res, err := s.Dispatch(context.Background(), interaction.Click{NodeID: "C", Pos: models.Vec{X: 1, Y: 1}})
	if err != nil || res.Popup == nil || res.Popup.Entries[0].ActorName != "X" {
		t.Errorf("click = %+v, %v", res, err)
	}

	if _, err := s.Dispatch(context.Background(), interaction.Hover{NodeID: "Z"}); !errors.Is(err, models.ErrNodeNotFound) {
		t.Errorf("unknown hover err = %v", err)
	}
}

func TestSession_CloseStopsTicks(t *testing.T) {
	s := session.New(testModel(), testOptions("s4"), nil, testLogger())
	s.Start(context.Background())

	waitFor(t, "first tick", func() bool { return s.Latest().Snapshot.Tick > 0 })

	s.Close()
	tick := s.Latest().Snapshot.Tick

	time.Sleep(10 * time.Millisecond)

	if got := s.Latest().Snapshot.Tick; got != tick {
		t.Errorf("ticks after close: %d -> %d", tick, got)
	}

	if _, err := s.Dispatch(context.Background(), interaction.DragEnd{}); !errors.Is(err, session.ErrClosed) {
		t.Errorf("dispatch after close err = %v", err)
	}

	if _, err := s.Export(context.Background()); !errors.Is(err, session.ErrClosed) {
		t.Errorf("export after close err = %v", err)
	}

	s.Close()
}

func TestSession_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := session.New(testModel(), testOptions("s5"), nil, testLogger())
	s.Start(ctx)

	cancel()

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop on context cancel")
	}
}

func TestSession_CloseBeforeStart(t *testing.T) {
	s := session.New(testModel(), testOptions("s6"), nil, testLogger())
	s.Close()

	if _, err := s.Export(context.Background()); !errors.Is(err, session.ErrClosed) {
		t.Errorf("export err = %v", err)
	}
}

func TestSession_Export(t *testing.T) {
	s := session.New(testModel(), testOptions("s7"), nil, testLogger())
	s.Start(context.Background())
	defer s.Close()

	waitFor(t, "rest", func() bool { return s.Latest().Snapshot.AtRest })

	exp, err := s.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if exp.Version != session.ExportVersion || exp.SessionID != "s7" || exp.Center != "A" {
		t.Errorf("export header = %+v", exp)
	}

	if exp.Stats != (models.ExportStats{NodeCount: 3, EdgeCount: 2, SharedCount: 2}) {
		t.Errorf("stats = %+v", exp.Stats)
	}

	for _, n := range exp.Nodes {
		if n.Position == (models.Vec{}) {
			t.Errorf("node %s exported without position", n.ID)
		}
	}
}
