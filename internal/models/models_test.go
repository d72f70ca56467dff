package models_test

import (
	"errors"
	"math"
	"testing"

	"github.com/persistorai/actorweb/internal/models"
)

func validModel() *models.GraphModel {
	return &models.GraphModel{
		CenterID: "a",
		Nodes: []models.Node{
			{ID: "a", IsCenter: true},
			{ID: "b", Weight: 1},
		},
		Edges: []models.Edge{
			{Source: "a", Target: "b", Weight: 1, SharedActors: []models.SharedActor{{ActorID: "2"}}},
		},
		Casts: map[string]map[string]string{
			"a": {"2": "Walter"},
			"b": {"2": ""},
		},
	}
}

func TestGraphModel_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(g *models.GraphModel)
		wantErr error
	}{
		{name: "valid", mutate: func(*models.GraphModel) {}},
		{name: "duplicate node", mutate: func(g *models.GraphModel) {
			g.Nodes = append(g.Nodes, models.Node{ID: "b"})
		}, wantErr: models.ErrDuplicateNode},
		{name: "two centers", mutate: func(g *models.GraphModel) {
			g.Nodes[1].IsCenter = true
		}, wantErr: models.ErrCenterCount},
		{name: "self edge", mutate: func(g *models.GraphModel) {
			g.Edges[0].Target = "a"
		}, wantErr: models.ErrSelfEdge},
		{name: "zero weight", mutate: func(g *models.GraphModel) {
			g.Edges[0].Weight = 0
			g.Edges[0].SharedActors = nil
		}, wantErr: models.ErrEdgeWeight},
		{name: "dangling edge", mutate: func(g *models.GraphModel) {
			g.Edges[0].Target = "zzz"
		}, wantErr: models.ErrNodeNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := validModel()
			tc.mutate(g)

			err := g.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestGraphModel_EdgeBetween_EitherOrientation(t *testing.T) {
	g := validModel()

	if _, ok := g.EdgeBetween("a", "b"); !ok {
		t.Error("expected edge a-b")
	}

	if _, ok := g.EdgeBetween("b", "a"); !ok {
		t.Error("expected edge b-a")
	}

	if _, ok := g.EdgeBetween("a", "c"); ok {
		t.Error("unexpected edge a-c")
	}
}

func TestGraphModel_Character(t *testing.T) {
	g := validModel()

	if c, ok := g.Character("a", "2"); !ok || c != "Walter" {
		t.Errorf("Character(a, 2) = %q, %v", c, ok)
	}

	if _, ok := g.Character("b", "2"); ok {
		t.Error("empty character should be reported as a miss")
	}

	if _, ok := g.Character("zzz", "2"); ok {
		t.Error("unknown entity should be reported as a miss")
	}
}

func TestEntity_Validate(t *testing.T) {
	if err := (&models.Entity{Cast: []models.CastMember{}}).Validate(); !errors.Is(err, models.ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}

	if err := (&models.Entity{ID: "1"}).Validate(); !errors.Is(err, models.ErrMissingCast) {
		t.Errorf("expected ErrMissingCast, got %v", err)
	}

	if err := (&models.Entity{ID: "1", Cast: []models.CastMember{}}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEntity_LookupKey(t *testing.T) {
	e := models.Entity{ID: "155"}
	if e.LookupKey() != "155" {
		t.Errorf("LookupKey() = %q, want id fallback", e.LookupKey())
	}

	e.Key = "the dark knight"
	if e.LookupKey() != "the dark knight" {
		t.Errorf("LookupKey() = %q", e.LookupKey())
	}
}

func TestVec(t *testing.T) {
	v := models.Vec{X: 3, Y: 4}
	if v.Len() != 5 {
		t.Errorf("Len() = %v, want 5", v.Len())
	}

	if got := v.Sub(models.Vec{X: 1, Y: 1}).Scale(2); got != (models.Vec{X: 4, Y: 6}) {
		t.Errorf("Sub/Scale = %+v", got)
	}

	if (models.Vec{X: math.NaN()}).Finite() {
		t.Error("NaN vector reported finite")
	}
}
