package interaction_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/persistorai/actorweb/internal/interaction"
	"github.com/persistorai/actorweb/internal/models"
)

func TestEnvelope_Event(t *testing.T) {
	tests := []struct {
		raw  string
		want interaction.Event
	}{
		{`{"type":"hover","node_id":"B"}`, interaction.Hover{NodeID: "B"}},
		{`{"type":"hover"}`, interaction.Hover{}},
		{`{"type":"drag_start","node_id":"B","x":1,"y":2}`, interaction.DragStart{NodeID: "B", Pos: models.Vec{X: 1, Y: 2}}},
		{`{"type":"drag_move","x":3,"y":4}`, interaction.DragMove{Pos: models.Vec{X: 3, Y: 4}}},
		{`{"type":"drag_end"}`, interaction.DragEnd{}},
		{`{"type":"click","node_id":"C","x":5,"y":6}`, interaction.Click{NodeID: "C", Pos: models.Vec{X: 5, Y: 6}}},
		{`{"type":"resize","width":640,"height":480}`, interaction.Resize{Width: 640, Height: 480}},
		{`{"type":"focus","node_id":"C"}`, interaction.Focus{NodeID: "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.want.Type(), func(t *testing.T) {
			var env interaction.Envelope
			if err := json.Unmarshal([]byte(tt.raw), &env); err != nil {
				t.Fatal(err)
			}

			got, err := env.Event()
			if err != nil {
				t.Fatalf("Event: %v", err)
			}

			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}

	if _, err := (interaction.Envelope{Type: "zoom"}).Event(); !errors.Is(err, models.ErrInvalidEvent) {
		t.Errorf("unknown type err = %v", err)
	}
}

func TestDispatch(t *testing.T) {
	c, sim, _ := newController(t)
	sim.RunUntilRest(1000)

	res, err := c.Dispatch(interaction.DragStart{NodeID: "C", Pos: models.Vec{X: 50, Y: 50}})
	if err != nil || !res.Reheated || res.State.Dragged != "C" {
		t.Fatalf("drag start: res=%+v err=%v", res, err)
	}

	res, err = c.Dispatch(interaction.DragEnd{})
	if err != nil || res.State.Dragged != "" || res.State.AlphaTarget != 0 {
		t.Fatalf("drag end: res=%+v err=%v", res, err)
	}

	res, err = c.Dispatch(interaction.Click{NodeID: "C", Pos: models.Vec{X: 10, Y: 10}})
	if err != nil || res.Popup == nil || res.Popup.Entries[0].ActorName != "X" {
		t.Fatalf("click: res=%+v err=%v", res, err)
	}

	res, err = c.Dispatch(interaction.Resize{Width: 1000, Height: 700})
	if err != nil || !res.Reheated {
		t.Fatalf("resize: res=%+v err=%v", res, err)
	}

	if sim.CenterTarget() != (models.Vec{X: 500, Y: 350}) {
		t.Errorf("center target = %+v", sim.CenterTarget())
	}

	if _, err := c.Dispatch(interaction.Hover{NodeID: "nope"}); !errors.Is(err, models.ErrNodeNotFound) {
		t.Errorf("hover unknown err = %v", err)
	}

	if _, err := c.Dispatch(nil); !errors.Is(err, models.ErrInvalidEvent) {
		t.Errorf("nil event err = %v", err)
	}
}
