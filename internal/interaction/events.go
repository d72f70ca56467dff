package interaction

import (
	"fmt"

	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/popup"
)

// Event type names used on the wire.
const (
	TypeHover     = "hover"
	TypeDragStart = "drag_start"
	TypeDragMove  = "drag_move"
	TypeDragEnd   = "drag_end"
	TypeClick     = "click"
	TypeResize    = "resize"
	TypeFocus     = "focus"
)

// Event is a typed host UI event.
type Event interface {
	Type() string
}

// Hover highlights NodeID, or clears the highlight when NodeID is empty.
type Hover struct{ NodeID string }

// DragStart pins NodeID at Pos.
type DragStart struct {
	NodeID string
	Pos    models.Vec
}

// DragMove moves the dragged node to Pos.
type DragMove struct{ Pos models.Vec }

// DragEnd releases the dragged node.
type DragEnd struct{}

// Click opens the popup for NodeID.
type Click struct {
	NodeID string
	Pos    models.Vec
}

// Resize reports a new viewport size.
type Resize struct{ Width, Height float64 }

// Focus drifts NodeID toward the viewport center.
type Focus struct{ NodeID string }

func (Hover) Type() string     { return TypeHover }
func (DragStart) Type() string { return TypeDragStart }
func (DragMove) Type() string  { return TypeDragMove }
func (DragEnd) Type() string   { return TypeDragEnd }
func (Click) Type() string     { return TypeClick }
func (Resize) Type() string    { return TypeResize }
func (Focus) Type() string     { return TypeFocus }

// Envelope is the JSON form of an event.
type Envelope struct {
	Type   string  `json:"type" binding:"required"`
	NodeID string  `json:"node_id,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Event converts the envelope into a typed event.
func (e Envelope) Event() (Event, error) {
	pos := models.Vec{X: e.X, Y: e.Y}

	switch e.Type {
	case TypeHover:
		return Hover{NodeID: e.NodeID}, nil
	case TypeDragStart:
		return DragStart{NodeID: e.NodeID, Pos: pos}, nil
	case TypeDragMove:
		return DragMove{Pos: pos}, nil
	case TypeDragEnd:
		return DragEnd{}, nil
	case TypeClick:
		return Click{NodeID: e.NodeID, Pos: pos}, nil
	case TypeResize:
		return Resize{Width: e.Width, Height: e.Height}, nil
	case TypeFocus:
		return Focus{NodeID: e.NodeID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", models.ErrInvalidEvent, e.Type)
	}
}

// Result is what a dispatched event produced.
type Result struct {
	State State          `json:"state"`
	Popup *popup.Payload `json:"popup,omitempty"`
	// Reheated is true when the event may have woken the engine.
	Reheated bool `json:"reheated"`
}

// Dispatch applies ev to the controller.
func (c *Controller) Dispatch(ev Event) (Result, error) {
	var (
		res Result
		err error
	)

	switch ev := ev.(type) {
	case Hover:
		err = c.Hover(ev.NodeID)
	case DragStart:
		err = c.DragStart(ev.NodeID, ev.Pos)
		res.Reheated = err == nil
	case DragMove:
		res.Reheated, err = c.DragMove(ev.Pos)
	case DragEnd:
		c.DragEnd()
	case Click:
		res.Popup, err = c.Click(ev.NodeID, ev.Pos)
	case Resize:
		err = c.Resize(ev.Width, ev.Height)
		res.Reheated = err == nil
	case Focus:
		err = c.Focus(ev.NodeID)
		res.Reheated = err == nil
	default:
		err = fmt.Errorf("%w: %T", models.ErrInvalidEvent, ev)
	}

	res.State = c.State()

	return res, err
}
