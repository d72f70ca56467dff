// Package interaction turns host UI events into pin, hover and alpha changes
// on a layout engine, and click events into popup payloads.
//
// A Controller is synchronous and not safe for concurrent use. In the server
// it is owned by the same goroutine that steps the engine, so events are
// always applied between ticks.
package interaction

import (
	"fmt"
	"math"

	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/popup"
)

// Engine is the part of the layout engine the controller drives.
type Engine interface {
	Has(id string) bool
	Pin(id string, p models.Vec) error
	Unpin(id string) error
	SetAlphaTarget(a float64)
	Restart()
	Resize(viewport models.Vec)
	Focus(id string, viewport models.Vec) error
}

// PopupResolver resolves clicks into popup payloads.
type PopupResolver interface {
	Resolve(model *models.GraphModel, clickedID string, click, viewport models.Vec) popup.Payload
}

// Config holds the highlight and drag tunables.
type Config struct {
	// DragAlphaTarget is the alpha target held while a node is dragged.
	DragAlphaTarget float64 `yaml:"drag_alpha_target" json:"drag_alpha_target"`
	ActiveOpacity   float64 `yaml:"active_opacity" json:"active_opacity"`
	DimmedOpacity   float64 `yaml:"dimmed_opacity" json:"dimmed_opacity"`
	DefaultOpacity  float64 `yaml:"default_opacity" json:"default_opacity"`
	HoverScale      float64 `yaml:"hover_scale" json:"hover_scale"`
}

// DefaultConfig returns the fallback interaction configuration.
func DefaultConfig() Config {
	return Config{
		DragAlphaTarget: 0.3,
		ActiveOpacity:   1,
		DimmedOpacity:   0.2,
		DefaultOpacity:  0.6,
		HoverScale:      1.2,
	}
}

// Sanitize returns a copy of c with out-of-range fields replaced by defaults,
// plus one warning per replaced field.
func (c Config) Sanitize() (Config, []string) {
	d := DefaultConfig()
	out := c

	var warnings []string

	unit := func(name string, v float64, dst *float64, def float64, allowZero bool) {
		ok := v <= 1 && (v > 0 || (allowZero && v == 0))
		if ok {
			return
		}
		*dst = def
		warnings = append(warnings, fmt.Sprintf("%s out of range (%v), using default", name, v))
	}

	unit("drag_alpha_target", c.DragAlphaTarget, &out.DragAlphaTarget, d.DragAlphaTarget, false)
	unit("active_opacity", c.ActiveOpacity, &out.ActiveOpacity, d.ActiveOpacity, true)
	unit("dimmed_opacity", c.DimmedOpacity, &out.DimmedOpacity, d.DimmedOpacity, true)
	unit("default_opacity", c.DefaultOpacity, &out.DefaultOpacity, d.DefaultOpacity, true)

	if !(c.HoverScale > 0) || math.IsInf(c.HoverScale, 0) {
		out.HoverScale = d.HoverScale
		warnings = append(warnings, fmt.Sprintf("hover_scale out of range (%v), using default", c.HoverScale))
	}

	return out, warnings
}

// State is the interaction state exposed to renderers.
type State struct {
	Hovered     string  `json:"hovered,omitempty"`
	Dragged     string  `json:"dragged,omitempty"`
	AlphaTarget float64 `json:"alpha_target"`
}

// Controller holds hover and drag state for one graph.
type Controller struct {
	cfg      Config
	engine   Engine
	popups   PopupResolver
	model    *models.GraphModel
	viewport models.Vec

	hovered     string
	dragged     string
	alphaTarget float64
}

// New creates a Controller for model laid out by engine in a viewport of the
// given size. It returns warnings for replaced config values.
func New(model *models.GraphModel, engine Engine, popups PopupResolver, viewport models.Vec, cfg Config) (*Controller, []string) {
	cfg, warnings := cfg.Sanitize()

	return &Controller{
		cfg:      cfg,
		engine:   engine,
		popups:   popups,
		model:    model,
		viewport: viewport,
	}, warnings
}

// State returns the current interaction state.
func (c *Controller) State() State {
	return State{Hovered: c.hovered, Dragged: c.dragged, AlphaTarget: c.alphaTarget}
}

// Viewport returns the current viewport size.
func (c *Controller) Viewport() models.Vec { return c.viewport }

// Hover sets the highlighted node. An empty id clears the highlight.
func (c *Controller) Hover(id string) error {
	if id != "" && !c.engine.Has(id) {
		return fmt.Errorf("hover %q: %w", id, models.ErrNodeNotFound)
	}

	c.hovered = id

	return nil
}

// EdgeOpacity returns the opacity for the edge between source and target.
func (c *Controller) EdgeOpacity(source, target string) float64 {
	switch {
	case c.hovered == "":
		return c.cfg.DefaultOpacity
	case source == c.hovered || target == c.hovered:
		return c.cfg.ActiveOpacity
	default:
		return c.cfg.DimmedOpacity
	}
}

// EdgeOpacities returns the opacity of every edge, in order.
func (c *Controller) EdgeOpacities(edges []models.EdgeState) []float64 {
	out := make([]float64, len(edges))
	for i, e := range edges {
		out[i] = c.EdgeOpacity(e.Source, e.Target)
	}

	return out
}

// NodeScale returns the display scale of a node.
func (c *Controller) NodeScale(id string) float64 {
	if id != "" && id == c.hovered {
		return c.cfg.HoverScale
	}

	return 1
}

// DragStart pins id at p and raises the alpha target so the rest of the
// graph follows. A drag already in progress is ended first.
func (c *Controller) DragStart(id string, p models.Vec) error {
	if !p.Finite() {
		return fmt.Errorf("drag start: %w: non-finite position", models.ErrInvalidEvent)
	}

	if !c.engine.Has(id) {
		return fmt.Errorf("drag start %q: %w", id, models.ErrNodeNotFound)
	}

	if c.dragged != "" {
		c.DragEnd()
	}

	if err := c.engine.Pin(id, p); err != nil {
		return fmt.Errorf("drag start %q: %w", id, err)
	}

	c.dragged = id
	c.setAlphaTarget(c.cfg.DragAlphaTarget)
	c.engine.Restart()

	return nil
}

// DragMove moves the pin of the dragged node. It reports false when no drag
// is in progress.
func (c *Controller) DragMove(p models.Vec) (bool, error) {
	if !p.Finite() {
		return false, fmt.Errorf("drag move: %w: non-finite position", models.ErrInvalidEvent)
	}

	if c.dragged == "" {
		return false, nil
	}

	if err := c.engine.Pin(c.dragged, p); err != nil {
		return false, fmt.Errorf("drag move %q: %w", c.dragged, err)
	}

	return true, nil
}

// DragEnd releases the dragged node and lets the graph settle. It reports
// false when no drag is in progress.
func (c *Controller) DragEnd() bool {
	if c.dragged == "" {
		return false
	}

	// The node was pinned by DragStart, so Unpin cannot miss.
	_ = c.engine.Unpin(c.dragged)
	c.dragged = ""
	c.setAlphaTarget(0)

	return true
}

// Click resolves a click on id at p. Clicking the center is a no-op and
// returns nil.
func (c *Controller) Click(id string, p models.Vec) (*popup.Payload, error) {
	n, ok := c.model.Node(id)
	if !ok {
		return nil, fmt.Errorf("click %q: %w", id, models.ErrNodeNotFound)
	}

	if n.IsCenter {
		return nil, nil
	}

	payload := c.popups.Resolve(c.model, id, p, c.viewport)

	return &payload, nil
}

// Resize moves the centering target to the middle of the new viewport.
func (c *Controller) Resize(width, height float64) error {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return fmt.Errorf("resize %vx%v: %w", width, height, models.ErrInvalidEvent)
	}

	c.viewport = models.Vec{X: width, Y: height}
	c.engine.Resize(c.viewport)

	return nil
}

// Focus drifts id toward the middle of the viewport.
func (c *Controller) Focus(id string) error {
	if err := c.engine.Focus(id, c.viewport); err != nil {
		return fmt.Errorf("focus %q: %w", id, err)
	}

	return nil
}

func (c *Controller) setAlphaTarget(a float64) {
	c.alphaTarget = a
	c.engine.SetAlphaTarget(a)
}
