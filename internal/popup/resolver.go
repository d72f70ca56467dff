// Package popup resolves a click on a connected title into the shared-actor
// detail payload shown next to it.
package popup

import (
	"fmt"
	"math"

	"github.com/persistorai/actorweb/internal/models"
)

// NoSharedActors is the message of an empty payload.
const NoSharedActors = "No shared actors found"

// Config holds the popup geometry and fallback label.
type Config struct {
	MaxWidth        float64 `yaml:"max_width" json:"max_width"`
	EstimatedHeight float64 `yaml:"estimated_height" json:"estimated_height"`
	Margin          float64 `yaml:"margin" json:"margin"`
	VerticalOffset  float64 `yaml:"vertical_offset" json:"vertical_offset"`
	Placeholder     string  `yaml:"placeholder" json:"placeholder"`
}

// DefaultConfig returns the fallback popup configuration.
func DefaultConfig() Config {
	return Config{
		MaxWidth:        500,
		EstimatedHeight: 400,
		Margin:          20,
		VerticalOffset:  50,
		Placeholder:     "Unknown Character",
	}
}

// Sanitize returns a copy of c with invalid fields replaced by defaults, plus
// one warning per replaced field.
func (c Config) Sanitize() (Config, []string) {
	d := DefaultConfig()
	out := c

	var warnings []string

	bad := func(name string, v float64) {
		warnings = append(warnings, fmt.Sprintf("popup %s out of range (%v), using default", name, v))
	}

	if !(c.MaxWidth > 0) || math.IsInf(c.MaxWidth, 0) {
		bad("max_width", c.MaxWidth)
		out.MaxWidth = d.MaxWidth
	}

	if !(c.EstimatedHeight > 0) || math.IsInf(c.EstimatedHeight, 0) {
		bad("estimated_height", c.EstimatedHeight)
		out.EstimatedHeight = d.EstimatedHeight
	}

	if !(c.Margin >= 0) || math.IsInf(c.Margin, 0) {
		bad("margin", c.Margin)
		out.Margin = d.Margin
	}

	if math.IsNaN(c.VerticalOffset) || math.IsInf(c.VerticalOffset, 0) {
		bad("vertical_offset", c.VerticalOffset)
		out.VerticalOffset = d.VerticalOffset
	}

	if c.Placeholder == "" {
		out.Placeholder = d.Placeholder
	}

	return out, warnings
}

// Side describes one title of a shared actor entry.
type Side struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
	Character string `json:"character"`
}

// String renders the side as "Title (Year) as Character".
func (s Side) String() string {
	if s.Year == 0 {
		return fmt.Sprintf("%s as %s", s.Title, s.Character)
	}

	return fmt.Sprintf("%s (%d) as %s", s.Title, s.Year, s.Character)
}

// Entry is one shared actor in a popup.
type Entry struct {
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
	Primary   Side   `json:"primary"`
	Secondary Side   `json:"secondary"`
}

// Payload is the resolved popup content and its on-screen anchor.
type Payload struct {
	Heading string     `json:"heading"`
	Entries []Entry    `json:"entries"`
	Empty   bool       `json:"empty"`
	Message string     `json:"message,omitempty"`
	Anchor  models.Vec `json:"anchor"`
}

// Resolver builds popup payloads. It never fails: missing edges or cast data
// degrade to an empty payload or placeholder characters.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver, returning warnings for replaced config values.
func NewResolver(cfg Config) (*Resolver, []string) {
	cfg, warnings := cfg.Sanitize()
	return &Resolver{cfg: cfg}, warnings
}

// Config returns the sanitized configuration in use.
func (r *Resolver) Config() Config { return r.cfg }

// Resolve builds the payload for a click on clickedID at click within a
// viewport of the given size. The primary side is the model's center.
func (r *Resolver) Resolve(model *models.GraphModel, clickedID string, click, viewport models.Vec) Payload {
	p := Payload{
		Entries: []Entry{},
		Anchor:  r.Anchor(click, viewport),
	}

	center := model.Center()
	clicked, ok := model.Node(clickedID)

	if center != nil && ok {
		p.Heading = fmt.Sprintf("Shared Actors: %s ↔ %s", center.Title, clicked.Title)
	}

	var edge *models.Edge
	if center != nil && ok {
		edge, _ = model.EdgeBetween(center.ID, clicked.ID)
	}

	if edge == nil || len(edge.SharedActors) == 0 {
		p.Empty = true
		p.Message = NoSharedActors

		return p
	}

	for i := range edge.SharedActors {
		a := &edge.SharedActors[i]
		p.Entries = append(p.Entries, Entry{
			ActorID:   a.ActorID,
			ActorName: a.ActorName,
			Primary:   r.side(model, edge, a, center),
			Secondary: r.side(model, edge, a, clicked),
		})
	}

	return p
}

func (r *Resolver) side(model *models.GraphModel, e *models.Edge, a *models.SharedActor, n *models.Node) Side {
	return Side{
		ID:        n.ID,
		Title:     n.Title,
		Year:      n.Year,
		Character: r.character(model, e, a, n.ID),
	}
}

// character resolves through the model's cast lookup, then the character
// stored on the edge, then the placeholder.
func (r *Resolver) character(model *models.GraphModel, e *models.Edge, a *models.SharedActor, entityID string) string {
	if c, ok := model.Character(entityID, a.ActorID); ok {
		return c
	}

	if c := a.CharacterIn(e, entityID); c != "" {
		return c
	}

	return r.cfg.Placeholder
}

// Anchor places the popup below the click and clamps it into the viewport
// inset by Margin on every side. Right and bottom overflow are corrected
// first, then the margin is enforced on the left and top, so on a viewport too small for the popup the top-left
// margin wins.
func (r *Resolver) Anchor(click, viewport models.Vec) models.Vec {
	x := click.X
	y := click.Y + r.cfg.VerticalOffset

	if x+r.cfg.MaxWidth > viewport.X-r.cfg.Margin {
		x = viewport.X - r.cfg.MaxWidth - r.cfg.Margin
	}

	if y+r.cfg.EstimatedHeight > viewport.Y-r.cfg.Margin {
		y = viewport.Y - r.cfg.EstimatedHeight - r.cfg.Margin
	}

	return models.Vec{
		X: math.Max(r.cfg.Margin, x),
		Y: math.Max(r.cfg.Margin, y),
	}
}
