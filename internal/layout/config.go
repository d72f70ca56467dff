package layout

import (
	"fmt"
	"math"
)

// Config holds the tunables of the force simulation. All values are injected
// by the caller; Sanitize replaces out-of-range values with DefaultConfig.
type Config struct {
	// LinkDistance is the rest length of every edge.
	LinkDistance float64 `yaml:"link_distance" json:"link_distance"`
	// ChargeStrength scales pairwise inverse-square repulsion. Negative attracts.
	ChargeStrength float64 `yaml:"charge_strength" json:"charge_strength"`
	// Theta enables the Barnes-Hut approximation of the charge force when > 0.
	Theta float64 `yaml:"theta" json:"theta"`
	// CenterRadius and ConnectedRadius are collision radii by node role.
	CenterRadius    float64 `yaml:"center_radius" json:"center_radius"`
	ConnectedRadius float64 `yaml:"connected_radius" json:"connected_radius"`
	// RadiusByWeight grows connected radii 20% per extra shared actor, capped at 2x.
	RadiusByWeight      bool    `yaml:"radius_by_weight" json:"radius_by_weight"`
	CollisionIterations int     `yaml:"collision_iterations" json:"collision_iterations"`
	CollisionStrength   float64 `yaml:"collision_strength" json:"collision_strength"`
	CenterStrength      float64 `yaml:"center_strength" json:"center_strength"`
	DecayRate           float64 `yaml:"decay_rate" json:"decay_rate"`
	AlphaMin            float64 `yaml:"alpha_min" json:"alpha_min"`
	AlphaStart          float64 `yaml:"alpha_start" json:"alpha_start"`
	ReheatAlpha         float64 `yaml:"reheat_alpha" json:"reheat_alpha"`
	// DragDamping is the fraction of velocity retained after each tick.
	DragDamping float64 `yaml:"drag_damping" json:"drag_damping"`
}

// maxCollisionIterations bounds the per-tick relaxation work.
const maxCollisionIterations = 16

// DefaultConfig returns the fallback values used when a configured value is
// out of range.
func DefaultConfig() Config {
	return Config{
		LinkDistance:        200,
		ChargeStrength:      160_000,
		Theta:               0,
		CenterRadius:        60,
		ConnectedRadius:     50,
		RadiusByWeight:      false,
		CollisionIterations: 3,
		CollisionStrength:   1,
		CenterStrength:      0.1,
		DecayRate:           1 - math.Pow(0.001, 1.0/300),
		AlphaMin:            0.001,
		AlphaStart:          1,
		ReheatAlpha:         0.3,
		DragDamping:         0.6,
	}
}

// Sanitize returns a copy of c with every out-of-range field replaced by its
// default, plus one warning per replaced field.
func (c Config) Sanitize() (Config, []string) { //nolint:gocyclo,cyclop // one branch per field.
	d := DefaultConfig()
	out := c

	var warnings []string

	fix := func(name string, bad bool, got any, set func()) {
		if !bad {
			return
		}
		set()
		warnings = append(warnings, fmt.Sprintf("%s out of range (%v), using default", name, got))
	}

	fix("link_distance", !finite(c.LinkDistance) || c.LinkDistance < 0, c.LinkDistance, func() { out.LinkDistance = d.LinkDistance })
	fix("charge_strength", !finite(c.ChargeStrength), c.ChargeStrength, func() { out.ChargeStrength = d.ChargeStrength })
	fix("theta", !finite(c.Theta) || c.Theta < 0, c.Theta, func() { out.Theta = d.Theta })
	fix("center_radius", !finite(c.CenterRadius) || c.CenterRadius <= 0, c.CenterRadius, func() { out.CenterRadius = d.CenterRadius })
	fix("connected_radius", !finite(c.ConnectedRadius) || c.ConnectedRadius <= 0, c.ConnectedRadius, func() { out.ConnectedRadius = d.ConnectedRadius })
	fix("collision_iterations", c.CollisionIterations < 1 || c.CollisionIterations > maxCollisionIterations, c.CollisionIterations, func() {
		out.CollisionIterations = d.CollisionIterations
	})
	fix("collision_strength", !finite(c.CollisionStrength) || c.CollisionStrength <= 0 || c.CollisionStrength > 1, c.CollisionStrength, func() {
		out.CollisionStrength = d.CollisionStrength
	})
	fix("center_strength", !finite(c.CenterStrength) || c.CenterStrength < 0 || c.CenterStrength > 1, c.CenterStrength, func() {
		out.CenterStrength = d.CenterStrength
	})
	fix("decay_rate", !finite(c.DecayRate) || c.DecayRate <= 0 || c.DecayRate > 1, c.DecayRate, func() { out.DecayRate = d.DecayRate })
	fix("alpha_min", !finite(c.AlphaMin) || c.AlphaMin <= 0 || c.AlphaMin >= 1, c.AlphaMin, func() { out.AlphaMin = d.AlphaMin })
	fix("alpha_start", !finite(c.AlphaStart) || c.AlphaStart <= 0 || c.AlphaStart > 1, c.AlphaStart, func() { out.AlphaStart = d.AlphaStart })
	fix("reheat_alpha", !finite(c.ReheatAlpha) || c.ReheatAlpha <= 0 || c.ReheatAlpha > 1, c.ReheatAlpha, func() { out.ReheatAlpha = d.ReheatAlpha })
	fix("drag_damping", !finite(c.DragDamping) || c.DragDamping < 0 || c.DragDamping > 1, c.DragDamping, func() { out.DragDamping = d.DragDamping })

	return out, warnings
}

// TicksToRest estimates how many ticks alpha needs to decay from alpha to
// AlphaMin with a zero alpha target.
func (c Config) TicksToRest(alpha float64) int {
	if alpha <= c.AlphaMin {
		return 0
	}

	if c.DecayRate >= 1 {
		return 1
	}

	return int(math.Ceil(math.Log(c.AlphaMin/alpha) / math.Log(1-c.DecayRate)))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
