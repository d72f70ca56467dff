package layout

import "github.com/persistorai/actorweb/internal/models"

// applyLinks pulls the endpoints of every edge toward LinkDistance separation
// along their current separating vector. Low-degree endpoints move more.
func (s *Simulation) applyLinks() {
	dist := s.cfg.LinkDistance

	for _, l := range s.links {
		src, dst := &s.bodies[l.source], &s.bodies[l.target]

		d := dst.pos.Sub(src.pos)
		n := d.Len()
		if n == 0 {
			d = jiggle(l.source, l.target)
			n = d.Len()
		}

		k := (n - dist) / n * l.strength
		d = d.Scale(k)

		dst.acc = dst.acc.Sub(d.Scale(l.bias))
		src.acc = src.acc.Add(d.Scale(1 - l.bias))
	}
}

// applyCharge applies pairwise inverse-square repulsion between all nodes,
// exactly or through a quadtree when Theta > 0. A negative ChargeStrength
// attracts instead.
func (s *Simulation) applyCharge() {
	if s.cfg.ChargeStrength == 0 || len(s.bodies) < 2 {
		return
	}

	if s.cfg.Theta > 0 {
		s.applyChargeApprox()
		return
	}

	strength := s.cfg.ChargeStrength

	for i := 0; i < len(s.bodies); i++ {
		for j := i + 1; j < len(s.bodies); j++ {
			a := chargeAccel(s.bodies[i].pos, s.bodies[j].pos, i, j, strength)
			s.bodies[i].acc = s.bodies[i].acc.Add(a)
			s.bodies[j].acc = s.bodies[j].acc.Sub(a)
		}
	}
}

func (s *Simulation) applyChargeApprox() {
	points := make([]models.Vec, len(s.bodies))
	for i := range s.bodies {
		points[i] = s.bodies[i].pos
	}

	tree := newQuadtree(points)
	for i := range s.bodies {
		s.bodies[i].acc = s.bodies[i].acc.Add(tree.force(i, s.cfg.ChargeStrength, s.cfg.Theta))
	}
}

// applyCentering pulls the centroid of the graph toward the centering target.
func (s *Simulation) applyCentering() {
	if s.cfg.CenterStrength == 0 {
		return
	}

	shift := s.target.Sub(s.centroid()).Scale(s.cfg.CenterStrength)

	for i := range s.bodies {
		s.bodies[i].acc = s.bodies[i].acc.Add(shift)
	}
}

func (s *Simulation) centroid() models.Vec {
	var c models.Vec
	if len(s.bodies) == 0 {
		return c
	}

	for i := range s.bodies {
		c = c.Add(s.bodies[i].pos)
	}

	return c.Scale(1 / float64(len(s.bodies)))
}

// jiggle returns a tiny deterministic separation for coincident nodes so the
// layout stays reproducible.
func jiggle(i, j int) models.Vec {
	sign := 1.0
	if i > j {
		sign = -1
		i, j = j, i
	}

	k := float64((i*31+j*17)%11+1) * 1e-6

	return models.Vec{X: sign * k, Y: sign * k * 0.5}
}
