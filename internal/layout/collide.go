package layout

// relaxCollisions pushes overlapping node circles apart. Each pass moves both
// nodes of an overlapping pair along their separating vector, larger nodes
// moving less; a pinned node never moves and its partner takes the whole
// correction. Passes update positions in place, so later pairs see earlier
// corrections within the same tick.
func (s *Simulation) relaxCollisions() {
	strength := s.cfg.CollisionStrength

	for range s.cfg.CollisionIterations {
		moved := false

		for i := 0; i < len(s.bodies); i++ {
			for j := i + 1; j < len(s.bodies); j++ {
				if s.separate(i, j, strength) {
					moved = true
				}
			}
		}

		if !moved {
			return
		}
	}
}

func (s *Simulation) separate(i, j int, strength float64) bool {
	a, b := &s.bodies[i], &s.bodies[j]
	if a.pin != nil && b.pin != nil {
		return false
	}

	r := a.radius + b.radius
	d := b.pos.Sub(a.pos)
	l2 := d.X*d.X + d.Y*d.Y

	if l2 >= r*r {
		return false
	}

	if l2 == 0 {
		d = jiggle(i, j)
	}

	l := d.Len()
	d = d.Scale((r - l) / l * strength)

	ra, rb := a.radius*a.radius, b.radius*b.radius
	wa := rb / (ra + rb)

	switch {
	case a.pin != nil:
		wa = 0
	case b.pin != nil:
		wa = 1
	}

	a.pos = a.pos.Sub(d.Scale(wa))
	b.pos = b.pos.Add(d.Scale(1 - wa))

	return true
}
