package layout

import (
	"math"

	"github.com/persistorai/actorweb/internal/models"
)

const (
	// maxQuadDepth bounds subdivision so coincident points share a leaf.
	maxQuadDepth = 32
	// minChargeDistance is the distance below which the charge force stops
	// growing, so nearly coincident nodes do not fly apart.
	minChargeDistance = 40.0
)

type quad struct {
	x0, y0, size float64
	count        int
	com          models.Vec
	bodies       []int
	children     *[4]*quad
}

type quadtree struct {
	points []models.Vec
	root   *quad
}

func newQuadtree(points []models.Vec) *quadtree {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, p := range points {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}

	size := math.Max(maxX-minX, maxY-minY) + 1
	t := &quadtree{points: points, root: &quad{x0: minX, y0: minY, size: size}}

	for i := range points {
		t.root.insert(points, i, 0)
	}

	return t
}

func (q *quad) insert(points []models.Vec, i, depth int) {
	p := points[i]
	q.com = q.com.Scale(float64(q.count)).Add(p).Scale(1 / float64(q.count+1))
	q.count++

	if q.children == nil {
		if q.count == 1 || depth >= maxQuadDepth {
			q.bodies = append(q.bodies, i)
			return
		}

		old := q.bodies
		q.bodies = nil
		q.children = &[4]*quad{}

		for _, o := range old {
			q.child(points[o]).insert(points, o, depth+1)
		}
	}

	q.child(p).insert(points, i, depth+1)
}

func (q *quad) child(p models.Vec) *quad {
	half := q.size / 2
	idx := 0
	x0, y0 := q.x0, q.y0

	if p.X >= q.x0+half {
		idx |= 1
		x0 += half
	}

	if p.Y >= q.y0+half {
		idx |= 2
		y0 += half
	}

	if q.children[idx] == nil {
		q.children[idx] = &quad{x0: x0, y0: y0, size: half}
	}

	return q.children[idx]
}

func (q *quad) contains(p models.Vec) bool {
	return p.X >= q.x0 && p.X < q.x0+q.size && p.Y >= q.y0 && p.Y < q.y0+q.size
}

// force returns the charge acceleration on point i. Cells that are small
// relative to their distance from i and do not contain i are treated as a
// single charge at their center of mass.
func (t *quadtree) force(i int, strength, theta float64) models.Vec {
	var acc models.Vec

	p := t.points[i]

	var visit func(q *quad)
	visit = func(q *quad) {
		if q == nil || q.count == 0 {
			return
		}

		if q.children == nil {
			for _, j := range q.bodies {
				if j != i {
					acc = acc.Add(chargeAccel(p, t.points[j], i, j, strength))
				}
			}

			return
		}

		d := q.com.Sub(p)
		l2 := d.X*d.X + d.Y*d.Y

		if !q.contains(p) && q.size*q.size < theta*theta*l2 {
			acc = acc.Add(inverseSquare(d, l2, strength*float64(q.count)))
			return
		}

		for _, c := range q.children {
			visit(c)
		}
	}

	visit(t.root)

	return acc
}

// chargeAccel returns the acceleration on a at pa caused by b at pb. A
// positive strength pushes a away from b, a negative one pulls it closer.
func chargeAccel(pa, pb models.Vec, a, b int, strength float64) models.Vec {
	d := pb.Sub(pa)
	l2 := d.X*d.X + d.Y*d.Y

	if l2 == 0 {
		d = jiggle(a, b)
		l2 = d.X*d.X + d.Y*d.Y
	}

	return inverseSquare(d, l2, strength)
}

// inverseSquare returns strength/r² directed against d, where d points from
// the affected node toward the source and l2 is its squared length.
func inverseSquare(d models.Vec, l2, strength float64) models.Vec {
	r := math.Sqrt(l2)
	soft := math.Max(r, minChargeDistance)

	return d.Scale(-strength / (r * soft * soft))
}
