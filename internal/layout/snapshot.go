package layout

import "github.com/persistorai/actorweb/internal/models"

// Snapshot is an immutable view of the simulation after a tick. Renderers
// consume snapshots instead of reading simulation state directly. Edges is
// shared between snapshots of the same simulation and must not be modified.
type Snapshot struct {
	Tick   uint64             `json:"tick"`
	Alpha  float64            `json:"alpha"`
	AtRest bool               `json:"at_rest"`
	Nodes  []models.NodeState `json:"nodes"`
	Edges  []models.EdgeState `json:"edges"`
}

// Snapshot captures the current state without advancing the simulation.
func (s *Simulation) Snapshot() Snapshot {
	nodes := make([]models.NodeState, len(s.bodies))
	for i := range s.bodies {
		b := &s.bodies[i]
		nodes[i] = models.NodeState{
			ID:       b.id,
			Position: b.pos,
			Velocity: b.vel,
			Radius:   b.radius,
			IsCenter: b.center,
			Pinned:   b.pin != nil,
		}
	}

	edges := s.edges
	if edges == nil {
		edges = []models.EdgeState{}
	}

	return Snapshot{
		Tick:   s.tick,
		Alpha:  s.alpha,
		AtRest: s.AtRest(),
		Nodes:  nodes,
		Edges:  edges,
	}
}

// Node returns the state of a node in the snapshot.
func (s *Snapshot) Node(id string) (models.NodeState, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}

	return models.NodeState{}, false
}

// Apply copies snapshot positions and velocities onto the model's nodes,
// for export.
func (s *Snapshot) Apply(model *models.GraphModel) []models.Node {
	out := make([]models.Node, len(model.Nodes))
	copy(out, model.Nodes)

	for i := range out {
		if st, ok := s.Node(out[i].ID); ok {
			out[i].Position = st.Position
			out[i].Velocity = st.Velocity
			if st.Pinned {
				p := st.Position
				out[i].Pin = &p
			}
		}
	}

	return out
}
