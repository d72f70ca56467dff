package models

// GraphModel is the node/edge model built around a selected center title.
// A model is immutable once built; a new selection produces a new model.
type GraphModel struct {
	CenterID string `json:"center_id"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
	// Casts maps entity id to actor id to character name.
	Casts map[string]map[string]string `json:"-"`
}

// Node returns the node with the given id.
func (g *GraphModel) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}

	return nil, false
}

// Center returns the center node, or nil for an empty model.
func (g *GraphModel) Center() *Node {
	n, ok := g.Node(g.CenterID)
	if !ok {
		return nil
	}

	return n
}

// EdgeBetween returns the edge joining a and b in either orientation.
func (g *GraphModel) EdgeBetween(a, b string) (*Edge, bool) {
	for i := range g.Edges {
		if g.Edges[i].Connects(a, b) {
			return &g.Edges[i], true
		}
	}

	return nil, false
}

// Character looks up the character an actor plays in the given entity.
func (g *GraphModel) Character(entityID, actorID string) (string, bool) {
	cast, ok := g.Casts[entityID]
	if !ok {
		return "", false
	}

	c, ok := cast[actorID]
	if !ok || c == "" {
		return "", false
	}

	return c, true
}

// Degree returns the number of edges incident to each node id.
func (g *GraphModel) Degree() map[string]int {
	deg := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		deg[e.Source]++
		deg[e.Target]++
	}

	return deg
}

// Validate checks the structural invariants of a model.
func (g *GraphModel) Validate() error {
	seen := make(map[string]bool, len(g.Nodes))
	centers := 0

	for _, n := range g.Nodes {
		if seen[n.ID] {
			return ErrDuplicateNode
		}
		seen[n.ID] = true

		if n.IsCenter {
			centers++
		}
	}

	if len(g.Nodes) > 0 && centers != 1 {
		return ErrCenterCount
	}

	for _, e := range g.Edges {
		if e.Source == e.Target {
			return ErrSelfEdge
		}

		if e.Weight < 1 || e.Weight != len(e.SharedActors) {
			return ErrEdgeWeight
		}

		if !seen[e.Source] || !seen[e.Target] {
			return ErrNodeNotFound
		}
	}

	return nil
}
