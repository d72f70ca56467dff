package models

// SharedActor is an actor credited on both endpoints of an edge.
type SharedActor struct {
	ActorID           string `json:"actor_id"`
	ActorName         string `json:"actor_name"`
	CharacterInSource string `json:"character_in_source"`
	CharacterInTarget string `json:"character_in_target"`
}

// Edge links two titles through their shared cast. Edges are undirected;
// Source and Target order carries no meaning for lookups.
type Edge struct {
	Source       string        `json:"source"`
	Target       string        `json:"target"`
	SharedActors []SharedActor `json:"shared_actors"`
	Weight       int           `json:"weight"`
}

// Connects reports whether the edge joins a and b in either orientation.
func (e *Edge) Connects(a, b string) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// Touches reports whether id is one of the edge endpoints.
func (e *Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// CharacterIn returns the stored character for the shared actor in the
// given endpoint.
func (a *SharedActor) CharacterIn(e *Edge, entityID string) string {
	switch entityID {
	case e.Source:
		return a.CharacterInSource
	case e.Target:
		return a.CharacterInTarget
	default:
		return ""
	}
}

// EdgeState is the per-tick view of an edge as seen by a renderer.
type EdgeState struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}
