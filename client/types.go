package client

import "time"

// Vec is a 2D point or vector in viewport coordinates.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CastMember is one credited actor of a title.
type CastMember struct {
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
	Character string `json:"character"`
}

// Title is a movie or series with its cast.
type Title struct {
	ID    string       `json:"id"`
	Key   string       `json:"key"`
	Title string       `json:"title"`
	Year  int          `json:"year"`
	Type  string       `json:"type"`
	Cast  []CastMember `json:"cast"`
}

// TitleSummary is a search hit: a title without its cast.
type TitleSummary struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Title string `json:"title"`
	Year  int    `json:"year"`
	Type  string `json:"type"`
}

// SharedActor is an actor credited on both endpoints of an edge.
type SharedActor struct {
	ActorID           string `json:"actor_id"`
	ActorName         string `json:"actor_name"`
	CharacterInSource string `json:"character_in_source"`
	CharacterInTarget string `json:"character_in_target"`
}

// Node is one title in a connection graph.
type Node struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Title    string `json:"title"`
	Year     int    `json:"year"`
	Type     string `json:"type"`
	IsCenter bool   `json:"is_center"`
	Weight   int    `json:"weight"`
	Position Vec    `json:"position"`
	Velocity Vec    `json:"velocity"`
	Pin      *Vec   `json:"pin,omitempty"`
}

// Edge links the center title to a title sharing cast with it.
type Edge struct {
	Source       string        `json:"source"`
	Target       string        `json:"target"`
	SharedActors []SharedActor `json:"shared_actors"`
	Weight       int           `json:"weight"`
}

// Graph is the connection graph built around a center title.
type Graph struct {
	CenterID string `json:"center_id"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
}

// Center returns the center node, or nil.
func (g *Graph) Center() *Node {
	for i := range g.Nodes {
		if g.Nodes[i].IsCenter {
			return &g.Nodes[i]
		}
	}
	return nil
}

// NodeState is the physical state of a node in one frame.
type NodeState struct {
	ID       string  `json:"id"`
	Position Vec     `json:"position"`
	Velocity Vec     `json:"velocity"`
	Radius   float64 `json:"radius"`
	IsCenter bool    `json:"is_center"`
	Pinned   bool    `json:"pinned"`
}

// EdgeState is an edge as drawn in one frame.
type EdgeState struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Snapshot is the layout state after a tick.
type Snapshot struct {
	Tick   uint64      `json:"tick"`
	Alpha  float64     `json:"alpha"`
	AtRest bool        `json:"at_rest"`
	Nodes  []NodeState `json:"nodes"`
	Edges  []EdgeState `json:"edges"`
}

// InteractionState is the hover and drag state of a session.
type InteractionState struct {
	Hovered     string  `json:"hovered,omitempty"`
	Dragged     string  `json:"dragged,omitempty"`
	AlphaTarget float64 `json:"alpha_target"`
}

// Frame is the render state of a session.
type Frame struct {
	SessionID   string             `json:"session_id"`
	Snapshot    Snapshot           `json:"snapshot"`
	State       InteractionState   `json:"state"`
	EdgeOpacity []float64          `json:"edge_opacity"`
	NodeScale   map[string]float64 `json:"node_scale,omitempty"`
}

// Session is the response to creating a session.
type Session struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Model *Graph `json:"model"`
	Frame *Frame `json:"frame"`
}

// SessionSummary describes a live session.
type SessionSummary struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	Nodes     int       `json:"nodes"`
	AtRest    bool      `json:"at_rest"`
}

// CreateSessionRequest starts a session for a title in a viewport.
type CreateSessionRequest struct {
	Key      string  `json:"key"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Replaces string  `json:"replaces,omitempty"`
}

// Event type names.
const (
	EventHover     = "hover"
	EventDragStart = "drag_start"
	EventDragMove  = "drag_move"
	EventDragEnd   = "drag_end"
	EventClick     = "click"
	EventResize    = "resize"
	EventFocus     = "focus"
)

// Event is an interaction sent to a session.
type Event struct {
	Type   string  `json:"type"`
	NodeID string  `json:"node_id,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// PopupSide is one title's half of a popup entry.
type PopupSide struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
	Character string `json:"character"`
}

// PopupEntry is one shared actor in a popup.
type PopupEntry struct {
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	Primary   PopupSide `json:"primary"`
	Secondary PopupSide `json:"secondary"`
}

// Popup lists the actors a clicked title shares with the center.
type Popup struct {
	Heading string       `json:"heading"`
	Entries []PopupEntry `json:"entries"`
	Empty   bool         `json:"empty"`
	Message string       `json:"message,omitempty"`
	Anchor  Vec          `json:"anchor"`
}

// EventResult is what an event produced.
type EventResult struct {
	State    InteractionState `json:"state"`
	Popup    *Popup           `json:"popup,omitempty"`
	Reheated bool             `json:"reheated"`
}

// ExportStats summarises an export.
type ExportStats struct {
	NodeCount   int `json:"node_count"`
	EdgeCount   int `json:"edge_count"`
	SharedCount int `json:"shared_actor_count"`
}

// Export is a session's model with the latest node positions.
type Export struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	SessionID  string      `json:"session_id"`
	Center     string      `json:"center"`
	Stats      ExportStats `json:"stats"`
	Nodes      []Node      `json:"nodes"`
	Edges      []Edge      `json:"edges"`
}

// HealthResponse is the liveness check response.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Catalog       string  `json:"catalog"`
	Database      string  `json:"database"`
	Sessions      int     `json:"sessions"`
	Viewers       int     `json:"viewers"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// PoolStats is the database connection pool usage reported by readiness.
type PoolStats struct {
	Total    int32 `json:"total"`
	Idle     int32 `json:"idle"`
	Acquired int32 `json:"acquired"`
}

// ReadyResponse is the readiness check response. Pool is nil when the
// server has no database.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Pool   *PoolStats        `json:"pool,omitempty"`
}
