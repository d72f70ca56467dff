package models

import "time"

// GraphExport is a point-in-time dump of a session: the model plus the
// latest node positions. It is produced on demand and never read back.
type GraphExport struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	SessionID  string      `json:"session_id"`
	Center     string      `json:"center"`
	Stats      ExportStats `json:"stats"`
	Nodes      []Node      `json:"nodes"`
	Edges      []Edge      `json:"edges"`
}

// ExportStats summarises the contents of an export.
type ExportStats struct {
	NodeCount   int `json:"node_count"`
	EdgeCount   int `json:"edge_count"`
	SharedCount int `json:"shared_actor_count"`
}
