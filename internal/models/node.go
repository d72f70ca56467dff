// Package models defines data types for the connection graph.
package models

import "math"

// Vec is a 2D vector in viewport coordinates.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v * k.
func (v Vec) Scale(k float64) Vec { return Vec{X: v.X * k, Y: v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Finite reports whether both components are finite numbers.
func (v Vec) Finite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// Node is a vertex of the connection graph: one title.
type Node struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	MediaType MediaType `json:"type"`
	IsCenter  bool      `json:"is_center"`
	// Weight is the number of actors shared with the center; zero for the center.
	Weight   int  `json:"weight"`
	Position Vec  `json:"position"`
	Velocity Vec  `json:"velocity"`
	Pin      *Vec `json:"pin,omitempty"`
}

// NodeState is the per-tick physical state of a node as seen by a renderer.
type NodeState struct {
	ID       string  `json:"id"`
	Position Vec     `json:"position"`
	Velocity Vec     `json:"velocity"`
	Radius   float64 `json:"radius"`
	IsCenter bool    `json:"is_center"`
	Pinned   bool    `json:"pinned"`
}
