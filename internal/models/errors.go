package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for entity validation.
var (
	ErrMissingID   = errors.New("id is required")
	ErrMissingCast = errors.New("cast is required")
	ErrMissingKey  = errors.New("key is required")
)

// Sentinel errors for graph invariants.
var (
	ErrDuplicateNode = errors.New("duplicate node id")
	ErrCenterCount   = errors.New("graph must have exactly one center node")
	ErrSelfEdge      = errors.New("self edge")
	ErrEdgeWeight    = errors.New("edge weight must equal shared actor count and be at least 1")
)

// Sentinel errors for lookups.
var (
	ErrEntityNotFound  = errors.New("entity not found")
	ErrNodeNotFound    = errors.New("node not found")
	ErrSessionNotFound = errors.New("session not found")
)

// ErrInvalidEvent indicates a malformed interaction event.
var ErrInvalidEvent = errors.New("invalid event")

// ErrSessionLimit indicates the server is already running its maximum number of sessions.
var ErrSessionLimit = errors.New("session limit reached")

// ErrTooLong indicates an input value exceeds its maximum length.
var ErrTooLong = errors.New("value too long")

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%w: %s exceeds maximum length of %d", ErrTooLong, field, maxLen)
}
