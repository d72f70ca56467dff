// Package catalog provides the title and cast data source consumed by the
// graph builder: an in-memory catalog seeded with demo data, and an LRU
// cache that can front any other implementation.
package catalog

import (
	"context"
	"strings"

	"github.com/persistorai/actorweb/internal/models"
)

// Search limits.
const (
	DefaultSearchLimit = 8
	MaxSearchLimit     = 50
	MinQueryLength     = 2
	DefaultSuggestions = 3
)

// Catalog looks up titles and the titles that share cast with them.
type Catalog interface {
	// GetEntity returns the entity for a key or id, or models.ErrEntityNotFound.
	GetEntity(ctx context.Context, key string) (*models.Entity, error)
	// FindEntitiesSharingCast returns every other entity sharing at least one
	// actor with center, in catalog order.
	FindEntitiesSharingCast(ctx context.Context, center *models.Entity) ([]models.Match, error)
	// Search returns titles matching query, in catalog order.
	Search(ctx context.Context, query string, limit int) ([]models.TitleSummary, error)
}

// Suggester is implemented by catalogs that can offer starter titles.
type Suggester interface {
	// Suggestions returns up to n distinct titles picked at random.
	Suggestions(ctx context.Context, n int) ([]models.TitleSummary, error)
}

// NormalizeKey lower-cases and trims a lookup key.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// ClampLimit bounds a search limit to [1, MaxSearchLimit], using
// DefaultSearchLimit for non-positive values.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSearchLimit
	case limit > MaxSearchLimit:
		return MaxSearchLimit
	default:
		return limit
	}
}

// ClampSuggestions bounds a suggestion count to [1, MaxSearchLimit], using
// DefaultSuggestions for non-positive values.
func ClampSuggestions(n int) int {
	if n <= 0 {
		return DefaultSuggestions
	}

	return min(n, MaxSearchLimit)
}

// Matches reports whether an entity matches a normalized search term: the
// title contains it, a title word starts with it, or the key contains it.
func Matches(e *models.Entity, term string) bool {
	if term == "" {
		return false
	}

	title := strings.ToLower(e.Title)
	if strings.Contains(title, term) || strings.Contains(NormalizeKey(e.LookupKey()), term) {
		return true
	}

	for _, w := range strings.Fields(title) {
		if strings.HasPrefix(w, term) {
			return true
		}
	}

	return false
}
