package catalog

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/persistorai/actorweb/internal/metrics"
	"github.com/persistorai/actorweb/internal/models"
)

// DefaultCacheSize is the entry count of each Cached LRU.
const DefaultCacheSize = 512

// Cached fronts a Catalog with bounded LRU caches for entity lookups and
// connection queries. Concurrent misses for the same key share one load.
// Misses of GetEntity are not cached.
type Cached struct {
	next        Catalog
	entities    *lru.Cache[string, *models.Entity]
	connections *lru.Cache[string, []models.Match]
	group       singleflight.Group
}

var _ Catalog = (*Cached)(nil)

// NewCached wraps next with caches of the given size.
func NewCached(next Catalog, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	entities, err := lru.New[string, *models.Entity](size)
	if err != nil {
		return nil, fmt.Errorf("creating entity cache: %w", err)
	}

	connections, err := lru.New[string, []models.Match](size)
	if err != nil {
		return nil, fmt.Errorf("creating connection cache: %w", err)
	}

	return &Cached{next: next, entities: entities, connections: connections}, nil
}

// GetEntity implements Catalog.
func (c *Cached) GetEntity(ctx context.Context, key string) (*models.Entity, error) {
	k := NormalizeKey(key)

	if e, ok := c.entities.Get(k); ok {
		metrics.CatalogCache.WithLabelValues("hit").Inc()
		return cloneEntity(e), nil
	}

	metrics.CatalogCache.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do("entity:"+k, func() (any, error) {
		e, err := c.next.GetEntity(ctx, key)
		if err != nil {
			return nil, err
		}
		c.entities.Add(k, e)

		return e, nil
	})
	if err != nil {
		if errors.Is(err, models.ErrEntityNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("loading entity %q: %w", key, err)
	}

	e, _ := v.(*models.Entity)

	return cloneEntity(e), nil
}

// FindEntitiesSharingCast implements Catalog. Results are cached by center id.
func (c *Cached) FindEntitiesSharingCast(ctx context.Context, center *models.Entity) ([]models.Match, error) {
	if m, ok := c.connections.Get(center.ID); ok {
		metrics.CatalogCache.WithLabelValues("hit").Inc()
		return cloneMatches(m), nil
	}

	metrics.CatalogCache.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do("connections:"+center.ID, func() (any, error) {
		m, err := c.next.FindEntitiesSharingCast(ctx, center)
		if err != nil {
			return nil, err
		}
		c.connections.Add(center.ID, m)

		return m, nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading connections for %q: %w", center.ID, err)
	}

	m, _ := v.([]models.Match)

	return cloneMatches(m), nil
}

// Search implements Catalog. Searches are not cached.
func (c *Cached) Search(ctx context.Context, query string, limit int) ([]models.TitleSummary, error) {
	return c.next.Search(ctx, query, limit)
}

// Suggestions implements Suggester when the wrapped catalog does. Suggestions
// are random and never cached.
func (c *Cached) Suggestions(ctx context.Context, n int) ([]models.TitleSummary, error) {
	s, ok := c.next.(Suggester)
	if !ok {
		return []models.TitleSummary{}, nil
	}

	return s.Suggestions(ctx, n)
}

// Purge empties both caches.
func (c *Cached) Purge() {
	c.entities.Purge()
	c.connections.Purge()
}

// Len returns the number of cached entities and connection lists.
func (c *Cached) Len() (entities, connections int) {
	return c.entities.Len(), c.connections.Len()
}

func cloneEntity(e *models.Entity) *models.Entity {
	out := *e
	out.Cast = append([]models.CastMember(nil), e.Cast...)

	return &out
}

func cloneMatches(in []models.Match) []models.Match {
	out := make([]models.Match, len(in))
	for i, m := range in {
		out[i] = models.Match{
			Entity:         *cloneEntity(&m.Entity),
			SharedActorIDs: append([]string(nil), m.SharedActorIDs...),
		}
	}

	return out
}
