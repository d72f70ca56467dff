package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/actorweb/internal/catalog"
	"github.com/persistorai/actorweb/internal/graph"
	"github.com/persistorai/actorweb/internal/models"
)

// CatalogStore serves the catalog from the titles and cast_credits tables.
type CatalogStore struct {
	Base
}

var (
	_ catalog.Catalog   = (*CatalogStore)(nil)
	_ catalog.Suggester = (*CatalogStore)(nil)
)

// NewCatalogStore creates a new CatalogStore.
func NewCatalogStore(base Base) *CatalogStore {
	return &CatalogStore{Base: base}
}

// GetEntity implements catalog.Catalog. key matches the lookup key
// case-insensitively, or the id exactly.
func (s *CatalogStore) GetEntity(ctx context.Context, key string) (*models.Entity, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	row := s.Pool.QueryRow(ctx,
		`SELECT `+titleColumns+`
		FROM titles t
		WHERE t.lookup_key = $1 OR t.id = $2
		ORDER BY (t.lookup_key = $1) DESC
		LIMIT 1`, catalog.NormalizeKey(key), key)

	e, err := scanTitle(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrEntityNotFound
		}

		return nil, fmt.Errorf("getting title %q: %w", key, err)
	}

	entities := []models.Entity{*e}
	if err := loadCast(ctx, s.Pool, entities); err != nil {
		return nil, err
	}

	return &entities[0], nil
}

// FindEntitiesSharingCast implements catalog.Catalog. Results follow
// insertion order.
func (s *CatalogStore) FindEntitiesSharingCast(ctx context.Context, center *models.Entity) ([]models.Match, error) {
	actorIDs := make([]string, 0, len(center.Cast))
	for id := range center.ActorIDs() {
		actorIDs = append(actorIDs, id)
	}

	if len(actorIDs) == 0 {
		return []models.Match{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT `+titleColumns+`
		FROM titles t
		WHERE t.id <> $1
			AND EXISTS (
				SELECT 1 FROM cast_credits c
				WHERE c.title_id = t.id AND c.actor_id = ANY($2)
			)
		ORDER BY t.ordinal`, center.ID, actorIDs)
	if err != nil {
		return nil, fmt.Errorf("querying shared cast for %q: %w", center.ID, err)
	}

	entities, err := collectTitles(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if err := loadCast(ctx, s.Pool, entities); err != nil {
		return nil, err
	}

	matches := make([]models.Match, 0, len(entities))
	for i := range entities {
		shared := graph.SharedActorIDs(center, &entities[i])
		if len(shared) == 0 {
			continue
		}

		matches = append(matches, models.Match{Entity: entities[i], SharedActorIDs: shared})
	}

	return matches, nil
}

// Search implements catalog.Catalog with the same matching rules as the
// in-memory catalog.
func (s *CatalogStore) Search(ctx context.Context, query string, limit int) ([]models.TitleSummary, error) {
	term := catalog.NormalizeKey(query)
	if term == "" {
		return []models.TitleSummary{}, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT `+titleColumns+`
		FROM titles t
		WHERE strpos(lower(t.title), $1) > 0
			OR strpos(t.lookup_key, $1) > 0
		ORDER BY t.ordinal
		LIMIT $2`, term, catalog.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching titles: %w", err)
	}
	defer rows.Close()

	entities, err := collectTitles(rows)
	if err != nil {
		return nil, err
	}

	out := make([]models.TitleSummary, len(entities))
	for i := range entities {
		out[i] = entities[i].Summary()
	}

	return out, nil
}

// Suggestions implements catalog.Suggester.
func (s *CatalogStore) Suggestions(ctx context.Context, n int) ([]models.TitleSummary, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		`SELECT `+titleColumns+`
		FROM titles t
		ORDER BY random()
		LIMIT $1`, catalog.ClampSuggestions(n))
	if err != nil {
		return nil, fmt.Errorf("picking suggestions: %w", err)
	}
	defer rows.Close()

	entities, err := collectTitles(rows)
	if err != nil {
		return nil, err
	}

	out := make([]models.TitleSummary, len(entities))
	for i := range entities {
		out[i] = entities[i].Summary()
	}

	return out, nil
}

// Count returns the number of stored titles.
func (s *CatalogStore) Count(ctx context.Context) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var n int
	if err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM titles").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting titles: %w", err)
	}

	return n, nil
}
