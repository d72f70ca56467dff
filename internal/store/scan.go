package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/actorweb/internal/models"
)

// titleColumns lists the columns selected for title queries.
const titleColumns = `t.id, t.lookup_key, t.title, t.year, t.media_type`

// scanTitle scans a single row into a models.Entity without cast.
func scanTitle(scan func(dest ...any) error) (*models.Entity, error) {
	var e models.Entity
	var mediaType string

	if err := scan(&e.ID, &e.Key, &e.Title, &e.Year, &mediaType); err != nil {
		return nil, err
	}

	e.Type = models.MediaType(mediaType)

	return &e, nil
}

// collectTitles scans all rows into entities, preserving row order.
func collectTitles(rows pgx.Rows) ([]models.Entity, error) {
	var out []models.Entity

	for rows.Next() {
		e, err := scanTitle(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}

		out = append(out, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating titles: %w", err)
	}

	return out, nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// loadCast attaches credits, in credit order, to each entity.
// Entities without credits get an empty, non-nil cast.
func loadCast(ctx context.Context, q querier, entities []models.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	ids := make([]string, len(entities))
	index := make(map[string]int, len(entities))

	for i := range entities {
		ids[i] = entities[i].ID
		index[entities[i].ID] = i
		entities[i].Cast = []models.CastMember{}
	}

	rows, err := q.Query(ctx,
		`SELECT title_id, actor_id, actor_name, character_name
		FROM cast_credits
		WHERE title_id = ANY($1)
		ORDER BY title_id, credit_order`, ids)
	if err != nil {
		return fmt.Errorf("querying cast: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var titleID string
		var m models.CastMember

		if err := rows.Scan(&titleID, &m.ActorID, &m.ActorName, &m.Character); err != nil {
			return fmt.Errorf("scanning cast credit: %w", err)
		}

		if i, ok := index[titleID]; ok {
			entities[i].Cast = append(entities[i].Cast, m)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating cast: %w", err)
	}

	return nil
}
