package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/catalog"
	"github.com/persistorai/actorweb/internal/models"
)

// SeedResult counts what a Seed call did.
type SeedResult struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
	Invalid int `json:"invalid"`
	Credits int `json:"credits"`
}

// SeedStore loads catalog entities into the database.
type SeedStore struct {
	Base
}

// NewSeedStore creates a new SeedStore.
func NewSeedStore(base Base) *SeedStore {
	return &SeedStore{Base: base}
}

// Seed writes entities in one transaction. Existing titles are replaced
// when overwrite is set and skipped otherwise. Entities failing validation
// are counted and skipped.
func (s *SeedStore) Seed(ctx context.Context, entities []models.Entity, overwrite bool) (SeedResult, error) {
	var res SeedResult

	if len(entities) == 0 {
		return res, nil
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return res, fmt.Errorf("seeding catalog: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit.

	conflict := `DO NOTHING`
	if overwrite {
		conflict = `DO UPDATE SET lookup_key = EXCLUDED.lookup_key, title = EXCLUDED.title,
			year = EXCLUDED.year, media_type = EXCLUDED.media_type, updated_at = now()`
	}

	var credits [][]any

	for i := range entities {
		e := &entities[i]
		if err := e.Validate(); err != nil {
			s.Log.WithError(err).WithField("id", e.ID).Warn("skipping invalid catalog entry")
			res.Invalid++

			continue
		}

		mediaType := e.Type
		if mediaType == "" {
			mediaType = models.MediaMovie
		}

		tag, err := tx.Exec(ctx,
			`INSERT INTO titles (id, lookup_key, title, year, media_type)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) `+conflict,
			e.ID, catalog.NormalizeKey(e.LookupKey()), e.Title, e.Year, string(mediaType))
		if err != nil {
			return res, fmt.Errorf("writing title %q: %w", e.ID, err)
		}

		if tag.RowsAffected() == 0 {
			res.Skipped++
			continue
		}

		if _, err := tx.Exec(ctx, "DELETE FROM cast_credits WHERE title_id = $1", e.ID); err != nil {
			return res, fmt.Errorf("clearing credits of %q: %w", e.ID, err)
		}

		for order, m := range e.Cast {
			credits = append(credits, []any{e.ID, order, m.ActorID, m.ActorName, m.Character})
		}

		res.Written++
	}

	if len(credits) > 0 {
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"cast_credits"},
			[]string{"title_id", "credit_order", "actor_id", "actor_name", "character_name"},
			pgx.CopyFromRows(credits))
		if err != nil {
			return res, fmt.Errorf("copying credits: %w", err)
		}

		res.Credits = int(n)
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("committing seed: %w", err)
	}

	s.Log.WithFields(logrus.Fields{
		"written": res.Written,
		"skipped": res.Skipped,
		"invalid": res.Invalid,
		"credits": res.Credits,
	}).Info("catalog seeded")

	return res, nil
}

// Truncate removes every title and credit.
func (s *SeedStore) Truncate(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := s.Pool.Exec(ctx, "TRUNCATE cast_credits, titles RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncating catalog: %w", err)
	}

	return nil
}
