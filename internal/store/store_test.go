package store_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/catalog"
	"github.com/persistorai/actorweb/internal/db"
	"github.com/persistorai/actorweb/internal/dbpool"
	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/store"
)

// testEnv holds shared test infrastructure (single pool across all tests).
type testEnv struct {
	pool *dbpool.Pool
	log  *logrus.Logger
}

var sharedEnv *testEnv

func getTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if sharedEnv != nil {
		return sharedEnv
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()

	pool, err := dbpool.NewPool(ctx, dbURL, 4)
	if err != nil {
		t.Fatalf("connecting to test DB: %v", err)
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	if err := db.RunMigrations(ctx, pool, log, nil); err != nil {
		t.Fatalf("migrating test DB: %v", err)
	}

	sharedEnv = &testEnv{pool: pool, log: log}

	return sharedEnv
}

// seededBase truncates the catalog, seeds the demo titles, and truncates
// again after the test.
func seededBase(t *testing.T) store.Base {
	t.Helper()

	env := getTestEnv(t)
	base := store.Base{Pool: env.pool, Log: env.log}
	seeder := store.NewSeedStore(base)
	ctx := context.Background()

	if err := seeder.Truncate(ctx); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		seeder.Truncate(context.Background()) //nolint:errcheck // best-effort cleanup
	})

	res, err := seeder.Seed(ctx, catalog.Demo().Entities(), false)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if res.Written != 10 {
		t.Fatalf("seeded %d titles, want 10", res.Written)
	}

	return base
}

func TestCatalogStore_MatchesMemory(t *testing.T) {
	base := seededBase(t)
	ctx := context.Background()
	pg := store.NewCatalogStore(base)
	mem := catalog.Demo()

	for _, key := range []string{"breaking bad", "the dark knight", "inception", "peaky blinders"} {
		t.Run(key, func(t *testing.T) {
			want, err := mem.GetEntity(ctx, key)
			if err != nil {
				t.Fatal(err)
			}

			got, err := pg.GetEntity(ctx, key)
			if err != nil {
				t.Fatalf("GetEntity: %v", err)
			}

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("entity mismatch (-mem +pg):\n%s", diff)
			}

			wantMatches, _ := mem.FindEntitiesSharingCast(ctx, want)

			gotMatches, err := pg.FindEntitiesSharingCast(ctx, got)
			if err != nil {
				t.Fatalf("FindEntitiesSharingCast: %v", err)
			}

			if diff := cmp.Diff(wantMatches, gotMatches, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("matches mismatch (-mem +pg):\n%s", diff)
			}
		})
	}
}

func TestCatalogStore_NotFound(t *testing.T) {
	pg := store.NewCatalogStore(seededBase(t))

	if _, err := pg.GetEntity(context.Background(), "missing title"); !errors.Is(err, models.ErrEntityNotFound) {
		t.Errorf("err = %v, want ErrEntityNotFound", err)
	}
}

func TestCatalogStore_Search(t *testing.T) {
	pg := store.NewCatalogStore(seededBase(t))
	ctx := context.Background()

	hits, err := pg.Search(ctx, "Dark", 5)
	if err != nil {
		t.Fatal(err)
	}

	if len(hits) != 1 || hits[0].Title != "The Dark Knight" {
		t.Errorf("Search(Dark) = %+v", hits)
	}

	n, err := pg.Count(ctx)
	if err != nil || n != 10 {
		t.Errorf("Count = %d, %v", n, err)
	}
}

func TestCatalogStore_Suggestions(t *testing.T) {
	pg := store.NewCatalogStore(seededBase(t))

	hits, err := pg.Suggestions(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}

	if len(hits) != 4 {
		t.Fatalf("Suggestions(4) returned %d titles", len(hits))
	}

	seen := map[string]bool{}
	for _, h := range hits {
		if seen[h.ID] {
			t.Errorf("repeated suggestion %s", h.ID)
		}
		seen[h.ID] = true
	}
}

func TestSeedStore_Overwrite(t *testing.T) {
	base := seededBase(t)
	ctx := context.Background()
	seeder := store.NewSeedStore(base)

	entities := catalog.Demo().Entities()[:1]
	entities[0].Title = "Renamed"

	res, err := seeder.Seed(ctx, entities, false)
	if err != nil || res.Skipped != 1 {
		t.Fatalf("Seed without overwrite = %+v, %v", res, err)
	}

	res, err = seeder.Seed(ctx, append(entities, models.Entity{ID: ""}), true)
	if err != nil {
		t.Fatal(err)
	}

	if res.Written != 1 || res.Invalid != 1 {
		t.Errorf("Seed with overwrite = %+v", res)
	}

	got, err := store.NewCatalogStore(base).GetEntity(ctx, entities[0].ID)
	if err != nil || got.Title != "Renamed" {
		t.Errorf("GetEntity after overwrite = %v, %v", got, err)
	}
}
