package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/persistorai/actorweb/internal/graph"
	"github.com/persistorai/actorweb/internal/models"
)

//go:embed demo.json
var demoFS embed.FS

// Memory is a read-only catalog held in memory. It is safe for concurrent use.
type Memory struct {
	entities []models.Entity
	byKey    map[string]int
}

var (
	_ Catalog   = (*Memory)(nil)
	_ Suggester = (*Memory)(nil)
)

// NewMemory indexes entities by key and id. Later duplicates of a key are ignored.
func NewMemory(entities []models.Entity) *Memory {
	m := &Memory{
		entities: make([]models.Entity, 0, len(entities)),
		byKey:    make(map[string]int, len(entities)*2),
	}

	for _, e := range entities {
		key := NormalizeKey(e.LookupKey())
		if _, dup := m.byKey[key]; dup {
			continue
		}

		e.Key = key
		i := len(m.entities)
		m.entities = append(m.entities, e)
		m.byKey[key] = i

		if _, taken := m.byKey[e.ID]; !taken {
			m.byKey[e.ID] = i
		}
	}

	return m
}

// Demo returns the built-in demo catalog.
func Demo() *Memory {
	f, err := demoFS.Open("demo.json")
	if err != nil {
		panic(fmt.Sprintf("opening embedded demo data: %v", err))
	}
	defer f.Close()

	entities, err := Decode(f)
	if err != nil {
		panic(fmt.Sprintf("decoding embedded demo data: %v", err))
	}

	return NewMemory(entities)
}

// Decode reads a JSON array of entities.
func Decode(r io.Reader) ([]models.Entity, error) {
	var entities []models.Entity
	if err := json.NewDecoder(r).Decode(&entities); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	return entities, nil
}

// LoadFile reads a JSON catalog file into a Memory catalog.
func LoadFile(path string) (*Memory, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator config.
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	entities, err := Decode(f)
	if err != nil {
		return nil, err
	}

	return NewMemory(entities), nil
}

// Entities returns a copy of every entity in catalog order.
func (m *Memory) Entities() []models.Entity {
	out := make([]models.Entity, len(m.entities))
	copy(out, m.entities)

	return out
}

// GetEntity implements Catalog.
func (m *Memory) GetEntity(_ context.Context, key string) (*models.Entity, error) {
	i, ok := m.byKey[NormalizeKey(key)]
	if !ok {
		if i, ok = m.byKey[key]; !ok {
			return nil, models.ErrEntityNotFound
		}
	}

	e := m.entities[i]

	return &e, nil
}

// FindEntitiesSharingCast implements Catalog.
func (m *Memory) FindEntitiesSharingCast(_ context.Context, center *models.Entity) ([]models.Match, error) {
	return graph.Connections(center, m.entities), nil
}

// Search implements Catalog.
func (m *Memory) Search(_ context.Context, query string, limit int) ([]models.TitleSummary, error) {
	term := NormalizeKey(query)
	limit = ClampLimit(limit)

	out := []models.TitleSummary{}

	for i := range m.entities {
		if len(out) >= limit {
			break
		}

		if Matches(&m.entities[i], term) {
			out = append(out, m.entities[i].Summary())
		}
	}

	return out, nil
}

// Suggestions implements Suggester.
func (m *Memory) Suggestions(_ context.Context, n int) ([]models.TitleSummary, error) {
	n = min(ClampSuggestions(n), len(m.entities))

	out := make([]models.TitleSummary, 0, n)
	for _, i := range rand.Perm(len(m.entities))[:n] {
		out = append(out, m.entities[i].Summary())
	}

	return out, nil
}
