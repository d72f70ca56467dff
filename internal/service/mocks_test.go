package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/models"
)

// mockCatalog records calls and returns configured responses.
type mockCatalog struct {
	mu    sync.Mutex
	calls []string

	getEntity func(ctx context.Context, key string) (*models.Entity, error)
	find      func(ctx context.Context, center *models.Entity) ([]models.Match, error)
	search    func(ctx context.Context, query string, limit int) ([]models.TitleSummary, error)
}

func (m *mockCatalog) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockCatalog) GetEntity(ctx context.Context, key string) (*models.Entity, error) {
	m.record("GetEntity")
	return m.getEntity(ctx, key)
}

func (m *mockCatalog) FindEntitiesSharingCast(ctx context.Context, center *models.Entity) ([]models.Match, error) {
	m.record("FindEntitiesSharingCast")
	return m.find(ctx, center)
}

func (m *mockCatalog) Search(ctx context.Context, query string, limit int) ([]models.TitleSummary, error) {
	m.record("Search")
	return m.search(ctx, query, limit)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	return log
}
