package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/catalog"
	"github.com/persistorai/actorweb/internal/models"
)

// maxQueryLength caps search input.
const maxQueryLength = 200

// TitleService serves title lookups and search.
type TitleService struct {
	catalog catalog.Catalog
	log     *logrus.Logger
}

// NewTitleService creates a TitleService.
func NewTitleService(c catalog.Catalog, log *logrus.Logger) *TitleService {
	return &TitleService{catalog: c, log: log}
}

// Get returns the entity for key.
func (s *TitleService) Get(ctx context.Context, key string) (*models.Entity, error) {
	s.log.WithField("key", key).Debug("title.get")

	return s.catalog.GetEntity(ctx, key)
}

// Search returns up to limit titles matching query. Queries shorter than
// catalog.MinQueryLength return no hits.
func (s *TitleService) Search(ctx context.Context, query string, limit int) ([]models.TitleSummary, error) {
	term := catalog.NormalizeKey(query)

	if utf8.RuneCountInString(term) > maxQueryLength {
		return nil, models.ErrFieldTooLong("q", maxQueryLength)
	}

	if utf8.RuneCountInString(term) < catalog.MinQueryLength {
		return []models.TitleSummary{}, nil
	}

	s.log.WithFields(logrus.Fields{
		"query": term,
		"limit": limit,
	}).Debug("title.search")

	hits, err := s.catalog.Search(ctx, term, catalog.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("searching titles: %w", err)
	}

	if hits == nil {
		hits = []models.TitleSummary{}
	}

	return hits, nil
}

// Suggestions returns up to n random starter titles, or none when the
// catalog cannot suggest.
func (s *TitleService) Suggestions(ctx context.Context, n int) ([]models.TitleSummary, error) {
	sg, ok := s.catalog.(catalog.Suggester)
	if !ok {
		return []models.TitleSummary{}, nil
	}

	s.log.WithField("n", n).Debug("title.suggestions")

	hits, err := sg.Suggestions(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("suggesting titles: %w", err)
	}

	if hits == nil {
		hits = []models.TitleSummary{}
	}

	return hits, nil
}
