// Package service provides business logic between API handlers and the catalog.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/catalog"
	"github.com/persistorai/actorweb/internal/graph"
	"github.com/persistorai/actorweb/internal/metrics"
	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/session"
)

// GraphService builds connection graphs from a catalog.
type GraphService struct {
	catalog catalog.Catalog
	log     *logrus.Logger
}

var _ session.GraphBuilder = (*GraphService)(nil)

// NewGraphService creates a GraphService.
func NewGraphService(c catalog.Catalog, log *logrus.Logger) *GraphService {
	return &GraphService{catalog: c, log: log}
}

// BuildGraph resolves key to a center entity and builds the graph of every
// catalog entity sharing cast with it. Invalid catalog entries are skipped
// and logged.
func (s *GraphService) BuildGraph(ctx context.Context, key string) (*models.GraphModel, error) {
	if strings.TrimSpace(key) == "" {
		return nil, models.ErrMissingKey
	}

	center, err := s.catalog.GetEntity(ctx, key)
	if err != nil {
		if errors.Is(err, models.ErrEntityNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("getting center %q: %w", key, err)
	}

	if err := center.Validate(); err != nil {
		return nil, fmt.Errorf("center %q: %w", key, err)
	}

	matches, err := s.catalog.FindEntitiesSharingCast(ctx, center)
	if err != nil {
		return nil, fmt.Errorf("finding connections of %q: %w", key, err)
	}

	g, skipped := graph.BuildFromMatches(*center, matches)
	for _, sk := range skipped {
		s.log.WithFields(logrus.Fields{
			"center": center.ID,
			"entity": sk.ID,
			"reason": sk.Reason,
		}).Warn("graph.skipped_entity")
	}

	metrics.GraphNodes.Observe(float64(len(g.Nodes)))

	s.log.WithFields(logrus.Fields{
		"center": center.ID,
		"nodes":  len(g.Nodes),
		"edges":  len(g.Edges),
	}).Debug("graph.build")

	return g, nil
}

// Connections returns the titles sharing cast with key, without laying out a graph.
func (s *GraphService) Connections(ctx context.Context, key string) (*models.Entity, []models.Match, error) {
	center, err := s.catalog.GetEntity(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	matches, err := s.catalog.FindEntitiesSharingCast(ctx, center)
	if err != nil {
		return nil, nil, fmt.Errorf("finding connections of %q: %w", key, err)
	}

	if matches == nil {
		matches = []models.Match{}
	}

	s.log.WithFields(logrus.Fields{
		"center":  center.ID,
		"matches": len(matches),
	}).Debug("graph.connections")

	return center, matches, nil
}
