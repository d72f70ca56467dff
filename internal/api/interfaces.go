package api

import (
	"context"

	"github.com/persistorai/actorweb/internal/models"
	"github.com/persistorai/actorweb/internal/session"
)

// TitleService defines title lookups used by TitleHandler.
type TitleService interface {
	Get(ctx context.Context, key string) (*models.Entity, error)
	Search(ctx context.Context, query string, limit int) ([]models.TitleSummary, error)
	Suggestions(ctx context.Context, n int) ([]models.TitleSummary, error)
}

// GraphService builds connection graphs without starting a session.
type GraphService interface {
	BuildGraph(ctx context.Context, key string) (*models.GraphModel, error)
}

// SessionManager defines session lifecycle operations used by SessionHandler.
type SessionManager interface {
	Create(ctx context.Context, req session.CreateRequest) (*session.Session, error)
	Get(id string) (*session.Session, error)
	Delete(id string) error
	List() []session.Summary
	Len() int
}

// Broadcaster sends interaction results to a session's WebSocket viewers.
type Broadcaster interface {
	BroadcastEvent(eventType, sessionID string, data any)
}
