// Package api provides the HTTP and WebSocket surface of the actor web server.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/db"
	"github.com/persistorai/actorweb/internal/dbpool"
)

// Counter reports a live count, such as sessions or WebSocket clients.
type Counter func() int

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	pool      *dbpool.Pool
	sessions  Counter
	clients   Counter
	log       *logrus.Logger
	version   string
	catalog   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler. pool is nil unless the catalog
// is served from PostgreSQL; nil counters report zero.
func NewHealthHandler(pool *dbpool.Pool, sessions, clients Counter, log *logrus.Logger, version, catalogSource string) *HealthHandler {
	return &HealthHandler{
		pool:      pool,
		sessions:  sessions,
		clients:   clients,
		log:       log,
		version:   version,
		catalog:   catalogSource,
		startTime: time.Now(),
	}
}

type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Catalog       string  `json:"catalog"`
	Database      string  `json:"database"`
	Sessions      int     `json:"sessions"`
	Viewers       int     `json:"viewers"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Pool   *dbpool.Stats     `json:"pool,omitempty"`
}

func count(c Counter) int {
	if c == nil {
		return 0
	}

	return c()
}

// Liveness handles GET /api/v1/health.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Catalog:       h.catalog,
		Database:      "not_configured",
		Sessions:      count(h.sessions),
		Viewers:       count(h.clients),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.pool != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp.Database = "connected"
		if err := h.pool.Ping(ctx); err != nil {
			resp.Database = "disconnected"
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready. Without a database the server is
// always ready.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{"catalog": h.catalog}

	if h.pool == nil {
		c.JSON(http.StatusOK, readinessResponse{Status: "ready", Checks: checks})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks["database"], checks["schema"] = "ok", "ok"

	if err := h.pool.Ping(ctx); err != nil {
		h.log.WithError(err).Error("readiness: database ping failed")
		checks["database"], checks["schema"] = "error", "unknown"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else if err := h.checkSchema(ctx); err != nil {
		h.log.WithError(err).Error("readiness: schema check failed")
		checks["schema"] = "error"
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	stats := h.pool.Stats()
	c.JSON(code, readinessResponse{Status: status, Checks: checks, Pool: &stats})
}

// checkSchema verifies the catalog tables exist at the expected migration.
func (h *HealthHandler) checkSchema(ctx context.Context) error {
	var version int
	if err := h.pool.QueryRow(ctx, "SELECT COALESCE(MAX(version_id), 0) FROM goose_db_version WHERE is_applied").Scan(&version); err != nil {
		return fmt.Errorf("schema check: %w", err)
	}

	if want := db.SchemaVersion(); version < want {
		return fmt.Errorf("schema at version %d, want %d", version, want)
	}

	return nil
}
