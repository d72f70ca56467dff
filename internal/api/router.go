package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/dbpool"
	"github.com/persistorai/actorweb/internal/middleware"
	"github.com/persistorai/actorweb/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log           *logrus.Logger
	Pool          *dbpool.Pool // nil unless the catalog lives in PostgreSQL
	Hub           *ws.Hub
	Titles        TitleService
	Graphs        GraphService
	Sessions      SessionManager
	CORSOrigins   []string
	Version       string
	CatalogSource string
	// ServeMetrics mounts /metrics on the API router. The server binary
	// serves metrics on a separate listener instead.
	ServeMetrics bool
}

// Router-level limits.
const (
	maxBodySize = 1 << 20 // 1 MB
	rateLimit   = 100     // requests per second per IP
	rateBurst   = 200     // token bucket burst size
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	if deps.ServeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	var clients Counter
	if deps.Hub != nil {
		clients = deps.Hub.ClientCount
	}

	health := NewHealthHandler(deps.Pool, deps.Sessions.Len, clients, log, deps.Version, deps.CatalogSource)
	titles := NewTitleHandler(deps.Titles, deps.Graphs, log)

	var results Broadcaster
	if deps.Hub != nil {
		results = deps.Hub
	}
	sessions := NewSessionHandler(deps.Sessions, results, log)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Titles.
	api.GET("/titles/search", titles.Search)
	api.GET("/titles/suggestions", titles.Suggestions)
	api.GET("/titles/:key", titles.Get)
	api.GET("/titles/:key/connections", titles.Connections)

	// Sessions.
	api.GET("/sessions", sessions.List)
	api.POST("/sessions", sessions.Create)
	api.GET("/sessions/:id", sessions.Get)
	api.DELETE("/sessions/:id", sessions.Delete)
	api.POST("/sessions/:id/events", sessions.Event)
	api.GET("/sessions/:id/export", sessions.Export)

	// WebSocket frame stream.
	if deps.Hub != nil {
		api.GET("/sessions/:id/ws", wsHandler(ctx, log, deps.Hub, deps.Sessions, deps.CORSOrigins))
	}
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
