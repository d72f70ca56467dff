// Package metrics defines Prometheus metrics for actorweb.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "actorweb_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actorweb_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actorweb_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "actorweb_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "actorweb_sessions_active",
			Help: "Live layout sessions",
		},
	)

	SessionsRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "actorweb_sessions_running",
			Help: "Sessions whose simulation is currently ticking",
		},
	)

	TicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "actorweb_simulation_ticks_total",
			Help: "Total simulation ticks across all sessions",
		},
	)

	TickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "actorweb_simulation_tick_duration_seconds",
			Help:    "Duration of a single simulation tick",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), //nolint:mnd // 10µs .. ~2.6s
		},
	)

	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actorweb_interaction_events_total",
			Help: "Interaction events applied, by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	PopupsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actorweb_popups_resolved_total",
			Help: "Popup payloads resolved, by whether shared actors were found",
		},
		[]string{"empty"},
	)

	GraphNodes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "actorweb_graph_nodes",
			Help:    "Node count of built connection graphs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), //nolint:mnd // 1 .. 512 nodes
		},
	)

	CatalogCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actorweb_catalog_cache_total",
			Help: "Catalog cache lookups by result",
		},
		[]string{"result"},
	)

	ConfigWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "actorweb_config_warnings_total",
			Help: "Configuration values replaced by defaults",
		},
		[]string{"component"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		WSConnections,
		SessionsActive, SessionsRunning, TicksTotal, TickDuration,
		EventsTotal, PopupsResolved, GraphNodes,
		CatalogCache, ConfigWarnings,
	)
}
