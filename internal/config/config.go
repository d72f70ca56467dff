// Package config provides environment-driven configuration for the actor web
// server, plus an optional YAML tuning file for layout and interaction knobs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Catalog sources.
const (
	CatalogDemo     = "demo"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

// Config holds all application configuration values.
type Config struct {
	Port        string
	MetricsPort string
	ListenHost  string
	CORSOrigins []string
	LogLevel    string

	CatalogSource    string
	CatalogFile      string
	CatalogCacheSize int
	DatabaseURL      Secret
	DBMaxConns       int32
	AutoMigrate      bool

	TickInterval time.Duration
	MaxSessions  int

	// LayoutConfig is the path of an optional YAML tuning file.
	LayoutConfig string
	Tuning       Tuning
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          envOrDefault("PORT", "3040"),
		MetricsPort:   envOrDefault("METRICS_PORT", "9092"),
		ListenHost:    envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		CatalogSource: envOrDefault("CATALOG_SOURCE", CatalogDemo),
		CatalogFile:   envOrDefault("CATALOG_FILE", ""),
		DatabaseURL:   Secret(envOrDefault("DATABASE_URL", "")),
		AutoMigrate:   envOrDefault("AUTO_MIGRATE", "true") == "true",
		LayoutConfig:  envOrDefault("LAYOUT_CONFIG", ""),
	}

	var err error

	if cfg.CatalogCacheSize, err = envInt("CATALOG_CACHE_SIZE", 512, 0, 1_000_000); err != nil {
		return nil, err
	}

	if cfg.MaxSessions, err = envInt("MAX_SESSIONS", 100, 1, 10_000); err != nil {
		return nil, err
	}

	maxConns, err := envInt("DB_MAX_CONNS", 11, 2, 100)
	if err != nil {
		return nil, err
	}
	cfg.DBMaxConns = int32(maxConns) //nolint:gosec // bounded above.

	tick, err := time.ParseDuration(envOrDefault("TICK_INTERVAL", "16ms"))
	if err != nil {
		return nil, fmt.Errorf("TICK_INTERVAL must be a duration: %w", err)
	}
	cfg.TickInterval = tick

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3000")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	cfg.Tuning = DefaultTuning()
	if cfg.LayoutConfig != "" {
		t, err := LoadTuning(cfg.LayoutConfig)
		if err != nil {
			return nil, err
		}
		cfg.Tuning = t
	}

	return cfg, nil
}

// Addr returns the API listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback, low, high int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < low || n > high {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, low, high)
	}

	return n, nil
}
