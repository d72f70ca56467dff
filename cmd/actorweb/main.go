// Command actorweb serves connection graph sessions over REST and WebSocket.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/actorweb/internal/api"
	"github.com/persistorai/actorweb/internal/catalog"
	"github.com/persistorai/actorweb/internal/config"
	"github.com/persistorai/actorweb/internal/db"
	"github.com/persistorai/actorweb/internal/dbpool"
	"github.com/persistorai/actorweb/internal/service"
	"github.com/persistorai/actorweb/internal/session"
	"github.com/persistorai/actorweb/internal/store"
	"github.com/persistorai/actorweb/internal/ws"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	if err := run(log); err != nil {
		log.WithError(err).Fatal("actorweb exited")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, _ := logrus.ParseLevel(cfg.LogLevel) // validated by Load
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, pool, err := openCatalog(ctx, cfg, log)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	// The hub outlives ctx so Shutdown can drain viewers.
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()

	hub := ws.NewHub(log)
	go hub.Run(hubCtx)

	graphs := service.NewGraphService(cat, log)
	sessions := session.NewManager(session.Config{
		TickInterval: cfg.TickInterval,
		MaxSessions:  cfg.MaxSessions,
		Layout:       cfg.Tuning.Layout,
		Popup:        cfg.Tuning.Popup,
		Interaction:  cfg.Tuning.Interaction,
	}, graphs, hub, log)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:           log,
		Pool:          pool,
		Hub:           hub,
		Titles:        service.NewTitleService(cat, log),
		Graphs:        graphs,
		Sessions:      sessions,
		CORSOrigins:   cfg.CORSOrigins,
		Version:       config.Version,
		CatalogSource: cfg.CatalogSource,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.WithFields(logrus.Fields{
		"addr":         cfg.Addr(),
		"metrics_addr": cfg.MetricsAddr(),
		"catalog":      cfg.CatalogSource,
		"version":      config.Version,
		"max_sessions": cfg.MaxSessions,
		"tick":         cfg.TickInterval.String(),
	}).Info("actorweb starting")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return serve(srv) })
	g.Go(func() error { return serve(metricsSrv) })
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		hub.Shutdown()
		sessions.Shutdown()

		return errors.Join(srv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("actorweb stopped")

	return nil
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listening on %s: %w", srv.Addr, err)
	}

	return nil
}

// openCatalog selects the catalog named by the config. The pool is nil
// unless the catalog is backed by PostgreSQL.
func openCatalog(ctx context.Context, cfg *config.Config, log *logrus.Logger) (catalog.Catalog, *dbpool.Pool, error) {
	switch cfg.CatalogSource {
	case config.CatalogFile:
		m, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, nil, err
		}
		log.WithFields(logrus.Fields{"file": cfg.CatalogFile, "titles": len(m.Entities())}).Info("catalog loaded")
		return m, nil, nil

	case config.CatalogPostgres:
		return openPostgresCatalog(ctx, cfg, log)

	default:
		return catalog.Demo(), nil, nil
	}
}

func openPostgresCatalog(ctx context.Context, cfg *config.Config, log *logrus.Logger) (catalog.Catalog, *dbpool.Pool, error) {
	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.DBMaxConns)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.RunMigrations(ctx, pool, log, nil); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	base := store.Base{Pool: pool, Log: log}
	cached, err := catalog.NewCached(store.NewCatalogStore(base), cfg.CatalogCacheSize)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	if err := db.NewNotifyBridge(log, pool, cached).Start(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("starting catalog notifications: %w", err)
	}

	if n, err := store.NewCatalogStore(base).Count(ctx); err == nil {
		log.WithField("titles", n).Info("catalog connected")
	}

	return cached, pool, nil
}
