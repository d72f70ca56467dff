package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/actorweb/internal/dbpool"
)

const (
	// CatalogChannel is the NOTIFY channel raised by the catalog triggers.
	CatalogChannel = "catalog_changes"

	initialBackoff    = 1 * time.Second
	maxBackoff        = 30 * time.Second
	backoffMultiplier = 2
	readDeadline      = 2 * time.Minute
)

// Invalidator drops cached catalog data.
type Invalidator interface {
	Purge()
}

// CatalogChange is the payload of a catalog_changes notification.
type CatalogChange struct {
	Table string `json:"table"`
	Op    string `json:"op"`
}

// NotifyBridge listens on the catalog_changes channel and purges the catalog
// cache whenever titles or credits are written.
type NotifyBridge struct {
	log   *logrus.Logger
	pool  *dbpool.Pool
	cache Invalidator
}

// NewNotifyBridge creates a NotifyBridge wired to the given pool and cache.
func NewNotifyBridge(log *logrus.Logger, pool *dbpool.Pool, cache Invalidator) *NotifyBridge {
	return &NotifyBridge{
		log:   log,
		pool:  pool,
		cache: cache,
	}
}

// Start verifies the database is reachable and launches the LISTEN loop in a
// background goroutine. The loop reconnects with backoff until ctx ends.
func (b *NotifyBridge) Start(ctx context.Context) error {
	if err := b.pool.Ping(ctx); err != nil {
		return fmt.Errorf("notify bridge: database not reachable: %w", err)
	}

	go b.listen(ctx)

	return nil
}

func (b *NotifyBridge) listen(ctx context.Context) {
	backoff := initialBackoff

	for {
		if ctx.Err() != nil {
			return
		}

		err := b.subscribe(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}

		b.log.WithError(err).WithField("retry_in", backoff).
			Warn("catalog notify bridge connection lost, reconnecting")

		// Anything may have changed while disconnected.
		b.cache.Purge()

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff = nextBackoff(backoff)
	}
}

func (b *NotifyBridge) subscribe(ctx context.Context) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Release()

	// LISTEN takes the channel inline, not as a parameter.
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{CatalogChannel}.Sanitize()); err != nil {
		return fmt.Errorf("executing LISTEN: %w", err)
	}

	b.log.WithField("channel", CatalogChannel).Info("catalog notify bridge listening")

	for {
		if err := conn.Conn().PgConn().Conn().SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
			return fmt.Errorf("setting read deadline: %w", err)
		}

		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}

			return fmt.Errorf("waiting for notification: %w", err)
		}

		b.handleNotification(notification)
	}
}

// handleNotification purges the cache. Malformed payloads still purge, since
// the trigger fired for some write.
func (b *NotifyBridge) handleNotification(n *pgconn.Notification) {
	var change CatalogChange
	if err := json.Unmarshal([]byte(n.Payload), &change); err != nil {
		b.log.WithError(err).WithField("payload", n.Payload).Warn("malformed catalog notification")
	}

	b.log.WithFields(logrus.Fields{
		"channel": n.Channel,
		"pid":     n.PID,
		"table":   change.Table,
		"op":      change.Op,
	}).Debug("catalog.changed")

	b.cache.Purge()
}

// nextBackoff doubles the current backoff with ±25% jitter, capped at maxBackoff.
func nextBackoff(current time.Duration) time.Duration {
	next := current * backoffMultiplier
	if next > maxBackoff {
		next = maxBackoff
	}

	jitter := float64(next) * (0.75 + rand.Float64()*0.5) //nolint:gosec // jitter doesn't need crypto rand.

	return time.Duration(jitter)
}
