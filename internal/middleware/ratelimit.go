// Package middleware provides gin middleware for the actor web API.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxBuckets is the maximum number of tracked clients.
const maxBuckets = 100_000

// bucketMaxAge is how long an idle bucket is kept.
const bucketMaxAge = 10 * time.Minute

// ErrCodeRateLimited is the error code of rejected requests.
const ErrCodeRateLimited = "rate_limited"

// RateLimiter is a token bucket rate limiter keyed by client IP.
type RateLimiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex
	rate    float64
	burst   float64
	now     func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter allowing ratePerSec requests per
// second with the given burst. Stale buckets are evicted until ctx ends.
func NewRateLimiter(ctx context.Context, ratePerSec float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    ratePerSec,
		burst:   float64(burst),
		now:     time.Now,
	}
	go rl.startCleanup(ctx)

	return rl
}

func (rl *RateLimiter) startCleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if now.Sub(b.lastSeen) > bucketMaxAge {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Allow takes one token for key. ok is false when the bucket is empty;
// full is true when a new key could not be tracked.
func (rl *RateLimiter) Allow(key string) (ok, full bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	b, exists := rl.buckets[key]
	if !exists {
		if len(rl.buckets) >= maxBuckets {
			return false, true
		}

		b = &bucket{tokens: rl.burst, lastSeen: now}
		rl.buckets[key] = b
	}

	b.tokens = min(rl.burst, b.tokens+now.Sub(b.lastSeen).Seconds()*rl.rate)
	b.lastSeen = now

	if b.tokens < 1 {
		return false, false
	}

	b.tokens--

	return true, false
}

// Handler returns gin middleware that applies rate limiting per client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// ClientIP ignores X-Forwarded-For because the router trusts no proxies.
		ok, full := rl.Allow(c.ClientIP())

		switch {
		case full:
			respondError(c, http.StatusTooManyRequests, ErrCodeRateLimited, "too many clients")
		case !ok:
			c.Header("Retry-After", "1")
			respondError(c, http.StatusTooManyRequests, ErrCodeRateLimited, "rate limit exceeded")
		default:
			c.Next()
		}
	}
}
