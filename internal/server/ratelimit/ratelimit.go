// Package ratelimit provides the two-tier daily quota applied to demo slide
// generation: anonymous callers keyed by client IP, authenticated callers
// keyed by user id, each counted in a fixed 24h window.
package ratelimit

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// Tier selects which quota applies to a caller.
type Tier int

// Caller tiers.
const (
	TierAnonymous Tier = iota
	TierAuthenticated
)

// Window is the fixed quota window.
const Window = 24 * time.Hour

// Config holds limiter configuration.
type Config struct {
	AnonDaily     int
	UserDaily     int
	BypassKey     string
	SweepInterval time.Duration // memory store sweep; defaults to 1h
}

// Result reports the outcome of a quota check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Store counts requests per key in a fixed window.
type Store interface {
	// Incr increments the counter for key, starting a fresh window when the
	// previous one has expired. It returns the post-increment count and the
	// time the current window resets.
	Incr(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
}

// Limiter applies tiered quotas on top of a Store.
type Limiter struct {
	store  Store
	config Config
	stop   func()
}

// New creates a limiter over the given store. For a *MemoryStore the
// periodic sweep is started here and stopped by Stop.
func New(store Store, config Config) *Limiter {
	if config.SweepInterval <= 0 {
		config.SweepInterval = time.Hour
	}

	l := &Limiter{store: store, config: config}
	if ms, ok := store.(*MemoryStore); ok {
		l.stop = ms.startSweep(config.SweepInterval)
	}
	return l
}

// Allow checks and consumes one unit of quota for key at the given tier.
// A store failure is returned to the caller, who decides whether to fail
// open.
func (l *Limiter) Allow(ctx context.Context, key string, tier Tier) (Result, error) {
	limit := l.config.AnonDaily
	if tier == TierAuthenticated {
		limit = l.config.UserDaily
	}
	if limit <= 0 {
		return Result{Allowed: true}, nil
	}

	count, resetAt, err := l.store.Incr(ctx, prefixed(tier, key), Window)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(limit-count, 0),
	}
	if !res.Allowed {
		res.RetryAfter = max(time.Until(resetAt), 0)
	}
	return res, nil
}

// Bypass reports whether the request carries a valid bypass secret.
func (l *Limiter) Bypass(r *http.Request) bool {
	if l.config.BypassKey == "" {
		return false
	}
	provided := r.Header.Get("X-RateLimit-Bypass")
	return subtle.ConstantTimeCompare([]byte(provided), []byte(l.config.BypassKey)) == 1
}

// Stop terminates the background sweep, if any.
func (l *Limiter) Stop() {
	if l.stop != nil {
		l.stop()
	}
}

func prefixed(tier Tier, key string) string {
	if tier == TierAuthenticated {
		return "user:" + key
	}
	return "ip:" + key
}

// ClientIP extracts the caller identity for anonymous rate limiting: the
// first X-Forwarded-For entry, else X-Real-IP, else "unknown".
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			xff = xff[:idx]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return "unknown"
}
