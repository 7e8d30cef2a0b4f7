package ratelimit

import (
	"context"
	"time"
)

// Package ratelimit implements a fixed-window request counter keyed by a
// caller identifier (normally the client IP). The counter store is an
// explicit interface so the in-process map can be swapped for a shared
// backend in multi-instance deployments without touching call sites.

// SharedBucketKey is the conservative bucket used when the caller identity
// cannot be resolved. Unidentifiable callers share one window instead of
// bypassing the limiter.
const SharedBucketKey = "shared"

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store is a window counter keyed by identifier. Take atomically starts or
// increments the caller's window and returns the resulting decision.
// Implementations must not lose concurrent increments.
type Store interface {
	Take(ctx context.Context, identifier string, limit int, window time.Duration, now time.Time) (Decision, error)
}

// Limiter applies a fixed (limit, window) policy over a Store.
type Limiter struct {
	store    Store
	fallback *MemoryStore
	limit    int
	window   time.Duration
	now      func() time.Time
}

// New builds a Limiter over the given store. limit is the number of allowed
// requests per window.
func New(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{
		store:    store,
		fallback: NewMemoryStore(),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Limit returns the configured per-window request budget.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window size.
func (l *Limiter) Window() time.Duration { return l.window }

// Check decides whether the identified caller may proceed. It never fails:
// an empty identifier is counted against the shared bucket, and a store
// failure degrades to an in-process counter rather than waving the request
// through.
func (l *Limiter) Check(ctx context.Context, identifier string) Decision {
	if identifier == "" {
		identifier = SharedBucketKey
	}
	now := l.now()

	dec, err := l.store.Take(ctx, identifier, l.limit, l.window, now)
	if err != nil {
		dec, _ = l.fallback.Take(ctx, identifier, l.limit, l.window, now)
	}
	return dec
}

// decide converts a window's state into a Decision. Remaining floors at 0.
func decide(windowStart time.Time, count, limit int, window time.Duration) Decision {
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(window),
	}
}
