package ratelimit

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLStore keeps window counters in a shared SQL table so that multiple
// gateway instances enforce one budget per caller. The single UPSERT below
// is the atomic start-or-increment; concurrent requests serialize on the
// row, so no increments are lost.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps an open database handle. The rate_limit_windows table
// is created by database/migration.EnsureMigrated.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const takeQuery = `INSERT INTO rate_limit_windows (identifier, window_start, count)
VALUES ($1, $2, 1)
ON CONFLICT (identifier) DO UPDATE SET
  count = CASE WHEN rate_limit_windows.window_start <= $3 THEN 1 ELSE rate_limit_windows.count + 1 END,
  window_start = CASE WHEN rate_limit_windows.window_start <= $3 THEN $2 ELSE rate_limit_windows.window_start END
RETURNING window_start, count`

// Take starts or increments the caller's window in one round trip.
// $3 is the expiry horizon: a window that started at or before now-window
// is replaced rather than incremented.
func (s *SQLStore) Take(ctx context.Context, identifier string, limit int, window time.Duration, now time.Time) (Decision, error) {
	var (
		windowStart time.Time
		count       int
	)
	err := s.db.QueryRowContext(ctx, takeQuery, identifier, now.UTC(), now.UTC().Add(-window)).
		Scan(&windowStart, &count)
	if err != nil {
		return Decision{}, fmt.Errorf("take rate-limit window: %w", err)
	}
	return decide(windowStart, count, limit, window), nil
}
