package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLStore_Take(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewSQLStore(db)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := time.Hour

	t.Run("first request opens a window", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"window_start", "count"}).AddRow(now, 1)
		mock.ExpectQuery("INSERT INTO rate_limit_windows").
			WithArgs("1.2.3.4", now, now.Add(-window)).
			WillReturnRows(rows)

		dec, err := store.Take(ctx, "1.2.3.4", 20, window, now)

		require.NoError(t, err)
		assert.True(t, dec.Allowed)
		assert.Equal(t, 19, dec.Remaining)
		assert.Equal(t, now.Add(window), dec.ResetAt)
	})

	t.Run("over-limit count denies", func(t *testing.T) {
		start := now.Add(-30 * time.Minute)
		rows := sqlmock.NewRows([]string{"window_start", "count"}).AddRow(start, 21)
		mock.ExpectQuery("INSERT INTO rate_limit_windows").
			WithArgs("1.2.3.4", now, now.Add(-window)).
			WillReturnRows(rows)

		dec, err := store.Take(ctx, "1.2.3.4", 20, window, now)

		require.NoError(t, err)
		assert.False(t, dec.Allowed)
		assert.Equal(t, 0, dec.Remaining)
		assert.Equal(t, start.Add(window), dec.ResetAt)
	})

	t.Run("query failure surfaces", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO rate_limit_windows").
			WillReturnError(errors.New("connection refused"))

		_, err := store.Take(ctx, "1.2.3.4", 20, window, now)

		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
