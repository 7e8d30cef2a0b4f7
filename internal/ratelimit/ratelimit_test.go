package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreWindow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := time.Hour

	t.Run("remaining decreases by exactly one per call and floors at zero", func(t *testing.T) {
		for i := 1; i <= 20; i++ {
			dec, err := store.Take(ctx, "1.2.3.4", 20, window, now)
			require.NoError(t, err)
			assert.True(t, dec.Allowed, "call %d should be allowed", i)
			assert.Equal(t, 20-i, dec.Remaining, "call %d", i)
			assert.Equal(t, now.Add(window), dec.ResetAt)
		}

		// 21st call in the same window is denied with remaining pinned at 0.
		dec, err := store.Take(ctx, "1.2.3.4", 20, window, now.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, dec.Allowed)
		assert.Equal(t, 0, dec.Remaining)
		assert.Equal(t, now.Add(window), dec.ResetAt)
	})

	t.Run("window expiry starts a fresh window", func(t *testing.T) {
		later := now.Add(window)
		dec, err := store.Take(ctx, "1.2.3.4", 20, window, later)
		require.NoError(t, err)
		assert.True(t, dec.Allowed)
		assert.Equal(t, 19, dec.Remaining)
		assert.Equal(t, later.Add(window), dec.ResetAt)
	})

	t.Run("identifiers are independent", func(t *testing.T) {
		dec, err := store.Take(ctx, "5.6.7.8", 20, window, now)
		require.NoError(t, err)
		assert.Equal(t, 19, dec.Remaining)
	})
}

func TestMemoryStoreConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	const calls = 100
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Take(ctx, "burst", 50, time.Hour, now)
		}()
	}
	wg.Wait()

	// The next call observes all 100 prior increments.
	dec, err := store.Take(ctx, "burst", 50, time.Hour, now)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, 0, dec.Remaining)
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	store.Take(ctx, "old", 5, time.Hour, now.Add(-2*time.Hour))
	store.Take(ctx, "fresh", 5, time.Hour, now)
	store.Sweep(time.Hour, now)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotContains(t, store.windows, "old")
	assert.Contains(t, store.windows, "fresh")
}

type failingStore struct{}

func (failingStore) Take(context.Context, string, int, time.Duration, time.Time) (Decision, error) {
	return Decision{}, errors.New("store down")
}

func TestLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("empty identifier uses the shared bucket", func(t *testing.T) {
		store := NewMemoryStore()
		l := New(store, 2, time.Hour)

		first := l.Check(ctx, "")
		second := l.Check(ctx, "")
		third := l.Check(ctx, "")

		assert.True(t, first.Allowed)
		assert.True(t, second.Allowed)
		assert.False(t, third.Allowed)
	})

	t.Run("store failure degrades to the in-process fallback", func(t *testing.T) {
		l := New(failingStore{}, 1, time.Hour)

		first := l.Check(ctx, "9.9.9.9")
		second := l.Check(ctx, "9.9.9.9")

		assert.True(t, first.Allowed)
		assert.False(t, second.Allowed, "fallback must keep counting, not wave requests through")
	})

	t.Run("exposes configured policy", func(t *testing.T) {
		l := New(NewMemoryStore(), 20, time.Hour)
		assert.Equal(t, 20, l.Limit())
		assert.Equal(t, time.Hour, l.Window())
	})
}
