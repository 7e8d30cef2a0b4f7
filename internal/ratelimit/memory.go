package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryWindow struct {
	start time.Time
	count int
}

// MemoryStore is a process-local Store. Counters live for the process
// lifetime and reset on restart, which is acceptable for a single-instance
// deployment.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// NewMemoryStore creates an empty in-process counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*memoryWindow)}
}

// Take starts a new window if none exists or the current one has expired,
// otherwise increments the current window. It never returns an error.
func (s *MemoryStore) Take(_ context.Context, identifier string, limit int, window time.Duration, now time.Time) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[identifier]
	if !ok || now.Sub(w.start) >= window {
		w = &memoryWindow{start: now, count: 1}
		s.windows[identifier] = w
	} else {
		w.count++
	}
	return decide(w.start, w.count, limit, window), nil
}

// Reset drops the window for one identifier.
func (s *MemoryStore) Reset(identifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, identifier)
}

// Sweep removes windows that expired before now, bounding map growth on
// long-running processes.
func (s *MemoryStore) Sweep(window time.Duration, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, w := range s.windows {
		if now.Sub(w.start) >= window {
			delete(s.windows, id)
		}
	}
}
