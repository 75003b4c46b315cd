package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	end   time.Time
	count int
}

// MemoryStore keeps windows in process memory. Counts are not shared
// between server instances.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock reads the current time from now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*window),
		now:     now,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, d time.Duration) (int, time.Time, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.end) {
		w = &window{end: now.Add(d)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.end, nil
}

// Sweep drops windows that have ended and returns how many were removed.
// Each window keeps the length it was opened with, so a live window is never
// dropped.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if !now.Before(w.end) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live windows.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
