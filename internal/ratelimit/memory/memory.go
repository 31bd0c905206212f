// Package memory is the in-process counter store, used when no shared
// store is configured or reachable. Correct within a single process only.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/evalion/evalion/internal/ratelimit"
)

const sweepInterval = time.Minute

type entry struct {
	mu      sync.Mutex
	count   int64
	resetAt time.Time
}

type Store struct {
	now     func() time.Time
	entries sync.Map
	done    chan struct{}
	once    sync.Once
}

func New() *Store {
	s := &Store{now: time.Now, done: make(chan struct{})}
	go s.sweep()
	return s
}

// NewWithClock skips the sweeper and uses the given clock. For tests.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now, done: make(chan struct{})}
}

func (s *Store) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func (s *Store) Increment(_ context.Context, key string, window time.Duration) (ratelimit.Snapshot, error) {
	now := s.now()

	v, _ := s.entries.LoadOrStore(key, &entry{})
	e := v.(*entry)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !now.Before(e.resetAt) {
		e.count = 0
		e.resetAt = now.Add(window)
	}
	e.count++

	return ratelimit.Snapshot{Count: e.count, ResetAt: e.resetAt}, nil
}

// sweep drops entries whose window expired a while ago so the map stays
// bounded under churny identities. The grace period keeps the sweep from
// racing an increment that is about to reuse the entry.
func (s *Store) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := s.now().Add(-sweepInterval)
			s.entries.Range(func(key, v any) bool {
				e := v.(*entry)
				e.mu.Lock()
				expired := e.resetAt.Before(cutoff)
				e.mu.Unlock()
				if expired {
					s.entries.Delete(key)
				}
				return true
			})
		}
	}
}
