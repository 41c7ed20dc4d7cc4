// pkg/mem/attempts.go
package mem

import (
	"context"
	"sync"
	"time"
)

// AttemptStore counts hits per key inside a fixed window that starts on the
// first hit. Implementations must make Hit atomic for concurrent callers.
type AttemptStore interface {
	// Hit records one attempt and returns the count within the current window
	// together with the time the window resets.
	Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error)

	// Reset forgets the key (e.g. after a successful login).
	Reset(ctx context.Context, key string) error
}

type entry struct {
	count   int
	resetAt time.Time
}

// Attempts is the in-process AttemptStore. It is only correct for
// single-instance deployments; use the Redis store otherwise.
type Attempts struct {
	mu   sync.Mutex
	data map[string]*entry
	now  func() time.Time
}

func NewAttempts() *Attempts {
	return &Attempts{
		data: make(map[string]*entry),
		now:  time.Now,
	}
}

func (s *Attempts) Hit(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.data[key]
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 0, resetAt: now.Add(window)}
		s.data[key] = e
	}
	e.count++
	return e.count, e.resetAt, nil
}

func (s *Attempts) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Cleanup removes expired windows.
func (s *Attempts) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.data {
		if now.After(e.resetAt) {
			delete(s.data, key)
		}
	}
}
