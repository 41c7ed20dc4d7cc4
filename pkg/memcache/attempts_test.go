package mem

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttemptsHitCountsWithinWindow(t *testing.T) {
	s := NewAttempts()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		n, _, err := s.Hit(ctx, "1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
}

func TestAttemptsWindowExpires(t *testing.T) {
	s := NewAttempts()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.Hit(ctx, "k", time.Minute)
	s.Hit(ctx, "k", time.Minute)

	now = now.Add(2 * time.Minute)
	n, resetAt, err := s.Hit(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, now.Add(time.Minute), resetAt)
}

func TestAttemptsReset(t *testing.T) {
	s := NewAttempts()
	ctx := context.Background()

	s.Hit(ctx, "k", time.Minute)
	require.NoError(t, s.Reset(ctx, "k"))

	n, _, _ := s.Hit(ctx, "k", time.Minute)
	assert.Equal(t, 1, n)
}

func TestAttemptsCleanup(t *testing.T) {
	s := NewAttempts()
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.Hit(ctx, "expired", time.Second)
	s.Hit(ctx, "active", time.Hour)
	now = now.Add(time.Minute)

	s.Cleanup()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.NotContains(t, s.data, "expired")
	assert.Contains(t, s.data, "active")
}

func TestAttemptsConcurrentHits(t *testing.T) {
	s := NewAttempts()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Hit(ctx, "k", time.Minute)
		}()
	}
	wg.Wait()

	n, _, _ := s.Hit(ctx, "k", time.Minute)
	assert.Equal(t, 51, n)
}

func newRedisAttempts(t *testing.T) (*RedisAttempts, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisAttempts(client, "login:"), mr
}

func TestRedisAttemptsHit(t *testing.T) {
	s, mr := newRedisAttempts(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		n, _, err := s.Hit(ctx, "1.2.3.4", 15*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	assert.True(t, mr.Exists("login:1.2.3.4"))
	assert.Equal(t, 15*time.Minute, mr.TTL("login:1.2.3.4"))
}

func TestRedisAttemptsWindowExpires(t *testing.T) {
	s, mr := newRedisAttempts(t)
	ctx := context.Background()

	s.Hit(ctx, "k", time.Minute)
	s.Hit(ctx, "k", time.Minute)
	mr.FastForward(2 * time.Minute)

	n, _, err := s.Hit(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRedisAttemptsReset(t *testing.T) {
	s, mr := newRedisAttempts(t)
	ctx := context.Background()

	s.Hit(ctx, "k", time.Minute)
	require.NoError(t, s.Reset(ctx, "k"))
	assert.False(t, mr.Exists("login:k"))
}
