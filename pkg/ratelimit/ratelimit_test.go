package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLimiter(t *testing.T) (*miniredis.Miniredis, *Limiter) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l := New(rdb, "test:")
	l.now = func() time.Time { return time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC) }
	return mr, l
}

func TestLimiter_AllowUntilLimit(t *testing.T) {
	mr, l := setupLimiter(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		u, err := l.Allow(ctx, "front-desk", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(i), u.Count)
		assert.Equal(t, int64(3-i), u.Remaining)
	}

	u, err := l.Allow(ctx, "front-desk", 3)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.Equal(t, int64(4), u.Count)
	assert.Equal(t, int64(0), u.Remaining)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), u.ResetsAt)

	assert.True(t, mr.Exists("test:front-desk:2026-03-14"))
	assert.Greater(t, mr.TTL("test:front-desk:2026-03-14"), time.Duration(0))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	_, l := setupLimiter(t)
	ctx := context.Background()

	_, err := l.Allow(ctx, "a", 1)
	require.NoError(t, err)
	_, err = l.Allow(ctx, "b", 1)
	require.NoError(t, err)
	_, err = l.Allow(ctx, "a", 1)
	assert.ErrorIs(t, err, ErrLimitExceeded)
}

func TestLimiter_NewDay(t *testing.T) {
	_, l := setupLimiter(t)
	ctx := context.Background()

	_, err := l.Allow(ctx, "k", 1)
	require.NoError(t, err)

	l.now = func() time.Time { return time.Date(2026, 3, 15, 0, 5, 0, 0, time.UTC) }
	_, err = l.Allow(ctx, "k", 1)
	assert.NoError(t, err)
}

func TestLimiter_Unlimited(t *testing.T) {
	_, l := setupLimiter(t)
	for i := 0; i < 5; i++ {
		u, err := l.Allow(context.Background(), "k", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(-1), u.Remaining)
	}
}

func TestLimiter_PeekAndReset(t *testing.T) {
	_, l := setupLimiter(t)
	ctx := context.Background()

	u, err := l.Peek(ctx, "k", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.Count)
	assert.Equal(t, int64(10), u.Remaining)

	_, _ = l.Allow(ctx, "k", 10)
	_, _ = l.Allow(ctx, "k", 10)
	u, err = l.Peek(ctx, "k", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.Count)

	require.NoError(t, l.Reset(ctx, "k"))
	u, err = l.Peek(ctx, "k", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.Count)
}

func TestLimiter_RedisDown(t *testing.T) {
	mr, l := setupLimiter(t)
	mr.Close()

	_, err := l.Allow(context.Background(), "k", 5)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrLimitExceeded)
}
