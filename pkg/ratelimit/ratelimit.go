// Package ratelimit enforces each API key's daily request allowance.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLimitExceeded is returned once a key has used up its daily allowance
var ErrLimitExceeded = errors.New("daily rate limit exceeded")

// Limiter counts requests per key and UTC day in Redis
type Limiter struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// New creates a limiter; keys are stored as <prefix><key>:<yyyy-mm-dd>
func New(rdb *redis.Client, prefix string) *Limiter {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &Limiter{rdb: rdb, prefix: prefix, now: time.Now}
}

// Usage is the state of a key for the current day
type Usage struct {
	Count     int64     `json:"count"`
	Limit     int       `json:"limit"`
	ResetsAt  time.Time `json:"resets_at"`
	Remaining int64     `json:"remaining"`
}

// bucket names today's counter for key and the time it rolls over
func (l *Limiter) bucket(key string) (string, time.Time, time.Duration) {
	now := l.now().UTC()
	day := now.Format("2006-01-02")
	reset := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	return l.prefix + key + ":" + day, reset, reset.Sub(now)
}

// Allow counts one request for key. It returns ErrLimitExceeded (and the
// usage so far) once the count passes limit. A limit of 0 or less means
// unlimited.
func (l *Limiter) Allow(ctx context.Context, key string, limit int) (Usage, error) {
	bucket, reset, left := l.bucket(key)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, left+time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return Usage{}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	u := Usage{Count: incr.Val(), Limit: limit, ResetsAt: reset}
	if limit <= 0 {
		u.Remaining = -1
		return u, nil
	}
	u.Remaining = max(int64(limit)-u.Count, 0)
	if u.Count > int64(limit) {
		return u, ErrLimitExceeded
	}
	return u, nil
}

// Peek returns today's usage without counting a request
func (l *Limiter) Peek(ctx context.Context, key string, limit int) (Usage, error) {
	bucket, reset, _ := l.bucket(key)
	n, err := l.rdb.Get(ctx, bucket).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Usage{}, fmt.Errorf("rate limit %s: %w", key, err)
	}
	u := Usage{Count: n, Limit: limit, ResetsAt: reset, Remaining: -1}
	if limit > 0 {
		u.Remaining = max(int64(limit)-n, 0)
	}
	return u, nil
}

// Reset clears today's counter for key
func (l *Limiter) Reset(ctx context.Context, key string) error {
	bucket, _, _ := l.bucket(key)
	return l.rdb.Del(ctx, bucket).Err()
}
