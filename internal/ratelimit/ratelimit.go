// Package ratelimit implements the fixed-window abuse throttle shared by the
// create and retrieve paths. Counters live in Redis so budgets hold across
// process restarts and between service instances.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Operation names used to namespace limiter keys.
const (
	OpCreateShare = "create-share"
	OpGenerateUrn = "generate-urn"
	OpGetShare    = "get-share"
)

// Counter is the atomic increment-with-expiry primitive behind the limiter.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	ExpireNX(ctx context.Context, key string, ttl time.Duration) error
}

// RedisCounter backs the limiter with a shared Redis instance.
type RedisCounter struct {
	client redis.UniversalClient
}

// NewRedisCounter creates a counter on an existing Redis client.
func NewRedisCounter(client redis.UniversalClient) *RedisCounter {
	return &RedisCounter{client: client}
}

// Incr atomically increments the counter, creating it at 1 if absent.
func (c *RedisCounter) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// ExpireNX sets the key TTL only when none is set yet, so the window anchor
// survives a crash between INCR and EXPIRE.
func (c *RedisCounter) ExpireNX(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.ExpireNX(ctx, key, ttl).Err()
}

// Limiter enforces per-key attempt budgets over fixed windows. A new window
// starts when the previous one expires; within a window every attempt is
// counted, allowed or not.
type Limiter struct {
	counter Counter
}

// New creates a limiter on the given counter store.
func New(counter Counter) *Limiter {
	return &Limiter{counter: counter}
}

// Allow consumes one attempt from the window identified by operation and key.
// When it returns false the caller must not perform the guarded operation.
// Errors mean the shared store is unreachable; the caller decides whether to
// fail the request (this service does).
func (l *Limiter) Allow(ctx context.Context, op, key string, max int, window time.Duration) (bool, error) {
	k := fmt.Sprintf("ratelimit:%s:%s", op, key)

	n, err := l.counter.Incr(ctx, k)
	if err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	if err := l.counter.ExpireNX(ctx, k, window); err != nil {
		return false, fmt.Errorf("rate limit expiry: %w", err)
	}

	return n <= int64(max), nil
}
