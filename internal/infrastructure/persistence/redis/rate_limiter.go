package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests in fixed windows.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit requests per identifier per window.
func NewRateLimiter(cache *Cache, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: cache.Client(),
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// Allow records one request and reports whether it fits the window,
// plus how many requests remain.
func (r *RateLimiter) Allow(ctx context.Context, identifier, action string) (bool, int, error) {
	bucket := r.now().UnixNano() / int64(r.window)
	key := RateLimitKey(identifier, action, bucket)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit %s: %w", action, err)
	}

	count := incr.Val()
	remaining := max(r.limit-count, 0)
	return count <= r.limit, int(remaining), nil
}
