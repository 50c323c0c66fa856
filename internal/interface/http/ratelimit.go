package http

import (
	"context"
	"sync"
	"time"
)

// RateLimiter decides whether a client may perform an action.
// The Redis limiter implements it; MemoryRateLimiter is used without Redis.
type RateLimiter interface {
	Allow(ctx context.Context, identifier, action string) (allowed bool, remaining int, err error)
}

// MemoryRateLimiter is a sliding-window limiter for a single instance.
type MemoryRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
	lastGC   time.Time
}

// NewMemoryRateLimiter allows limit requests per key per window.
func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Allow records one request for identifier/action.
func (rl *MemoryRateLimiter) Allow(_ context.Context, identifier, action string) (bool, int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.window)
	key := action + ":" + identifier

	valid := rl.requests[key][:0]
	for _, t := range rl.requests[key] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false, 0, nil
	}
	rl.requests[key] = append(valid, now)

	if now.Sub(rl.lastGC) > rl.window*10 {
		rl.gcLocked(windowStart)
		rl.lastGC = now
	}
	return true, rl.limit - len(valid) - 1, nil
}

func (rl *MemoryRateLimiter) gcLocked(windowStart time.Time) {
	for key, times := range rl.requests {
		if len(times) == 0 || !times[len(times)-1].After(windowStart) {
			delete(rl.requests, key)
		}
	}
}
