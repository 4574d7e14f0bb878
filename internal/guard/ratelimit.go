// Package guard holds pre-admission checks that run before a wager reaches
// the settlement transaction.
package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playhall/platform/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RateLimiter caps wager submissions per player per window. With Redis it
// counts in a shared fixed window so the cap holds across API replicas;
// without it, a local sliding window covers the single-instance case.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewRateLimiter creates a rate limiter. rdb may be nil.
func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:     rdb,
		limit:   limit,
		window:  window,
		windows: make(map[string][]time.Time),
	}
}

// Check returns whether the key is within limits and records the attempt.
func (rl *RateLimiter) Check(ctx context.Context, key string) domain.GuardResult {
	if rl.rdb != nil {
		return rl.checkRedis(ctx, key)
	}
	return rl.checkLocal(key)
}

func (rl *RateLimiter) checkRedis(ctx context.Context, key string) domain.GuardResult {
	bucket := fmt.Sprintf("rl:wager:%s:%d", key, time.Now().Unix()/int64(rl.window.Seconds()))

	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		// Availability over strictness when Redis is down.
		return domain.GuardResult{Allowed: true}
	}

	if incr.Val() > int64(rl.limit) {
		return domain.GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %d/%s", rl.limit, rl.window),
			Guard:   "rate_limiter",
		}
	}
	return domain.GuardResult{Allowed: true}
}

func (rl *RateLimiter) checkLocal(key string) domain.GuardResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	entries := rl.windows[key]
	valid := entries[:0]
	for _, t := range entries {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.windows[key] = valid
		return domain.GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %d/%s", rl.limit, rl.window),
			Guard:   "rate_limiter",
		}
	}

	rl.windows[key] = append(valid, now)
	return domain.GuardResult{Allowed: true}
}
