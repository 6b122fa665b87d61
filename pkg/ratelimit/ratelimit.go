package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes one rate-limit decision.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is a fixed-window rate limit store keyed by caller identifier.
// Counts and reset times live in Redis, so every process sharing the store
// sees the same window; nothing here is process-global.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func New(rdb *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

// Allow counts one request for id and reports whether it fits in the current
// window. The window starts at the first request and expires after the
// configured duration.
func (l *Limiter) Allow(ctx context.Context, id string) Result {
	key := fmt.Sprintf("ratelimit:%s", id)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		// Redis 不可用时放行，限流只是保护措施
		return Result{Allowed: true, Remaining: l.limit}
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, l.window)
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.window
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= int64(l.limit),
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}
}
