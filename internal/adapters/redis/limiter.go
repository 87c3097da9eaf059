package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter shared by every process that talks
// to the same Redis, used to keep all workers under the Airmeet quota.
type RateLimiter struct {
	client *Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(client *Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	windowStart := r.now().Truncate(r.window)
	redisKey := fmt.Sprintf("%srate_limit:%s:%d", keyPrefix, key, windowStart.Unix())

	pipe := r.client.rdb.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window+10*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("redis pipeline error: %w", err)
	}

	if incr.Val() > int64(r.limit) {
		return false, windowStart.Add(r.window).Sub(r.now()), nil
	}

	return true, 0, nil
}

func (r *RateLimiter) Wait(ctx context.Context, key string) error {
	for {
		allowed, wait, err := r.Allow(ctx, key)
		if err != nil {
			return err
		}
		if allowed {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
