package ports

//go:generate mockgen -source=rate_limiter.go -destination=../mocks/mock_rate_limiter.go -package=mocks

import (
	"context"
	"time"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
	Wait(ctx context.Context, key string) error
}
