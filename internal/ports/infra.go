package ports

//go:generate mockgen -source=infra.go -destination=../mocks/mock_infra.go -package=mocks

import (
	"context"
	"time"
)

// DistributedLock returns a release func on success.
type DistributedLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func() error, error)
}
