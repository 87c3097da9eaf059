package ports

//go:generate mockgen -source=queue.go -destination=../mocks/mock_queue.go -package=mocks

import (
	"context"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
)

// JobQueue records a job for asynchronous execution and returns without
// waiting for it to run.
type JobQueue interface {
	Enqueue(ctx context.Context, job *domain.Job) error
}

// JobSource is the worker side of the queue. Dequeue returns nil, nil
// when nothing arrived within timeout.
type JobSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.Job, error)
	Retry(ctx context.Context, job *domain.Job, delay time.Duration) error
	DeadLetter(ctx context.Context, job *domain.Job, cause error) error
}
