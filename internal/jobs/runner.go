package jobs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/alexchny/event-relay/internal/ports"
	"go.uber.org/zap"
)

// settleTimeout bounds the Retry/DeadLetter write after the run context is cancelled.
const settleTimeout = 5 * time.Second

// DelayFunc returns the wait before retry attempt n (1-indexed).
type DelayFunc func(attempt int) time.Duration

// ExponentialDelay returns initial * 2^(attempt-1), capped at maxDelay.
func ExponentialDelay(initial, maxDelay time.Duration) DelayFunc {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		d := time.Duration(float64(initial) * math.Pow(2, float64(attempt-1)))
		if maxDelay > 0 && (d > maxDelay || d <= 0) {
			return maxDelay
		}
		return d
	}
}

type Runner struct {
	source      ports.JobSource
	registry    *Registry
	middleware  Middleware
	logger      *zap.Logger
	concurrency int
	maxAttempts int
	pollTimeout time.Duration
	errorPause  time.Duration
	delay       DelayFunc
}

type RunnerOption func(*Runner)

func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithMaxAttempts(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func WithPollTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.pollTimeout = d }
}

func WithRetryDelay(fn DelayFunc) RunnerOption {
	return func(r *Runner) { r.delay = fn }
}

func WithMiddleware(mws ...Middleware) RunnerOption {
	return func(r *Runner) { r.middleware = Chain(mws...) }
}

func NewRunner(source ports.JobSource, registry *Registry, logger *zap.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		source:      source,
		registry:    registry,
		middleware:  Chain(),
		logger:      logger,
		concurrency: 5,
		maxAttempts: 5,
		pollTimeout: 2 * time.Second,
		errorPause:  time.Second,
		delay:       ExponentialDelay(10*time.Second, 10*time.Minute),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run blocks until ctx is cancelled and every worker has finished its
// current job.
func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup

	r.logger.Info("starting workers",
		zap.Int("count", r.concurrency),
		zap.Strings("jobs", r.registry.Names()),
	)

	for i := 0; i < r.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.work(ctx, workerID)
		}(i)
	}

	wg.Wait()
	r.logger.Info("workers stopped")
}

func (r *Runner) work(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := r.ProcessNext(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logger.Error("queue error", zap.Int("worker_id", workerID), zap.Error(err))

			select {
			case <-ctx.Done():
				return
			case <-time.After(r.errorPause):
			}
		}
	}
}

// ProcessNext dequeues at most one job and settles it. It reports
// whether a job was handled; handler failures are settled, not returned.
func (r *Runner) ProcessNext(ctx context.Context) (bool, error) {
	job, err := r.source.Dequeue(ctx, r.pollTimeout)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	r.handle(ctx, job)
	return true, nil
}

func (r *Runner) handle(ctx context.Context, job *domain.Job) {
	handler, ok := r.registry.Get(job.Name)
	if !ok {
		r.deadLetter(ctx, job, fmt.Errorf("%w: %s", ErrUnknownJob, job.Name))
		return
	}

	// A started job runs to completion on shutdown; only the Timeout
	// middleware bounds it.
	err := r.middleware(context.WithoutCancel(ctx), job, func(ctx context.Context) error {
		return handler(ctx, job.Payload)
	})
	if err == nil {
		return
	}

	if errors.Is(err, ErrPermanent) || !job.CanRetry(r.maxAttempts) {
		r.deadLetter(ctx, job, err)
		return
	}

	job.Attempt++
	job.LastError = err.Error()
	delay := r.delay(job.Attempt)

	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	if retryErr := r.source.Retry(settleCtx, job, delay); retryErr != nil {
		r.logger.Error("failed to schedule retry",
			zap.String("job_id", job.ID),
			zap.String("job_name", job.Name),
			zap.Error(retryErr),
		)
		return
	}

	r.logger.Warn("job scheduled for retry",
		zap.String("job_id", job.ID),
		zap.String("job_name", job.Name),
		zap.Int("attempt", job.Attempt),
		zap.Duration("delay", delay),
	)
}

func (r *Runner) deadLetter(ctx context.Context, job *domain.Job, cause error) {
	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	if err := r.source.DeadLetter(settleCtx, job, cause); err != nil {
		r.logger.Error("failed to dead-letter job",
			zap.String("job_id", job.ID),
			zap.String("job_name", job.Name),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
		return
	}

	r.logger.Error("job dead-lettered",
		zap.String("job_id", job.ID),
		zap.String("job_name", job.Name),
		zap.Int("attempt", job.Attempt),
		zap.Error(cause),
	)
}
