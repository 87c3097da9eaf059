package jobs

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/alexchny/event-relay/internal/jobs"

// Handler is the terminal call that runs the job's handler.
type Handler func(ctx context.Context) error

// Middleware wraps a job execution. It must call next unless it is
// short-circuiting with an error.
type Middleware func(ctx context.Context, job *domain.Job, next Handler) error

// Chain composes mws so the first one is the outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, job *domain.Job, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, job, prev)
			}
		}
		return h(ctx)
	}
}

// Recover converts a handler panic into an error.
func Recover(logger *zap.Logger) Middleware {
	return func(ctx context.Context, job *domain.Job, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("job handler panicked",
					zap.String("job_name", job.Name),
					zap.String("job_id", job.ID),
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)
				retErr = fmt.Errorf("panic in job %s: %v", job.Name, r)
			}
		}()
		return next(ctx)
	}
}

func Logging(logger *zap.Logger) Middleware {
	return func(ctx context.Context, job *domain.Job, next Handler) error {
		fields := []zap.Field{
			zap.String("job_name", job.Name),
			zap.String("job_id", job.ID),
			zap.String("trace_id", job.TraceID),
			zap.Int("attempt", job.Attempt),
		}
		logger.Info("job started", fields...)

		start := time.Now()
		err := next(ctx)
		fields = append(fields, zap.Duration("elapsed", time.Since(start)))

		if err != nil {
			logger.Error("job failed", append(fields, zap.Error(err))...)
		} else {
			logger.Info("job completed", fields...)
		}
		return err
	}
}

// Tracing wraps execution in a span from the global TracerProvider.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, job *domain.Job, next Handler) error {
		ctx, span := tracer.Start(ctx, "jobs.execute",
			trace.WithAttributes(
				attribute.String("job.id", job.ID),
				attribute.String("job.name", job.Name),
				attribute.String("job.trace_id", job.TraceID),
				attribute.Int("job.attempt", job.Attempt),
			),
			trace.WithSpanKind(trace.SpanKindConsumer),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	}
}

// Timeout bounds every execution by d. Zero disables it.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, job *domain.Job, next Handler) error {
		if d <= 0 {
			return next(ctx)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next(ctx)
	}
}
