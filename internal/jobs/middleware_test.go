package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func testJob() *domain.Job {
	return &domain.Job{ID: "job-1", Name: "event.sync", TraceID: "trace-1"}
}

func TestChain_Order(t *testing.T) {
	var calls []string
	record := func(name string) Middleware {
		return func(ctx context.Context, _ *domain.Job, next Handler) error {
			calls = append(calls, name+":before")
			err := next(ctx)
			calls = append(calls, name+":after")
			return err
		}
	}

	mw := Chain(record("outer"), record("inner"))
	err := mw(context.Background(), testJob(), func(context.Context) error {
		calls = append(calls, "handler")
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"outer:before", "inner:before", "handler", "inner:after", "outer:after"}, calls)
}

func TestChain_Empty(t *testing.T) {
	called := false
	err := Chain()(context.Background(), testJob(), func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRecover(t *testing.T) {
	err := Recover(zap.NewNop())(context.Background(), testJob(), func(context.Context) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in job event.sync: boom")
}

func TestLogging_PassesErrorThrough(t *testing.T) {
	want := errors.New("upstream down")
	err := Logging(zap.NewNop())(context.Background(), testJob(), func(context.Context) error {
		return want
	})
	assert.ErrorIs(t, err, want)
}

func TestTimeout(t *testing.T) {
	err := Timeout(10*time.Millisecond)(context.Background(), testJob(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = Timeout(0)(context.Background(), testJob(), func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.False(t, ok)
		return nil
	})
	assert.NoError(t, err)
}

func TestTracing(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	mw := TracingWithTracer(tp.Tracer("test"))

	require.NoError(t, mw(context.Background(), testJob(), func(context.Context) error { return nil }))
	require.Error(t, mw(context.Background(), testJob(), func(context.Context) error { return errors.New("fail") }))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "jobs.execute", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "fail", spans[1].Status().Description)
}
