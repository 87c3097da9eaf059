package logger

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// SpanExporter writes finished spans to a zap logger at debug level, so
// job traces show up in the worker log without a collector.
type SpanExporter struct {
	logger *zap.Logger
}

func NewSpanExporter(logger *zap.Logger) *SpanExporter {
	return &SpanExporter{logger: logger}
}

func (e *SpanExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		fields := []zap.Field{
			zap.String("span", span.Name()),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
			zap.Duration("duration", span.EndTime().Sub(span.StartTime())),
			zap.String("status", span.Status().Code.String()),
		}
		for _, attr := range span.Attributes() {
			fields = append(fields, zap.String(string(attr.Key), attr.Value.Emit()))
		}
		e.logger.Debug("span finished", fields...)
	}
	return nil
}

func (e *SpanExporter) Shutdown(context.Context) error {
	return nil
}

// NewTracerProvider batches spans into logger. Callers install it with
// otel.SetTracerProvider and shut it down on exit to flush.
func NewTracerProvider(logger *zap.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(NewSpanExporter(logger)),
	)
}
