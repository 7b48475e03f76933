package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/llmbench/internal/model"
)

// StartAttemptSpan opens one span for a single Request Executor attempt,
// tagged with the session and concurrency-level context it belongs to.
func StartAttemptSpan(ctx context.Context, tracer trace.Tracer, sessionID string, concurrency int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "executor.attempt",
		trace.WithAttributes(
			attribute.String("session_id", sessionID),
			attribute.Int("concurrency", concurrency),
		),
	)
}

// EndAttemptSpan records the outcome of an attempt onto its span and ends
// it. It never returns an error and is safe to call on a no-op span.
func EndAttemptSpan(span trace.Span, outcome model.Attempt) {
	span.SetAttributes(
		attribute.Int("status_code", outcome.StatusCode),
		attribute.Bool("success", outcome.Success),
		attribute.Float64("latency_seconds", outcome.Latency),
		attribute.Int("total_tokens", outcome.TotalTokens),
	)
	if !outcome.Success {
		span.SetStatus(codes.Error, outcome.Error)
	}
	span.End()
}
