package main

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/llmbench/internal/livestats"
	"github.com/torosent/llmbench/internal/model"
	"github.com/torosent/llmbench/internal/stagerunner"
	"github.com/torosent/llmbench/internal/tracing"
)

// instrumentedAttempter wraps an Attempter with an OTel span per call and an
// optional mirror into a live, non-authoritative Collector. The tracer must
// be non-nil (a disabled tracing.Provider hands out a no-op tracer, whose
// spans cost next to nothing); the collector may be nil. Spans carry the
// session ID, but their concurrency attribute is always 0: the wrapper does
// not know which stage's concurrency level a call belongs to.
type instrumentedAttempter struct {
	inner     stagerunner.Attempter
	tracer    trace.Tracer
	sessionID string
	collector *livestats.Collector
}

func (a *instrumentedAttempter) Execute(ctx context.Context) model.Attempt {
	spanCtx, span := tracing.StartAttemptSpan(ctx, a.tracer, a.sessionID, 0)
	outcome := a.inner.Execute(spanCtx)
	tracing.EndAttemptSpan(span, outcome)
	if a.collector != nil {
		a.collector.Record(outcome)
	}
	return outcome
}
