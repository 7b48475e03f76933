package tracing

import (
	"context"
	"testing"

	"github.com/torosent/llmbench/internal/model"
)

func TestInitDisabledReturnsNoOpProvider(t *testing.T) {
	p, err := Init(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.tp != nil {
		t.Error("disabled config built a real TracerProvider")
	}
	if p.Tracer() == nil {
		t.Error("Tracer() returned nil")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on no-op provider: %v", err)
	}
}

func TestInitEnabledWithoutEndpointFallsBackToNoOp(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	p, err := Init(context.Background(), Config{Enabled: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.tp != nil {
		t.Error("enabled config with no endpoint should still fall back to no-op")
	}
}

func TestNilProviderTracerIsSafe(t *testing.T) {
	var p *Provider
	if p.Tracer() == nil {
		t.Error("Tracer() on a nil *Provider should still return a usable no-op tracer")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on nil *Provider: %v", err)
	}
}

func TestStartAndEndAttemptSpanAgainstNoOpTracer(t *testing.T) {
	var p *Provider
	tracer := p.Tracer()

	ctx, span := StartAttemptSpan(context.Background(), tracer, "01SESSION0000000000000000", 8)
	if ctx == nil {
		t.Fatal("StartAttemptSpan returned a nil context")
	}

	EndAttemptSpan(span, model.Attempt{StatusCode: 500, Success: false, Error: "boom", Latency: 0.2})
}
