package stressengine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/torosent/llmbench/internal/model"
)

type fakeAttempter struct{ calls int64 }

func (f *fakeAttempter) Execute(ctx context.Context) model.Attempt {
	atomic.AddInt64(&f.calls, 1)
	return model.Attempt{IssueTime: time.Now(), Success: true, Latency: 0.001}
}

func TestRunStopsAtDeadline(t *testing.T) {
	attempter := &fakeAttempter{}
	start := time.Now()
	stage := Run(context.Background(), 4, 100*time.Millisecond, attempter, nil)
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Fatalf("Run took %v, expected to stop near the 100ms deadline", elapsed)
	}
	if stage.TotalCount == 0 {
		t.Error("expected at least one outcome collected during the run")
	}
	if stage.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", stage.Concurrency)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stage := Run(ctx, 2, time.Hour, &fakeAttempter{}, nil)
	if stage.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0 for an already-cancelled context", stage.TotalCount)
	}
}

func TestRunClampsNonPositiveConcurrency(t *testing.T) {
	stage := Run(context.Background(), 0, 50*time.Millisecond, &fakeAttempter{}, nil)
	if stage.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want clamped to 1", stage.Concurrency)
	}
}
