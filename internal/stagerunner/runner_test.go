package stagerunner

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/torosent/llmbench/internal/model"
)

type fakeAttempter struct {
	calls   int64
	latency time.Duration
}

func (f *fakeAttempter) Execute(ctx context.Context) model.Attempt {
	atomic.AddInt64(&f.calls, 1)
	if f.latency > 0 {
		time.Sleep(f.latency)
	}
	return model.Attempt{IssueTime: time.Now(), Success: true}
}

type panickingAttempter struct{}

func (panickingAttempter) Execute(ctx context.Context) model.Attempt {
	panic("boom")
}

func TestRunReturnsExactlyCountOutcomes(t *testing.T) {
	attempter := &fakeAttempter{}
	outcomes := Run(context.Background(), 4, 37, attempter, nil)
	if len(outcomes) != 37 {
		t.Fatalf("len(outcomes) = %d, want 37", len(outcomes))
	}
	if atomic.LoadInt64(&attempter.calls) != 37 {
		t.Fatalf("attempter called %d times, want 37", attempter.calls)
	}
}

func TestRunZeroCountReturnsNil(t *testing.T) {
	if out := Run(context.Background(), 4, 0, &fakeAttempter{}, nil); out != nil {
		t.Errorf("expected nil for count=0, got %v", out)
	}
}

func TestRunProgressCallbackFiresForEveryOutcome(t *testing.T) {
	var completedCalls int64
	progress := func(completed, total int) {
		atomic.AddInt64(&completedCalls, 1)
		if total != 10 {
			t.Errorf("total = %d, want 10", total)
		}
	}
	Run(context.Background(), 3, 10, &fakeAttempter{}, progress)
	if completedCalls != 10 {
		t.Errorf("progress called %d times, want 10", completedCalls)
	}
}

func TestRunRecoversPanicIntoFailedOutcome(t *testing.T) {
	outcomes := Run(context.Background(), 1, 3, panickingAttempter{}, nil)
	if len(outcomes) != 3 {
		t.Fatalf("len(outcomes) = %d, want 3", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Success {
			t.Error("a recovered panic must never be reported as success")
		}
		if o.Error == "" {
			t.Error("expected a non-empty error message for a recovered panic")
		}
	}
}
