// Package stagerunner drives N executions of the Request Executor at a
// fixed concurrency level, batching dispatch and collecting outcomes.
package stagerunner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/torosent/llmbench/internal/model"
)

// Attempter is satisfied by *executor.Executor; accepting the interface
// keeps this package independent of the executor package's internals.
type Attempter interface {
	Execute(ctx context.Context) model.Attempt
}

// ProgressFunc is invoked after each outcome is recorded with
// (completed, total). Implementations must not block — the runner calls it
// synchronously from a worker goroutine and waits for it to return, so a
// slow callback would stall collection.
type ProgressFunc func(completed, total int)

const maxBatchSize = 100

// Run executes count requests at the given concurrency, bounded by a
// counting semaphore of that capacity, and returns exactly count outcomes
// in arbitrary order. Dispatch happens in batches of min(2*concurrency,
// 100); each batch is awaited before the next begins.
func Run(ctx context.Context, concurrency, count int, attempter Attempter, progress ProgressFunc) []model.Attempt {
	if count <= 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	batchSize := concurrency * 2
	if batchSize > maxBatchSize {
		batchSize = maxBatchSize
	}
	if batchSize < 1 {
		batchSize = 1
	}

	outcomes := make([]model.Attempt, 0, count)
	sem := make(chan struct{}, concurrency)
	var completed int64

	for offset := 0; offset < count; offset += batchSize {
		batchN := batchSize
		if offset+batchN > count {
			batchN = count - offset
		}

		results := make([]model.Attempt, batchN)
		var wg sync.WaitGroup
		wg.Add(batchN)
		for i := 0; i < batchN; i++ {
			i := i
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				results[i] = runOne(ctx, attempter)
				done := atomic.AddInt64(&completed, 1)
				if progress != nil {
					progress(int(done), count)
				}
			}()
		}
		wg.Wait()

		outcomes = append(outcomes, results...)
	}

	return outcomes
}

// runOne executes a single attempt, recovering a panic escaping the
// attempter into a synthesized failed outcome so the caller always gets
// exactly one Attempt per request slot.
func runOne(ctx context.Context, attempter Attempter) (outcome model.Attempt) {
	defer func() {
		if r := recover(); r != nil {
			outcome = model.Attempt{
				IssueTime: time.Now(),
				Latency:   0,
				Error:     panicMessage(r),
			}
		}
	}()
	return attempter.Execute(ctx)
}

func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return "panic: " + toString(r)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "non-string panic value"
}
