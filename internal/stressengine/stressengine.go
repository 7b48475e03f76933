// Package stressengine runs time-bounded continuous load at a fixed
// concurrency level: C long-lived workers share a counting semaphore of
// capacity C, each issuing one request at a time until the deadline passes.
package stressengine

import (
	"context"
	"sync"
	"time"

	"github.com/torosent/llmbench/internal/model"
	"github.com/torosent/llmbench/internal/stageanalyzer"
	"github.com/torosent/llmbench/internal/stagerunner"
)

// ProgressFunc is invoked roughly every 100ms with the number of outcomes
// collected so far. Must not block.
type ProgressFunc func(collected int)

// Run drives concurrency workers against attempter for duration, then
// returns the analyzed model.Stage for that concurrency level.
//
// Each worker checks the deadline both before acquiring the semaphore and
// again immediately after, so a worker that was queued when the deadline
// passed never issues a request past it. After the deadline, the engine
// awaits all in-flight executions and ignores any outcome produced past the
// cutoff only in the sense that it was already recorded — outcomes in
// flight at the deadline are kept, new ones are not started.
func Run(ctx context.Context, concurrency int, duration time.Duration, attempter stagerunner.Attempter, progress ProgressFunc) model.Stage {
	if concurrency < 1 {
		concurrency = 1
	}

	deadline := time.Now().Add(duration)
	sem := make(chan struct{}, concurrency)

	var mu sync.Mutex
	var outcomes []model.Attempt

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			worker(ctx, deadline, sem, attempter, &mu, &outcomes)
		}()
	}

	monitorDone := make(chan struct{})
	if progress != nil {
		go func() {
			defer close(monitorDone)
			ticker := time.NewTicker(100 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					n := len(outcomes)
					mu.Unlock()
					progress(n)
					if time.Now().After(deadline) {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		close(monitorDone)
	}

	wg.Wait()
	<-monitorDone

	mu.Lock()
	final := outcomes
	mu.Unlock()

	return stageanalyzer.Analyze(concurrency, final)
}

func worker(ctx context.Context, deadline time.Time, sem chan struct{}, attempter stagerunner.Attempter, mu *sync.Mutex, outcomes *[]model.Attempt) {
	for {
		if time.Now().After(deadline) || ctx.Err() != nil {
			return
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		if time.Now().After(deadline) {
			<-sem
			return
		}

		outcome := attempter.Execute(ctx)
		<-sem

		mu.Lock()
		*outcomes = append(*outcomes, outcome)
		mu.Unlock()
	}
}
