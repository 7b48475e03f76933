// Package loadengine sequences a staged concurrency ramp: for each
// concurrency level in order, optionally idle for a ramp-up period, run a
// stage via stagerunner, analyze it, then optionally idle for a cool-down
// period before the next level.
package loadengine

import (
	"context"
	"time"

	"github.com/torosent/llmbench/internal/model"
	"github.com/torosent/llmbench/internal/stageanalyzer"
	"github.com/torosent/llmbench/internal/stagerunner"
)

// Plan describes one load test: the concurrency levels to sweep, the
// request count per level, and the idle windows between levels.
type Plan struct {
	ConcurrencyLevels []int
	RequestsPerLevel  int
	RampUp            time.Duration
	CoolDown          time.Duration
}

// StageProgressFunc reports progress within the stage currently running,
// identified by its concurrency level.
type StageProgressFunc func(concurrency, completed, total int)

// Run executes the plan's stages strictly sequentially — no two stages are
// ever in flight at once — and returns one model.Stage per level, in the
// input order.
func Run(ctx context.Context, plan Plan, attempter stagerunner.Attempter, progress StageProgressFunc) []model.Stage {
	stages := make([]model.Stage, 0, len(plan.ConcurrencyLevels))

	for i, concurrency := range plan.ConcurrencyLevels {
		if plan.RampUp > 0 {
			if !idle(ctx, plan.RampUp) {
				break
			}
		}

		var cb stagerunner.ProgressFunc
		if progress != nil {
			cb = func(completed, total int) { progress(concurrency, completed, total) }
		}
		attempts := stagerunner.Run(ctx, concurrency, plan.RequestsPerLevel, attempter, cb)
		stages = append(stages, stageanalyzer.Analyze(concurrency, attempts))

		isLast := i == len(plan.ConcurrencyLevels)-1
		if plan.CoolDown > 0 && !isLast {
			if !idle(ctx, plan.CoolDown) {
				break
			}
		}
	}

	return stages
}

// idle waits for d, returning false if the context is cancelled first.
func idle(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
