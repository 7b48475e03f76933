// Package stageanalyzer computes the derived statistics for one stage's
// collected Attempt Outcomes: counts, response-time percentiles, throughput,
// and token accounting. Percentiles use a manual linear-interpolation
// formula rather than any histogram library's definition, so the numbers
// persisted and reported are exactly reproducible from the raw attempts.
package stageanalyzer

import (
	"sort"

	"github.com/torosent/llmbench/internal/model"
)

const timeoutThresholdSeconds = 1200.0

// Analyze builds a model.Stage from the raw attempts of one concurrency
// level. An empty slice yields an all-zero Stage at the given concurrency.
func Analyze(concurrency int, attempts []model.Attempt) model.Stage {
	stage := model.Stage{
		Concurrency: concurrency,
		Attempts:    attempts,
		TotalCount:  len(attempts),
	}
	if len(attempts) == 0 {
		return stage
	}

	for _, a := range attempts {
		if a.Success {
			stage.SuccessCount++
		}
		if a.Latency > timeoutThresholdSeconds {
			stage.TimeoutCount++
		}
	}
	stage.FailedCount = stage.TotalCount - stage.SuccessCount
	stage.ErrorRate = float64(stage.FailedCount) / float64(stage.TotalCount)

	latencies := successfulLatencies(attempts)
	if len(latencies) > 0 {
		sort.Float64s(latencies)
		stage.MinLatency = latencies[0]
		stage.MaxLatency = latencies[len(latencies)-1]
		stage.MeanLatency = mean(latencies)
		stage.P50Latency = percentile(latencies, 50)
		stage.P95Latency = percentile(latencies, 95)
		stage.P99Latency = percentile(latencies, 99)
	}

	stage.TotalTestTime = totalTestTime(attempts)
	if stage.TotalTestTime > 0 {
		stage.ThroughputRPS = float64(stage.SuccessCount) / stage.TotalTestTime
	}

	var totalTokens int
	for _, a := range attempts {
		if a.Success {
			totalTokens += a.TotalTokens
		}
	}
	stage.TotalTokens = totalTokens
	if stage.SuccessCount > 0 {
		stage.MeanTokens = float64(totalTokens) / float64(stage.SuccessCount)
	}
	if stage.TotalTestTime > 0 {
		stage.TokensPerSecond = float64(totalTokens) / stage.TotalTestTime
	}

	return stage
}

// successfulLatencies collects latencies from the subset of attempts with
// success == true AND latency > 0.
func successfulLatencies(attempts []model.Attempt) []float64 {
	out := make([]float64, 0, len(attempts))
	for _, a := range attempts {
		if a.Success && a.Latency > 0 {
			out = append(out, a.Latency)
		}
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// percentile implements linear-interpolation percentiles over an ascending-
// sorted slice: k = (L-1)*p/100, f = floor(k), c = k-f; result is x[f] when
// f == L-1, else x[f]*(1-c) + x[f+1]*c.
func percentile(sorted []float64, p float64) float64 {
	l := len(sorted)
	if l == 0 {
		return 0
	}
	if l == 1 {
		return sorted[0]
	}
	k := float64(l-1) * p / 100
	f := int(k)
	c := k - float64(f)
	if f >= l-1 {
		return sorted[l-1]
	}
	return sorted[f]*(1-c) + sorted[f+1]*c
}

// totalTestTime is max(issue + latency) - min(issue) across ALL outcomes,
// success or not. It is 0 for an empty input.
func totalTestTime(attempts []model.Attempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	minIssue := attempts[0].IssueTime
	for _, a := range attempts {
		if a.IssueTime.Before(minIssue) {
			minIssue = a.IssueTime
		}
	}

	var maxEnd float64
	for _, a := range attempts {
		end := a.IssueTime.Sub(minIssue).Seconds() + a.Latency
		if end > maxEnd {
			maxEnd = end
		}
	}
	return maxEnd
}
