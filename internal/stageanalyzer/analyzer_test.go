package stageanalyzer

import (
	"testing"
	"time"

	"github.com/torosent/llmbench/internal/model"
)

func TestAnalyzeEmptyAttempts(t *testing.T) {
	stage := Analyze(4, nil)
	if stage.Concurrency != 4 || stage.TotalCount != 0 {
		t.Fatalf("unexpected empty stage: %+v", stage)
	}
}

func TestPercentileLinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	// k = (5-1)*50/100 = 2, f=2, c=0 -> sorted[2] = 3
	if got := percentile(sorted, 50); got != 3 {
		t.Errorf("p50 = %v, want 3", got)
	}
	// k = (5-1)*95/100 = 3.8, f=3, c=0.8 -> 4*0.2 + 5*0.8 = 4.8
	if got := percentile(sorted, 95); got < 4.79 || got > 4.81 {
		t.Errorf("p95 = %v, want ~4.8", got)
	}
}

func TestAnalyzeCountsAndErrorRate(t *testing.T) {
	base := time.Now()
	attempts := []model.Attempt{
		{IssueTime: base, Latency: 1.0, Success: true},
		{IssueTime: base, Latency: 2.0, Success: true},
		{IssueTime: base, Latency: 0.5, Success: false, Error: "boom"},
	}
	stage := Analyze(2, attempts)

	if stage.TotalCount != 3 || stage.SuccessCount != 2 || stage.FailedCount != 1 {
		t.Fatalf("unexpected counts: %+v", stage)
	}
	wantErrRate := 1.0 / 3.0
	if diff := stage.ErrorRate - wantErrRate; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("ErrorRate = %v, want %v", stage.ErrorRate, wantErrRate)
	}
	if stage.MinLatency != 1.0 || stage.MaxLatency != 2.0 {
		t.Errorf("latency bounds = [%v,%v]", stage.MinLatency, stage.MaxLatency)
	}
}

func TestAnalyzeTimeoutThreshold(t *testing.T) {
	base := time.Now()
	attempts := []model.Attempt{
		{IssueTime: base, Latency: 1201, Success: true},
		{IssueTime: base, Latency: 5, Success: true},
	}
	stage := Analyze(1, attempts)
	if stage.TimeoutCount != 1 {
		t.Errorf("TimeoutCount = %d, want 1", stage.TimeoutCount)
	}
}

func TestAnalyzeThroughputAndTokens(t *testing.T) {
	base := time.Now()
	attempts := []model.Attempt{
		{IssueTime: base, Latency: 1.0, Success: true, TotalTokens: 100},
		{IssueTime: base.Add(1 * time.Second), Latency: 1.0, Success: true, TotalTokens: 50},
	}
	stage := Analyze(1, attempts)

	// totalTestTime = max(issue-offset + latency) - min(issue) = (1 + 1) - 0 = 2
	if stage.TotalTestTime != 2 {
		t.Fatalf("TotalTestTime = %v, want 2", stage.TotalTestTime)
	}
	if stage.ThroughputRPS != 1.0 {
		t.Errorf("ThroughputRPS = %v, want 1.0", stage.ThroughputRPS)
	}
	if stage.TotalTokens != 150 {
		t.Errorf("TotalTokens = %d, want 150", stage.TotalTokens)
	}
	if stage.TokensPerSecond != 75 {
		t.Errorf("TokensPerSecond = %v, want 75", stage.TokensPerSecond)
	}
}

func TestAnalyzeExcludesZeroLatencyAndFailuresFromPercentiles(t *testing.T) {
	base := time.Now()
	attempts := []model.Attempt{
		{IssueTime: base, Latency: 0, Success: true},
		{IssueTime: base, Latency: 10, Success: false},
		{IssueTime: base, Latency: 3, Success: true},
	}
	stage := Analyze(1, attempts)
	if stage.MeanLatency != 3 {
		t.Errorf("MeanLatency = %v, want 3 (only the one valid successful sample)", stage.MeanLatency)
	}
	if stage.P50Latency != 3 || stage.P99Latency != 3 {
		t.Errorf("P50/P99 = %v/%v, want 3 (only the one valid successful sample)", stage.P50Latency, stage.P99Latency)
	}
}
