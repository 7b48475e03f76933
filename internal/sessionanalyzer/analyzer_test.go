package sessionanalyzer

import (
	"testing"

	"github.com/torosent/llmbench/internal/model"
)

func TestEfficiencyScore(t *testing.T) {
	s := model.Stage{ThroughputRPS: 10, MeanLatency: 0.9}
	got := efficiencyScore(s)
	want := 10.0 / 1.0
	if got != want {
		t.Errorf("efficiencyScore = %v, want %v", got, want)
	}
}

func TestLeastSquaresSlopeSignsDirection(t *testing.T) {
	if slope := leastSquaresSlope([]float64{1, 2, 3, 4}); slope <= 0 {
		t.Errorf("increasing series should have positive slope, got %v", slope)
	}
	if slope := leastSquaresSlope([]float64{4, 3, 2, 1}); slope >= 0 {
		t.Errorf("decreasing series should have negative slope, got %v", slope)
	}
	if slope := leastSquaresSlope([]float64{5}); slope != 0 {
		t.Errorf("single point should yield slope 0, got %v", slope)
	}
}

func TestRunningMean(t *testing.T) {
	mean := 0.0
	mean = runningMean(mean, 0, 10)
	if mean != 10 {
		t.Fatalf("after 1st sample, mean = %v, want 10", mean)
	}
	mean = runningMean(mean, 1, 20)
	if mean != 15 {
		t.Fatalf("after 2nd sample, mean = %v, want 15", mean)
	}
}

func TestRankAscendingAndDescending(t *testing.T) {
	stats := []APIStat{
		{ProfileName: "slow", MeanLatency: 3, MeanSuccessRate: 0.9},
		{ProfileName: "fast", MeanLatency: 1, MeanSuccessRate: 0.5},
		{ProfileName: "mid", MeanLatency: 2, MeanSuccessRate: 0.99},
	}
	latencyRank := rankAscending(stats, func(s APIStat) float64 { return s.MeanLatency })
	if latencyRank[1] != 1 { // "fast" has the lowest latency -> rank 1
		t.Errorf("fast's latency rank = %v, want 1", latencyRank[1])
	}
	successRank := rankDescending(stats, func(s APIStat) float64 { return s.MeanSuccessRate })
	if successRank[2] != 1 { // "mid" has the highest success rate -> rank 1
		t.Errorf("mid's success rank = %v, want 1", successRank[2])
	}
}

func TestWindowCutoffZeroMeansNoFilter(t *testing.T) {
	if cutoff := windowCutoff(0); !cutoff.IsZero() {
		t.Errorf("windowCutoff(0) = %v, want zero time (no filtering)", cutoff)
	}
}
