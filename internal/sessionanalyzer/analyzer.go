// Package sessionanalyzer computes cross-stage and cross-session analyses
// over data read back from a sessionstore.Store: per-session summaries,
// concurrency-impact scoring, multi-day trends, and API comparisons.
package sessionanalyzer

import (
	"sort"
	"time"

	"github.com/torosent/llmbench/internal/model"
	"github.com/torosent/llmbench/internal/sessionstore"
)

func windowCutoff(days int) time.Time {
	if days <= 0 {
		return time.Time{}
	}
	return time.Now().Add(-time.Duration(days) * 24 * time.Hour)
}

// Analyzer reads back persisted sessions to compute derived reports.
type Analyzer struct {
	store *sessionstore.Store
}

// New builds an Analyzer over an already-open Store.
func New(store *sessionstore.Store) *Analyzer {
	return &Analyzer{store: store}
}

// ErrorCount is one entry of a ranked error distribution.
type ErrorCount struct {
	Message string
	Count   int
}

// Summary totals a session's stages and ranks its error distribution.
type Summary struct {
	HasData            bool
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	SuccessRate        float64
	MinLatency         float64
	MeanLatency        float64
	MaxLatency         float64
	MeanP95Latency     float64
	TotalTokens        int
	TotalTimeouts      int
	ErrorDistribution  []ErrorCount
}

// Summarize builds a Summary for sessionID. An unknown or empty session
// yields a Summary with HasData=false, never an error.
func (a *Analyzer) Summarize(sessionID string) (Summary, error) {
	stages, err := a.store.LoadStages(sessionID)
	if err != nil {
		return Summary{}, err
	}
	if len(stages) == 0 {
		return Summary{}, nil
	}

	var s Summary
	s.HasData = true
	var sumMean, sumP95 float64
	var meanSamples, p95Samples int
	for i, stage := range stages {
		s.TotalRequests += stage.TotalCount
		s.SuccessfulRequests += stage.SuccessCount
		s.FailedRequests += stage.FailedCount
		s.TotalTokens += stage.TotalTokens
		s.TotalTimeouts += stage.TimeoutCount
		if stage.MeanLatency > 0 {
			sumMean += stage.MeanLatency
			meanSamples++
		}
		if stage.P95Latency > 0 {
			sumP95 += stage.P95Latency
			p95Samples++
		}
		if i == 0 || stage.MinLatency < s.MinLatency {
			s.MinLatency = stage.MinLatency
		}
		if stage.MaxLatency > s.MaxLatency {
			s.MaxLatency = stage.MaxLatency
		}
	}
	if s.TotalRequests > 0 {
		s.SuccessRate = float64(s.SuccessfulRequests) / float64(s.TotalRequests)
	}
	if meanSamples > 0 {
		s.MeanLatency = sumMean / float64(meanSamples)
	}
	if p95Samples > 0 {
		s.MeanP95Latency = sumP95 / float64(p95Samples)
	}

	errCounts := map[string]int{}
	for _, stage := range stages {
		for _, attempt := range stage.Attempts {
			if attempt.Success || attempt.Error == "" {
				continue
			}
			errCounts[attempt.Error]++
		}
	}
	for msg, count := range errCounts {
		s.ErrorDistribution = append(s.ErrorDistribution, ErrorCount{Message: msg, Count: count})
	}
	sort.Slice(s.ErrorDistribution, func(i, j int) bool {
		return s.ErrorDistribution[i].Count > s.ErrorDistribution[j].Count
	})

	return s, nil
}

// ConcurrencyImpact is the concurrency-sweep analysis for one session.
type ConcurrencyImpact struct {
	HasData              bool
	Stages               []model.Stage
	OptimalConcurrency   model.Stage // max efficiency score
	ThroughputPeak       model.Stage // max RPS
	LatencyFloor         model.Stage // min mean latency
	HasThroughputDecline bool
	ThroughputDecline    model.Stage
}

// AnalyzeConcurrencyImpact scores each stage's efficiency (rps / (mean
// latency + 0.1)) and reports the optimal, throughput-peak, and
// latency-floor stages, plus the throughput-decline point: the stage just
// before the first stage i (i>=1) whose rps falls below 95% of the previous
// stage's.
func (a *Analyzer) AnalyzeConcurrencyImpact(sessionID string) (ConcurrencyImpact, error) {
	stages, err := a.store.LoadStages(sessionID)
	if err != nil {
		return ConcurrencyImpact{}, err
	}
	if len(stages) == 0 {
		return ConcurrencyImpact{}, nil
	}

	impact := ConcurrencyImpact{HasData: true, Stages: stages}
	bestScore := efficiencyScore(stages[0])
	impact.OptimalConcurrency = stages[0]
	impact.ThroughputPeak = stages[0]
	impact.LatencyFloor = stages[0]

	for _, stage := range stages[1:] {
		if score := efficiencyScore(stage); score > bestScore {
			bestScore = score
			impact.OptimalConcurrency = stage
		}
		if stage.ThroughputRPS > impact.ThroughputPeak.ThroughputRPS {
			impact.ThroughputPeak = stage
		}
		if stage.MeanLatency < impact.LatencyFloor.MeanLatency {
			impact.LatencyFloor = stage
		}
	}

	if len(stages) > 1 {
		for i := 1; i < len(stages); i++ {
			if stages[i].ThroughputRPS < 0.95*stages[i-1].ThroughputRPS {
				impact.HasThroughputDecline = true
				impact.ThroughputDecline = stages[i-1]
				break
			}
		}
	}

	return impact, nil
}

func efficiencyScore(s model.Stage) float64 {
	return s.ThroughputRPS / (s.MeanLatency + 0.1)
}

// DayPoint is one day's aggregate across sessions, for Trend.
type DayPoint struct {
	Date            string
	MeanLatency     float64
	MeanSuccessRate float64
	TestCount       int
}

// Trend direction classification.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDegrading Trend = "degrading"
	TrendUnknown   Trend = "unknown" // fewer than 2 data points
)

// TrendReport summarizes per-day aggregates and their slope-derived trend.
type TrendReport struct {
	HasData           bool
	Days              []DayPoint
	ResponseTimeTrend Trend
	SuccessRateTrend  Trend
	MeanResponseTime  float64
	MeanSuccessRate   float64
	TotalTests        int
}

// AnalyzeTrend groups session headers by calendar day (optionally filtered
// by profile name), then classifies the slope of mean latency and mean
// success rate across days via the sign of a least-squares fit.
func (a *Analyzer) AnalyzeTrend(profileName string, windowDays int) (TrendReport, error) {
	headers, err := a.store.ListSessions(10000)
	if err != nil {
		return TrendReport{}, err
	}

	cutoff := windowCutoff(windowDays)
	byDay := map[string]*DayPoint{}
	var order []string
	for _, h := range headers {
		if h.StartTime.Before(cutoff) {
			continue
		}
		if profileName != "" && h.ProfileName != profileName {
			continue
		}
		day := h.StartTime.Format("2006-01-02")
		dp, ok := byDay[day]
		if !ok {
			dp = &DayPoint{Date: day}
			byDay[day] = dp
			order = append(order, day)
		}
		successRate := 0.0
		if h.TotalRequests > 0 {
			successRate = float64(h.SuccessfulRequests) / float64(h.TotalRequests)
		}
		dp.MeanLatency = runningMean(dp.MeanLatency, dp.TestCount, h.AvgResponseTime)
		dp.MeanSuccessRate = runningMean(dp.MeanSuccessRate, dp.TestCount, successRate)
		dp.TestCount++
	}

	if len(order) == 0 {
		return TrendReport{}, nil
	}
	sort.Strings(order)

	report := TrendReport{HasData: true}
	var latencySeries, successSeries []float64
	var totalTests int
	var sumLatency, sumSuccess float64
	for _, day := range order {
		dp := *byDay[day]
		report.Days = append(report.Days, dp)
		latencySeries = append(latencySeries, dp.MeanLatency)
		successSeries = append(successSeries, dp.MeanSuccessRate)
		totalTests += dp.TestCount
		sumLatency += dp.MeanLatency
		sumSuccess += dp.MeanSuccessRate
	}
	report.TotalTests = totalTests
	report.MeanResponseTime = sumLatency / float64(len(order))
	report.MeanSuccessRate = sumSuccess / float64(len(order))

	report.ResponseTimeTrend = TrendUnknown
	report.SuccessRateTrend = TrendUnknown
	if len(order) > 1 {
		if slope := leastSquaresSlope(latencySeries); slope < 0 {
			report.ResponseTimeTrend = TrendImproving
		} else {
			report.ResponseTimeTrend = TrendDegrading
		}
		if slope := leastSquaresSlope(successSeries); slope > 0 {
			report.SuccessRateTrend = TrendImproving
		} else {
			report.SuccessRateTrend = TrendDegrading
		}
	}

	return report, nil
}

// APIStat is one profile's aggregate across sessions, for APIComparison.
type APIStat struct {
	ProfileName     string
	MeanLatency     float64
	MeanSuccessRate float64
	TestCount       int
	OverallRank     float64
}

// APIComparison ranks profiles by mean latency and mean success rate.
type APIComparison struct {
	HasData      bool
	Stats        []APIStat
	BestOverall  APIStat
	Fastest      APIStat
	MostReliable APIStat
}

// CompareAPIs aggregates sessions within windowDays by profile name and
// ranks them: by mean latency ascending, by mean success rate descending,
// then averages the two per-profile ranks into an overall rank.
func (a *Analyzer) CompareAPIs(windowDays int) (APIComparison, error) {
	headers, err := a.store.ListSessions(10000)
	if err != nil {
		return APIComparison{}, err
	}

	cutoff := windowCutoff(windowDays)
	byProfile := map[string]*APIStat{}
	var order []string
	for _, h := range headers {
		if h.StartTime.Before(cutoff) {
			continue
		}
		stat, ok := byProfile[h.ProfileName]
		if !ok {
			stat = &APIStat{ProfileName: h.ProfileName}
			byProfile[h.ProfileName] = stat
			order = append(order, h.ProfileName)
		}
		successRate := 0.0
		if h.TotalRequests > 0 {
			successRate = float64(h.SuccessfulRequests) / float64(h.TotalRequests)
		}
		stat.MeanLatency = runningMean(stat.MeanLatency, stat.TestCount, h.AvgResponseTime)
		stat.MeanSuccessRate = runningMean(stat.MeanSuccessRate, stat.TestCount, successRate)
		stat.TestCount++
	}

	if len(order) == 0 {
		return APIComparison{}, nil
	}

	stats := make([]APIStat, 0, len(order))
	for _, name := range order {
		stats = append(stats, *byProfile[name])
	}

	latencyRank := rankAscending(stats, func(s APIStat) float64 { return s.MeanLatency })
	successRank := rankDescending(stats, func(s APIStat) float64 { return s.MeanSuccessRate })
	for i := range stats {
		stats[i].OverallRank = (latencyRank[i] + successRank[i]) / 2
	}

	comparison := APIComparison{HasData: true, Stats: stats}
	comparison.BestOverall = stats[0]
	comparison.Fastest = stats[0]
	comparison.MostReliable = stats[0]
	for _, s := range stats[1:] {
		if s.OverallRank < comparison.BestOverall.OverallRank {
			comparison.BestOverall = s
		}
		if s.MeanLatency < comparison.Fastest.MeanLatency {
			comparison.Fastest = s
		}
		if s.MeanSuccessRate > comparison.MostReliable.MeanSuccessRate {
			comparison.MostReliable = s
		}
	}
	return comparison, nil
}

func runningMean(mean float64, n int, next float64) float64 {
	return (mean*float64(n) + next) / float64(n+1)
}

func leastSquaresSlope(ys []float64) float64 {
	n := float64(len(ys))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// rankAscending assigns 1-based ranks, smallest value first.
func rankAscending(stats []APIStat, key func(APIStat) float64) []float64 {
	return rank(stats, key, true)
}

// rankDescending assigns 1-based ranks, largest value first.
func rankDescending(stats []APIStat, key func(APIStat) float64) []float64 {
	return rank(stats, key, false)
}

func rank(stats []APIStat, key func(APIStat) float64, ascending bool) []float64 {
	type indexed struct {
		idx   int
		value float64
	}
	xs := make([]indexed, len(stats))
	for i, s := range stats {
		xs[i] = indexed{idx: i, value: key(s)}
	}
	sort.Slice(xs, func(i, j int) bool {
		if ascending {
			return xs[i].value < xs[j].value
		}
		return xs[i].value > xs[j].value
	})
	out := make([]float64, len(stats))
	for pos, x := range xs {
		out[x.idx] = float64(pos + 1)
	}
	return out
}
