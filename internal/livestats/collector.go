// Package livestats mirrors incoming Attempt Outcomes into a live-updating
// view of a run in progress. It is a secondary, non-authoritative collector:
// the numbers it reports are for the operator's terminal only. The Stage
// Analyzer's linear-interpolation percentiles, computed once a stage
// finishes, remain the only figures ever persisted or used for analysis.
package livestats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/torosent/llmbench/internal/model"
)

// Collector accumulates a running view of attempts as they complete.
type Collector struct {
	mu         sync.Mutex
	hist       *hdrhistogram.Histogram
	successes  int64
	failures   int64
	minLatency time.Duration
	maxLatency time.Duration
	sumLatency time.Duration
	start      time.Time
}

// Snapshot is a point-in-time read of the collector's running totals.
type Snapshot struct {
	Total          int64
	Successes      int64
	Failures       int64
	MinLatencyMs   float64
	MaxLatencyMs   float64
	MeanLatencyMs  float64
	P50LatencyMs   float64
	P90LatencyMs   float64
	P99LatencyMs   float64
	RequestsPerSec float64
}

// New builds a Collector tracking latencies from 1us to 60s.
func New() *Collector {
	return &Collector{
		hist:  hdrhistogram.New(1, 60_000_000, 3),
		start: time.Now(),
	}
}

// Record mirrors one completed attempt into the running histogram.
func (c *Collector) Record(a model.Attempt) {
	c.mu.Lock()
	defer c.mu.Unlock()

	latency := time.Duration(a.Latency * float64(time.Second))
	if latency > 0 {
		us := latency.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	}
	c.sumLatency += latency
	if latency > 0 && (c.minLatency == 0 || latency < c.minLatency) {
		c.minLatency = latency
	}
	if latency > c.maxLatency {
		c.maxLatency = latency
	}

	if a.Success {
		c.successes++
	} else {
		c.failures++
	}
}

// Snapshot reports the collector's state as of now.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.successes + c.failures
	s := Snapshot{Total: total, Successes: c.successes, Failures: c.failures}

	if total > 0 {
		mean := time.Duration(int64(c.sumLatency) / total)
		s.MeanLatencyMs = msOf(mean)
	}
	s.MinLatencyMs = msOf(c.minLatency)
	s.MaxLatencyMs = msOf(c.maxLatency)

	if c.hist.TotalCount() > 0 {
		s.P50LatencyMs = msOf(time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond)
		s.P90LatencyMs = msOf(time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond)
		s.P99LatencyMs = msOf(time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond)
	}

	elapsed := time.Since(c.start)
	if elapsed > 0 && total > 0 {
		s.RequestsPerSec = float64(total) / elapsed.Seconds()
	}
	return s
}

func msOf(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
