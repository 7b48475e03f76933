package livestats

import (
	"testing"

	"github.com/torosent/llmbench/internal/model"
)

func TestSnapshotEmptyCollectorHasNoLatencyData(t *testing.T) {
	c := New()
	snap := c.Snapshot()
	if snap.Total != 0 || snap.Successes != 0 || snap.Failures != 0 {
		t.Fatalf("snapshot of empty collector = %+v, want all zero", snap)
	}
	if snap.P50LatencyMs != 0 || snap.P99LatencyMs != 0 {
		t.Errorf("empty collector reported nonzero percentiles: %+v", snap)
	}
}

func TestRecordTracksSuccessAndFailureCounts(t *testing.T) {
	c := New()
	c.Record(model.Attempt{Success: true, Latency: 0.1})
	c.Record(model.Attempt{Success: true, Latency: 0.2})
	c.Record(model.Attempt{Success: false, Latency: 0.05})

	snap := c.Snapshot()
	if snap.Total != 3 {
		t.Errorf("Total = %d, want 3", snap.Total)
	}
	if snap.Successes != 2 {
		t.Errorf("Successes = %d, want 2", snap.Successes)
	}
	if snap.Failures != 1 {
		t.Errorf("Failures = %d, want 1", snap.Failures)
	}
}

func TestRecordMinMaxLatencyBounds(t *testing.T) {
	c := New()
	c.Record(model.Attempt{Success: true, Latency: 0.5})
	c.Record(model.Attempt{Success: true, Latency: 0.1})
	c.Record(model.Attempt{Success: true, Latency: 0.9})

	snap := c.Snapshot()
	if snap.MinLatencyMs < 99 || snap.MinLatencyMs > 101 {
		t.Errorf("MinLatencyMs = %v, want ~100", snap.MinLatencyMs)
	}
	if snap.MaxLatencyMs < 899 || snap.MaxLatencyMs > 901 {
		t.Errorf("MaxLatencyMs = %v, want ~900", snap.MaxLatencyMs)
	}
}

func TestRecordZeroLatencyDoesNotCorruptMin(t *testing.T) {
	c := New()
	c.Record(model.Attempt{Success: false, Latency: 0})
	c.Record(model.Attempt{Success: true, Latency: 0.2})

	snap := c.Snapshot()
	if snap.MinLatencyMs < 199 || snap.MinLatencyMs > 201 {
		t.Errorf("MinLatencyMs = %v, want ~200 (the zero-latency failure should not win the min)", snap.MinLatencyMs)
	}
}

func TestSnapshotPercentilesFallWithinObservedRange(t *testing.T) {
	c := New()
	for i := 0; i < 100; i++ {
		latency := 0.05
		if i >= 95 {
			latency = 0.5
		}
		c.Record(model.Attempt{Success: true, Latency: latency})
	}

	snap := c.Snapshot()
	if snap.P50LatencyMs < 40 || snap.P50LatencyMs > 60 {
		t.Errorf("P50LatencyMs = %v, want ~50", snap.P50LatencyMs)
	}
	if snap.P99LatencyMs < 400 {
		t.Errorf("P99LatencyMs = %v, want it to reflect the tail of slow requests", snap.P99LatencyMs)
	}
}
