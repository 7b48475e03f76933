package hostprobe

import "testing"

func TestJitterMeanAbsoluteFirstDifference(t *testing.T) {
	// diffs: |20-10|=10, |15-20|=5, |25-15|=10 -> mean = 25/3
	got := jitter([]float64{10, 20, 15, 25})
	want := 25.0 / 3.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("jitter = %v, want %v", got, want)
	}
}

func TestJitterSingleSampleIsZero(t *testing.T) {
	if got := jitter([]float64{42}); got != 0 {
		t.Errorf("jitter of single sample = %v, want 0", got)
	}
}

func TestStdDevUniformSeriesIsZero(t *testing.T) {
	if got := stdDev([]float64{5, 5, 5}, 5); got != 0 {
		t.Errorf("stdDev of uniform series = %v, want 0", got)
	}
}

func TestAggregateOfUnknownHostIsEmpty(t *testing.T) {
	p := New(0, 0)
	agg := p.Aggregate("never-probed.example.com")
	if agg.Total != 0 {
		t.Errorf("Total = %d, want 0", agg.Total)
	}
}

func TestSplitHostPort(t *testing.T) {
	host, port := splitHostPort("example.com:8080", "80")
	if host != "example.com" || port != "8080" {
		t.Errorf("splitHostPort = (%q, %q)", host, port)
	}
	host, port = splitHostPort("example.com", "80")
	if host != "example.com" || port != "80" {
		t.Errorf("splitHostPort without port = (%q, %q), want default port", host, port)
	}
}
