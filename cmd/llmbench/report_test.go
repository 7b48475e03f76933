package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/torosent/llmbench/internal/sessionanalyzer"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read pipe: %v", err)
	}
	return string(out)
}

func TestPrintSummaryNoDataPlainText(t *testing.T) {
	out := captureStdout(t, func() {
		printSummary("01SESSION0000000000000000", sessionanalyzer.Summary{HasData: false}, false)
	})
	if !strings.Contains(out, "no stages recorded") {
		t.Errorf("output = %q, want a no-data notice", out)
	}
}

func TestPrintSummaryPlainTextIncludesTopErrors(t *testing.T) {
	summary := sessionanalyzer.Summary{
		HasData:           true,
		TotalRequests:     10,
		SuccessfulRequests: 8,
		FailedRequests:    2,
		SuccessRate:       0.8,
		ErrorDistribution: []sessionanalyzer.ErrorCount{
			{Message: "connection refused", Count: 2},
		},
	}
	out := captureStdout(t, func() {
		printSummary("01SESSION0000000000000000", summary, false)
	})
	if !strings.Contains(out, "connection refused") {
		t.Errorf("output = %q, want top error listed", out)
	}
	if !strings.Contains(out, "success rate:   80.00%") {
		t.Errorf("output = %q, want formatted success rate", out)
	}
}

func TestPrintSummaryJSONEmbedsSessionID(t *testing.T) {
	out := captureStdout(t, func() {
		printSummary("01SESSION0000000000000000", sessionanalyzer.Summary{HasData: true, TotalRequests: 5}, true)
	})

	var decoded struct {
		SessionID     string `json:"session_id"`
		TotalRequests int    `json:"TotalRequests"`
	}
	if err := json.Unmarshal(bytes.TrimSpace([]byte(out)), &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v\noutput: %s", err, out)
	}
	if decoded.SessionID != "01SESSION0000000000000000" {
		t.Errorf("SessionID = %q, want the passed session ID", decoded.SessionID)
	}
}

func TestSuccessPercent(t *testing.T) {
	if got := successPercent(0, 0); got != 0 {
		t.Errorf("successPercent(0, 0) = %v, want 0", got)
	}
	if got := successPercent(3, 4); got != 75 {
		t.Errorf("successPercent(3, 4) = %v, want 75", got)
	}
}
