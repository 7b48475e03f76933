package main

import (
	"encoding/json"
	"fmt"

	"github.com/torosent/llmbench/internal/sessionanalyzer"
)

// printSummary renders a sessionanalyzer.Summary to stdout, either as a short
// plain-text report or as indented JSON.
func printSummary(sessionID string, s sessionanalyzer.Summary, jsonOutput bool) {
	if jsonOutput {
		out := struct {
			SessionID string `json:"session_id"`
			sessionanalyzer.Summary
		}{SessionID: sessionID, Summary: s}
		enc, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(enc))
		return
	}

	fmt.Printf("session:        %s\n", sessionID)
	if !s.HasData {
		fmt.Println("no stages recorded")
		return
	}
	fmt.Printf("total requests: %d\n", s.TotalRequests)
	fmt.Printf("successful:     %d\n", s.SuccessfulRequests)
	fmt.Printf("failed:         %d\n", s.FailedRequests)
	fmt.Printf("success rate:   %.2f%%\n", s.SuccessRate*100)
	fmt.Printf("latency (s):    min=%.3f mean=%.3f max=%.3f p95=%.3f\n",
		s.MinLatency, s.MeanLatency, s.MaxLatency, s.MeanP95Latency)
	fmt.Printf("total tokens:   %d\n", s.TotalTokens)
	fmt.Printf("timeouts:       %d\n", s.TotalTimeouts)
	if len(s.ErrorDistribution) > 0 {
		fmt.Println("top errors:")
		for i, e := range s.ErrorDistribution {
			if i >= 5 {
				break
			}
			fmt.Printf("  %4d  %s\n", e.Count, e.Message)
		}
	}
}
