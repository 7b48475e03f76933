package sessionstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/torosent/llmbench/internal/model"
)

// SessionHeader is the summary row for one persisted session, as returned
// by ListSessions.
type SessionHeader struct {
	SessionID          string
	ProfileName        string
	ConfigName         string
	StartTime          time.Time
	EndTime            time.Time
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	AvgResponseTime    float64
	MaxConcurrent      int
	Metadata           map[string]string
}

// ListSessions returns up to limit session headers, newest-first by start
// time.
func (s *Store) ListSessions(limit int) ([]SessionHeader, error) {
	rows, err := s.db.Query(`
		SELECT session_id, api_name, test_config, start_time, end_time,
		       total_requests, successful_requests, failed_requests,
		       avg_response_time, max_concurrent, metadata
		FROM test_sessions
		ORDER BY start_time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionHeader
	for rows.Next() {
		var h SessionHeader
		var start, end float64
		var metadataJSON string
		if err := rows.Scan(&h.SessionID, &h.ProfileName, &h.ConfigName, &start, &end,
			&h.TotalRequests, &h.SuccessfulRequests, &h.FailedRequests,
			&h.AvgResponseTime, &h.MaxConcurrent, &metadataJSON); err != nil {
			return nil, fmt.Errorf("sessionstore: scan session row: %w", err)
		}
		h.StartTime = fromUnix(start)
		h.EndTime = fromUnix(end)
		h.Metadata = map[string]string{}
		if metadataJSON != "" {
			_ = json.Unmarshal([]byte(metadataJSON), &h.Metadata)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// LoadStages reconstructs every Stage Result for a session, ordered by
// concurrency level ascending, each populated with its Attempt Outcomes.
// Response-body text is never reconstructed: it was never stored.
func (s *Store) LoadStages(sessionID string) ([]model.Stage, error) {
	rows, err := s.db.Query(`
		SELECT concurrent_level, total_requests, successful_requests, failed_requests,
		       avg_response_time, min_response_time, max_response_time,
		       p50_response_time, p95_response_time, p99_response_time,
		       requests_per_second, total_test_time, error_rate, timeout_count,
		       total_tokens, avg_tokens_per_request, tokens_per_second
		FROM load_test_results
		WHERE session_id = ?
		ORDER BY concurrent_level ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: load stages: %w", err)
	}
	defer rows.Close()

	var stages []model.Stage
	for rows.Next() {
		var st model.Stage
		if err := rows.Scan(&st.Concurrency, &st.TotalCount, &st.SuccessCount, &st.FailedCount,
			&st.MeanLatency, &st.MinLatency, &st.MaxLatency,
			&st.P50Latency, &st.P95Latency, &st.P99Latency,
			&st.ThroughputRPS, &st.TotalTestTime, &st.ErrorRate, &st.TimeoutCount,
			&st.TotalTokens, &st.MeanTokens, &st.TokensPerSecond); err != nil {
			return nil, fmt.Errorf("sessionstore: scan stage row: %w", err)
		}
		stages = append(stages, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range stages {
		attempts, err := s.loadAttempts(sessionID, stages[i].Concurrency)
		if err != nil {
			return nil, err
		}
		stages[i].Attempts = attempts
	}
	return stages, nil
}

func (s *Store) loadAttempts(sessionID string, concurrency int) ([]model.Attempt, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, prompt, response_time, status_code, success, error_message,
		       input_tokens, output_tokens, total_tokens, content_length
		FROM request_results
		WHERE session_id = ? AND concurrent_level = ?
	`, sessionID, concurrency)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: load attempts: %w", err)
	}
	defer rows.Close()

	var out []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var ts float64
		if err := rows.Scan(&ts, &a.Prompt, &a.Latency, &a.StatusCode, &a.Success, &a.Error,
			&a.InputTokens, &a.OutputTokens, &a.TotalTokens, &a.BodyLen); err != nil {
			return nil, fmt.Errorf("sessionstore: scan attempt row: %w", err)
		}
		a.IssueTime = fromUnix(ts)
		out = append(out, a)
	}
	return out, rows.Err()
}

// NetworkStatsRow mirrors one row of the network_stats table for a session.
type NetworkStatsRow struct {
	Host            string
	Timestamp       time.Time
	TotalPings      int
	SuccessfulPings int
	SuccessRate     float64
	AvgResponseTime float64
	PacketLoss      float64
	Jitter          float64
}

// LoadNetworkStats returns the persisted reachability rows for a session.
func (s *Store) LoadNetworkStats(sessionID string) ([]NetworkStatsRow, error) {
	rows, err := s.db.Query(`
		SELECT host, timestamp, total_pings, successful_pings, success_rate,
		       avg_response_time, packet_loss, jitter
		FROM network_stats
		WHERE session_id = ?
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: load network stats: %w", err)
	}
	defer rows.Close()

	var out []NetworkStatsRow
	for rows.Next() {
		var r NetworkStatsRow
		var ts float64
		if err := rows.Scan(&r.Host, &ts, &r.TotalPings, &r.SuccessfulPings, &r.SuccessRate,
			&r.AvgResponseTime, &r.PacketLoss, &r.Jitter); err != nil {
			return nil, fmt.Errorf("sessionstore: scan network stats row: %w", err)
		}
		r.Timestamp = fromUnix(ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

func toUnix(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / 1e9
}

func fromUnix(secs float64) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(0, int64(secs*1e9))
}
