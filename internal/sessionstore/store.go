// Package sessionstore persists load/stress test sessions to a SQLite
// database: a header row per session, stage aggregates, per-attempt detail
// rows (response bodies dropped), and reachability aggregates.
package sessionstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gofrs/flock"

	"github.com/torosent/llmbench/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS test_sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT UNIQUE,
	api_name TEXT,
	test_config TEXT,
	start_time REAL,
	end_time REAL,
	total_requests INTEGER,
	successful_requests INTEGER,
	failed_requests INTEGER,
	avg_response_time REAL,
	max_concurrent INTEGER,
	metadata TEXT
);
CREATE TABLE IF NOT EXISTS load_test_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT,
	concurrent_level INTEGER,
	total_requests INTEGER,
	successful_requests INTEGER,
	failed_requests INTEGER,
	avg_response_time REAL,
	min_response_time REAL,
	max_response_time REAL,
	p50_response_time REAL,
	p95_response_time REAL,
	p99_response_time REAL,
	requests_per_second REAL,
	total_test_time REAL,
	error_rate REAL,
	timeout_count INTEGER,
	total_tokens INTEGER,
	avg_tokens_per_request REAL,
	tokens_per_second REAL
);
CREATE TABLE IF NOT EXISTS request_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT,
	concurrent_level INTEGER,
	timestamp REAL,
	prompt TEXT,
	response_time REAL,
	status_code INTEGER,
	success BOOLEAN,
	error_message TEXT,
	input_tokens INTEGER,
	output_tokens INTEGER,
	total_tokens INTEGER,
	content_length INTEGER
);
CREATE TABLE IF NOT EXISTS network_stats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT,
	host TEXT,
	timestamp REAL,
	total_pings INTEGER,
	successful_pings INTEGER,
	success_rate REAL,
	avg_response_time REAL,
	packet_loss REAL,
	jitter REAL
);
`

// Store wraps a SQLite database file. A sibling *.lock file, managed with
// gofrs/flock, serializes writers across processes sharing the same file —
// database/sql already serializes writers within one process.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
}

// Open creates (if needed) the schema at path and returns a ready Store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sessionstore: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sessionstore: init schema: %w", err)
	}
	return &Store{db: db, lock: flock.New(path + ".lock")}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSession persists one session atomically: the header row is upserted
// (INSERT OR REPLACE), stage and per-attempt rows are inserted fresh, all
// inside one transaction. Repeated calls with the same session ID replace
// the header and first delete the earlier stage/request/network rows, so
// only the last write's detail rows remain.
func (s *Store) SaveSession(session model.Session) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("sessionstore: acquire write lock: %w", err)
	}
	defer s.lock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sessionstore: begin transaction: %w", err)
	}
	defer tx.Rollback()

	totalRequests, successRequests, failedRequests, avgResponseTime, maxConcurrent := summarize(session.Stages)

	metadataJSON, err := json.Marshal(session.Metadata)
	if err != nil {
		return fmt.Errorf("sessionstore: marshal metadata: %w", err)
	}

	if err := deleteSessionRows(tx, session.SessionID); err != nil {
		return err
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO test_sessions
		(session_id, api_name, test_config, start_time, end_time,
		 total_requests, successful_requests, failed_requests,
		 avg_response_time, max_concurrent, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, session.SessionID, session.ProfileName, session.ConfigName,
		toUnix(session.StartTime), toUnix(session.EndTime),
		totalRequests, successRequests, failedRequests,
		avgResponseTime, maxConcurrent, string(metadataJSON))
	if err != nil {
		return fmt.Errorf("sessionstore: upsert session header: %w", err)
	}

	for _, stage := range session.Stages {
		_, err = tx.Exec(`
			INSERT INTO load_test_results
			(session_id, concurrent_level, total_requests, successful_requests,
			 failed_requests, avg_response_time, min_response_time, max_response_time,
			 p50_response_time, p95_response_time, p99_response_time,
			 requests_per_second, total_test_time, error_rate, timeout_count,
			 total_tokens, avg_tokens_per_request, tokens_per_second)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, session.SessionID, stage.Concurrency, stage.TotalCount, stage.SuccessCount,
			stage.FailedCount, stage.MeanLatency, stage.MinLatency, stage.MaxLatency,
			stage.P50Latency, stage.P95Latency, stage.P99Latency,
			stage.ThroughputRPS, stage.TotalTestTime, stage.ErrorRate, stage.TimeoutCount,
			stage.TotalTokens, stage.MeanTokens, stage.TokensPerSecond)
		if err != nil {
			return fmt.Errorf("sessionstore: insert stage result: %w", err)
		}

		for _, a := range stage.Attempts {
			_, err = tx.Exec(`
				INSERT INTO request_results
				(session_id, concurrent_level, timestamp, prompt, response_time,
				 status_code, success, error_message, input_tokens, output_tokens,
				 total_tokens, content_length)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, session.SessionID, stage.Concurrency, toUnix(a.IssueTime), a.Prompt, a.Latency,
				a.StatusCode, a.Success, a.Error, a.InputTokens, a.OutputTokens,
				a.TotalTokens, a.BodyLen)
			if err != nil {
				return fmt.Errorf("sessionstore: insert attempt: %w", err)
			}
		}
	}

	for host, agg := range session.HostStats {
		_, err = tx.Exec(`
			INSERT INTO network_stats
			(session_id, host, timestamp, total_pings, successful_pings,
			 success_rate, avg_response_time, packet_loss, jitter)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, session.SessionID, host, toUnix(session.EndTime), agg.Total,
			int(float64(agg.Total)*agg.SuccessRate+0.5), agg.SuccessRate, agg.MeanLatency,
			1-agg.SuccessRate, agg.Jitter)
		if err != nil {
			return fmt.Errorf("sessionstore: insert network stats: %w", err)
		}
	}

	return tx.Commit()
}

// deleteSessionRows removes any existing stage/request/network rows for a
// session before a fresh save, so a repeated SaveSession call does not
// accumulate duplicate stage generations. The header row itself is
// upserted separately via INSERT OR REPLACE.
func deleteSessionRows(tx *sql.Tx, sessionID string) error {
	for _, table := range []string{"load_test_results", "request_results", "network_stats"} {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE session_id = ?", table), sessionID); err != nil {
			return fmt.Errorf("sessionstore: clear %s: %w", table, err)
		}
	}
	return nil
}

func summarize(stages []model.Stage) (total, success, failed int, avgResponseTime float64, maxConcurrent int) {
	var sumLatency float64
	var latencySamples int
	for _, stage := range stages {
		total += stage.TotalCount
		success += stage.SuccessCount
		failed += stage.FailedCount
		if stage.MeanLatency > 0 {
			sumLatency += stage.MeanLatency
			latencySamples++
		}
		if stage.Concurrency > maxConcurrent {
			maxConcurrent = stage.Concurrency
		}
	}
	if latencySamples > 0 {
		avgResponseTime = sumLatency / float64(latencySamples)
	}
	return
}
