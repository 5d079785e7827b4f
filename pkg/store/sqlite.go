// Package store persists activity records in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Veraticus/activity-monitor/pkg/record"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

const timeLayout = time.RFC3339Nano

// SQLiteStore writes log entries and session summaries to SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ record.Sink = (*SQLiteStore)(nil)

// Open creates the database file and its schema if needed and verifies the
// connection.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps :memory: databases coherent and serializes
	// writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS activity_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL,
  username TEXT NOT NULL,
  hostname TEXT NOT NULL,
  timestamp TEXT NOT NULL,
  status TEXT NOT NULL,
  active_time REAL NOT NULL,
  inactive_time REAL NOT NULL,
  motion_intensity REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS session_summaries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL,
  username TEXT NOT NULL,
  hostname TEXT NOT NULL,
  session_start TEXT NOT NULL,
  session_end TEXT NOT NULL,
  total_runtime REAL NOT NULL,
  active_time REAL NOT NULL,
  inactive_time REAL NOT NULL,
  active_duration TEXT NOT NULL,
  inactive_duration TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_logs_session ON activity_logs(session_id);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertLog appends one periodic log entry.
func (s *SQLiteStore) InsertLog(ctx context.Context, e types.LogEntry) error {
	const stmt = `
INSERT INTO activity_logs (session_id, username, hostname, timestamp, status, active_time, inactive_time, motion_intensity)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		e.SessionID,
		e.Username,
		e.Hostname,
		e.Timestamp.UTC().Format(timeLayout),
		string(e.Status),
		e.ActiveTime,
		e.InactiveTime,
		e.MotionIntensity,
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

// InsertSummary appends one session summary.
func (s *SQLiteStore) InsertSummary(ctx context.Context, sum types.SessionSummary) error {
	const stmt = `
INSERT INTO session_summaries (session_id, username, hostname, session_start, session_end, total_runtime, active_time, inactive_time, active_duration, inactive_duration)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		sum.SessionID,
		sum.Username,
		sum.Hostname,
		sum.SessionStart.UTC().Format(timeLayout),
		sum.SessionEnd.UTC().Format(timeLayout),
		sum.TotalRuntime,
		sum.ActiveTime,
		sum.InactiveTime,
		sum.ActiveDuration,
		sum.InactiveDuration,
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

// RecentSummaries returns up to n summaries, newest first.
func (s *SQLiteStore) RecentSummaries(ctx context.Context, n int) ([]types.SessionSummary, error) {
	if n <= 0 {
		return nil, nil
	}
	const query = `
SELECT session_id, username, hostname, session_start, session_end, total_runtime, active_time, inactive_time, active_duration, inactive_duration
FROM session_summaries
ORDER BY id DESC
LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []types.SessionSummary
	for rows.Next() {
		var (
			sum        types.SessionSummary
			start, end string
		)
		if err := rows.Scan(
			&sum.SessionID,
			&sum.Username,
			&sum.Hostname,
			&start,
			&end,
			&sum.TotalRuntime,
			&sum.ActiveTime,
			&sum.InactiveTime,
			&sum.ActiveDuration,
			&sum.InactiveDuration,
		); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if sum.SessionStart, err = time.Parse(timeLayout, start); err != nil {
			return nil, fmt.Errorf("parse session start %q: %w", start, err)
		}
		if sum.SessionEnd, err = time.Parse(timeLayout, end); err != nil {
			return nil, fmt.Errorf("parse session end %q: %w", end, err)
		}
		result = append(result, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return result, nil
}

// CountLogs returns the number of log entries stored for sessionID.
func (s *SQLiteStore) CountLogs(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_logs WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count logs: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
