// Package types contains shared data structures used across the application.
package types

import (
	"fmt"
	"time"
)

// Status is the classification of a tick.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// LogEntry is a periodic snapshot of a running session.
type LogEntry struct {
	SessionID       string    `json:"session_id"`
	Username        string    `json:"username"`
	Hostname        string    `json:"hostname"`
	Timestamp       time.Time `json:"timestamp"`
	Status          Status    `json:"status"`
	ActiveTime      float64   `json:"active_time"`
	InactiveTime    float64   `json:"inactive_time"`
	MotionIntensity float64   `json:"motion_intensity"`
}

// SessionSummary is the record emitted once a session ends.
type SessionSummary struct {
	SessionID        string    `json:"session_id"`
	Username         string    `json:"username"`
	Hostname         string    `json:"hostname"`
	SessionStart     time.Time `json:"session_start"`
	SessionEnd       time.Time `json:"session_end"`
	TotalRuntime     float64   `json:"total_runtime"`
	ActiveTime       float64   `json:"active_time"`
	InactiveTime     float64   `json:"inactive_time"`
	ActiveDuration   string    `json:"active_duration"`
	InactiveDuration string    `json:"inactive_duration"`
}

// FormatDuration renders d as H:MM:SS, truncating fractional seconds.
// Hours are not wrapped at 24.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}
