// Package record delivers log entries and session summaries to persistence
// sinks.
package record

import (
	"context"

	"github.com/Veraticus/activity-monitor/pkg/types"
)

// Sink persists records.
type Sink interface {
	InsertLog(ctx context.Context, entry types.LogEntry) error
	InsertSummary(ctx context.Context, summary types.SessionSummary) error
}
