package record

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Veraticus/activity-monitor/pkg/types"
)

// StdoutSink is a simple sink that prints records (used when no store is
// configured)
type StdoutSink struct {
	w io.Writer
}

// NewStdoutSink creates a new stdout sink
func NewStdoutSink() *StdoutSink {
	return &StdoutSink{w: os.Stdout}
}

// InsertLog prints the entry
func (s *StdoutSink) InsertLog(_ context.Context, e types.LogEntry) error {
	_, err := fmt.Fprintf(s.w, "[LOG] %s %s@%s %s active=%.0fs inactive=%.0fs motion=%.2f%%\n",
		e.Timestamp.Format(time.RFC3339),
		e.Username,
		e.Hostname,
		e.Status,
		e.ActiveTime,
		e.InactiveTime,
		e.MotionIntensity)
	return err
}

// InsertSummary prints the summary
func (s *StdoutSink) InsertSummary(_ context.Context, sum types.SessionSummary) error {
	_, err := fmt.Fprintf(s.w, "[SUMMARY] %s %s@%s total=%.0fs active=%s inactive=%s\n",
		sum.SessionEnd.Format(time.RFC3339),
		sum.Username,
		sum.Hostname,
		sum.TotalRuntime,
		sum.ActiveDuration,
		sum.InactiveDuration)
	return err
}
