package status

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/activity-monitor/pkg/activity"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

// DefaultRefreshInterval is how often the status line is redrawn.
const DefaultRefreshInterval = 5 * time.Second

// Status represents the current persistence status
type Status int

const (
	StatusIdle Status = iota
	StatusSending
	StatusSuccess
	StatusFailed
)

// TotalsSource provides the accumulators to display.
type TotalsSource interface {
	Snapshot() activity.Totals
}

// Indicator manages the status display in the terminal
type Indicator struct {
	mu      sync.Mutex
	status  Status
	enabled bool
	writer  io.Writer

	source   TotalsSource
	interval time.Duration
}

// NewIndicator creates a new status indicator showing the totals of source
func NewIndicator(writer io.Writer, enabled bool, source TotalsSource) *Indicator {
	return &Indicator{
		status:   StatusIdle,
		writer:   writer,
		enabled:  enabled,
		source:   source,
		interval: DefaultRefreshInterval,
	}
}

// SetStatus updates the current persistence status
func (i *Indicator) SetStatus(status Status) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.status = status

	// Best effort - don't fail if we can't update the display
	_ = i.draw()
}

// draw renders the status indicator. Callers hold i.mu.
func (i *Indicator) draw() error {
	if !i.enabled || i.writer == nil {
		return nil
	}

	statusText := i.getStatusText()
	if statusText == "" {
		return nil
	}

	// \0337 saves the cursor (DECSC), \033[r resets the scroll region,
	// \033[999;1H moves to the last line, \033[2K clears it and \0338
	// restores the cursor (DECRC).
	sequence := fmt.Sprintf("\0337\033[r\033[999;1H\033[2K%s\0338", statusText)

	if _, err := fmt.Fprint(i.writer, sequence); err != nil {
		return err
	}

	return nil
}

// getStatusText returns the status line with color
func (i *Indicator) getStatusText() string {
	if i.source == nil {
		return ""
	}
	totals := i.source.Snapshot()

	var parts []string
	if totals.State == types.StatusInactive {
		parts = append(parts, "\033[33mⓏ\033[0m") // Yellow Z for inactive
	} else {
		parts = append(parts, "\033[32m▶\033[0m") // Green play for active
	}

	parts = append(parts, fmt.Sprintf("Active: %s | Inactive: %s",
		types.FormatDuration(totals.Active),
		types.FormatDuration(totals.Inactive)))

	switch i.status {
	case StatusSending:
		parts = append(parts, "\033[33m⟳ db\033[0m")
	case StatusSuccess:
		parts = append(parts, "\033[32m✓ db\033[0m")
	case StatusFailed:
		parts = append(parts, "\033[31m✗ db\033[0m")
	}

	return strings.Join(parts, " ")
}

// Refresh redraws the status line now.
func (i *Indicator) Refresh() {
	i.mu.Lock()
	defer i.mu.Unlock()
	_ = i.draw()
}

// Clear removes the status indicator
func (i *Indicator) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.enabled || i.writer == nil {
		return nil
	}

	sequence := "\0337\033[999;1H\033[2K\0338"
	if _, err := fmt.Fprint(i.writer, sequence); err != nil {
		return err
	}

	return nil
}

// Run redraws the status line every refresh interval until ctx is done, then
// clears it. A disabled indicator returns immediately.
func (i *Indicator) Run(ctx context.Context) error {
	if !i.enabled {
		return nil
	}

	i.Refresh()

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			i.Refresh()
		case <-ctx.Done():
			_ = i.Clear() // Best effort
			return nil
		}
	}
}
