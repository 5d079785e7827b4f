package idle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// XprintidleQuerier reads the X11 screensaver idle counter through
// xprintidle, which prints milliseconds.
type XprintidleQuerier struct {
	cmdExecutor cmdExecutor
}

// NewXprintidleQuerier creates a new xprintidle querier.
func NewXprintidleQuerier() *XprintidleQuerier {
	return &XprintidleQuerier{
		cmdExecutor: defaultCmdExecutor,
	}
}

// IdleTime returns the X server idle time.
func (q *XprintidleQuerier) IdleTime(ctx context.Context) (time.Duration, error) {
	output, err := q.cmdExecutor(ctx, "xprintidle")
	if err != nil {
		return 0, fmt.Errorf("failed to execute xprintidle: %w", err)
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(string(output)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse xprintidle output %q: %w", output, err)
	}
	if ms < 0 {
		return 0, fmt.Errorf("negative idle time %d", ms)
	}

	return time.Duration(ms) * time.Millisecond, nil
}

// IsAvailable reports whether xprintidle runs and can reach an X display.
func (q *XprintidleQuerier) IsAvailable(ctx context.Context) bool {
	_, err := q.IdleTime(ctx)
	return err == nil
}
