// Package idle turns the operating system's idle-time counter into activity
// signals. It backs up the input hook when no global hook is available.
package idle

import (
	"context"
	"os/exec"
	"time"
)

// Querier reports how long the user has been idle.
type Querier interface {
	IdleTime(ctx context.Context) (time.Duration, error)
	IsAvailable(ctx context.Context) bool
}

// cmdExecutor runs a command and returns its standard output.
type cmdExecutor func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultCmdExecutor(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// NewQuerier returns the first idle-time source available on this platform,
// or nil when there is none.
//
//   - macOS: ioreg HIDIdleTime
//   - Linux: xprintidle, then tmux client activity
func NewQuerier(ctx context.Context) Querier {
	for _, q := range platformQueriers() {
		if q.IsAvailable(ctx) {
			return q
		}
	}
	return nil
}
