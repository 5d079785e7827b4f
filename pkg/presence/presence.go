// Package presence reports whether the monitored user's login session is
// currently present.
package presence

import (
	"context"
	"os/exec"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// NewChecker creates the platform-appropriate presence checker.
// It returns:
// - QuerySessionChecker on Windows (parses `query session`)
// - WhoChecker everywhere else (parses `who`).
func NewChecker() interfaces.PresenceChecker {
	return newPlatformChecker()
}

// Always reports every user as present. It is used when presence checks are
// disabled.
type Always struct{}

// IsPresent always returns true.
func (Always) IsPresent(context.Context, string) (bool, error) {
	return true, nil
}

// cmdExecutor runs a command and returns its standard output.
type cmdExecutor func(ctx context.Context, name string, args ...string) ([]byte, error)

// defaultCmdExecutor executes a command and returns its output.
func defaultCmdExecutor(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}
