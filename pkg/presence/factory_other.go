//go:build !windows
// +build !windows

package presence

import (
	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// newPlatformChecker creates a who-based presence checker.
func newPlatformChecker() interfaces.PresenceChecker {
	return NewWhoChecker()
}
