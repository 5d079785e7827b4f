//go:build windows
// +build windows

package presence

import (
	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// newPlatformChecker creates a Windows-specific presence checker.
func newPlatformChecker() interfaces.PresenceChecker {
	return NewQuerySessionChecker()
}
