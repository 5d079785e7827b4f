// Package interfaces defines the core interfaces used throughout the application.
package interfaces

import (
	"context"
	"time"
)

// ActivitySignaler receives activity signals from input listeners and the
// motion detector.
type ActivitySignaler interface {
	Signal(now time.Time)
}

// PresenceChecker reports whether a user's login session is present.
type PresenceChecker interface {
	IsPresent(ctx context.Context, username string) (bool, error)
}

// PresenceNotifier is implemented by presence sources that can announce a
// possible change before the next poll.
type PresenceNotifier interface {
	Changes() <-chan struct{}
}

// InputSource delivers platform input events to a handler.
type InputSource interface {
	Start(handler func(time.Time)) error
	Stop()
}

// StatusReporter reports persistence outcomes.
type StatusReporter interface {
	ReportSending()
	ReportSuccess()
	ReportFailure()
}
