// Package activity implements the Active/Inactive state machine and the
// duration accumulators it drives.
package activity

import (
	"sync"
	"time"

	"github.com/Veraticus/activity-monitor/pkg/types"
)

// Totals is a point-in-time view of the accumulators.
type Totals struct {
	Active   time.Duration
	Inactive time.Duration
	State    types.Status
}

// Sum returns Active + Inactive.
func (t Totals) Sum() time.Duration {
	return t.Active + t.Inactive
}

// TickResult describes how a single tick was classified.
type TickResult struct {
	Status        types.Status
	Elapsed       time.Duration
	SinceActivity time.Duration
}

// Tracker owns the last-activity timestamp, the current state and the
// active/inactive accumulators.
//
// Signal may be called from any goroutine. Tick, Resume and Reconcile are
// called by the sampling loop only, so the accumulators have a single writer;
// the mutex exists so that Snapshot readers never see torn values.
type Tracker struct {
	timeout time.Duration

	mu           sync.RWMutex
	lastActivity time.Time
	lastTick     time.Time
	state        types.Status
	active       time.Duration
	inactive     time.Duration
	// reactivated is set by the first signal of an Inactive period and
	// cleared by the next Tick.
	reactivated bool

	onReactivate func(idle time.Duration)
}

// NewTracker creates a tracker that starts Active at start.
// start must come from time.Now (or a clock that keeps monotonic readings).
func NewTracker(start time.Time, timeout time.Duration) *Tracker {
	return &Tracker{
		timeout:      timeout,
		lastActivity: start,
		lastTick:     start,
		state:        types.StatusActive,
	}
}

// OnReactivate registers a callback run by the first signal that arrives
// while the tracker is Inactive. It runs at most once per Inactive period, on
// the signalling goroutine, without the lock held, and must not block.
func (t *Tracker) OnReactivate(fn func(idle time.Duration)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReactivate = fn
}

// Signal records user activity at now. Older timestamps never move the
// last-activity mark backwards.
func (t *Tracker) Signal(now time.Time) {
	t.mu.Lock()
	var (
		fn   func(time.Duration)
		idle time.Duration
	)
	if t.state == types.StatusInactive && !t.reactivated && now.After(t.lastActivity) {
		t.reactivated = true
		fn = t.onReactivate
		idle = now.Sub(t.lastActivity)
	}
	if now.After(t.lastActivity) {
		t.lastActivity = now
	}
	t.mu.Unlock()

	if fn != nil {
		fn(idle)
	}
}

// Tick classifies the interval since the previous tick and adds it to the
// matching bucket.
func (t *Tracker) Tick(now time.Time) TickResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := now.Sub(t.lastTick)
	if elapsed < 0 {
		elapsed = 0
	}
	since := now.Sub(t.lastActivity)

	if since <= t.timeout {
		t.state = types.StatusActive
		t.active += elapsed
	} else {
		t.state = types.StatusInactive
		t.inactive += elapsed
	}
	t.lastTick = now
	t.reactivated = false

	return TickResult{Status: t.state, Elapsed: elapsed, SinceActivity: since}
}

// Resume restarts accounting at now after a suspension. The gap since the
// last tick is dropped and the user counts as just active.
func (t *Tracker) Resume(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastTick = now
	if now.After(t.lastActivity) {
		t.lastActivity = now
	}
}

// LastActivity returns the last time activity was signalled.
func (t *Tracker) LastActivity() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastActivity
}

// Snapshot returns the current accumulators and state.
func (t *Tracker) Snapshot() Totals {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Totals{Active: t.active, Inactive: t.inactive, State: t.state}
}

// Reconcile forces the accumulators to sum to total and returns the result.
//
// When more time was measured than total, active is scaled by
// total/measured and inactive takes the remainder. When less was measured
// the shortfall is added to inactive.
func (t *Tracker) Reconcile(total time.Duration) Totals {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active, t.inactive = reconcile(t.active, t.inactive, total)
	return Totals{Active: t.active, Inactive: t.inactive, State: t.state}
}

func reconcile(active, inactive, total time.Duration) (time.Duration, time.Duration) {
	if total < 0 {
		total = 0
	}
	measured := active + inactive
	switch {
	case measured > total:
		// float64 keeps active*total from overflowing int64 nanoseconds
		scaled := time.Duration(float64(active) / float64(measured) * float64(total))
		if scaled > total {
			scaled = total
		}
		return scaled, total - scaled
	case measured < total:
		return active, inactive + (total - measured)
	default:
		return active, inactive
	}
}
