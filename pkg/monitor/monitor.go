// Package monitor drives the sampling loop that ties presence, screen motion
// and input activity to the activity tracker.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Veraticus/activity-monitor/pkg/activity"
	"github.com/Veraticus/activity-monitor/pkg/config"
	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/motion"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

// Capturer produces one screen sample per call.
type Capturer interface {
	Capture(ctx context.Context) (*motion.Sample, error)
}

// Recorder receives periodic log entries and the final summary.
type Recorder interface {
	InsertLog(entry types.LogEntry)
	InsertSummary(ctx context.Context, summary types.SessionSummary)
}

// Options wires a Monitor. Input may be nil; Now and Sleep default to the
// wall clock.
type Options struct {
	Config    *config.Config
	Capturer  Capturer
	Presence  interfaces.PresenceChecker
	Input     interfaces.InputSource
	Recorder  Recorder
	Logger    logrus.FieldLogger
	Username  string
	Hostname  string
	SessionID string

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// Monitor runs one monitoring session.
type Monitor struct {
	config   *config.Config
	capturer Capturer
	presence interfaces.PresenceChecker
	input    interfaces.InputSource
	recorder Recorder
	log      logrus.FieldLogger

	username  string
	hostname  string
	sessionID string

	tracker  *activity.Tracker
	detector *motion.Detector
	start    time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	lastIntensity float64
	// reactivations carries reactivation idle times from input goroutines
	// to the sampling loop, which logs them.
	reactivations chan time.Duration
}

// New creates a monitor. The session clock starts now.
func New(opts Options) *Monitor {
	m := &Monitor{
		config:    opts.Config,
		capturer:  opts.Capturer,
		presence:  opts.Presence,
		input:     opts.Input,
		recorder:  opts.Recorder,
		log:       opts.Logger,
		username:  opts.Username,
		hostname:  opts.Hostname,
		sessionID: opts.SessionID,
		now:       opts.Now,
		sleep:     opts.Sleep,

		reactivations: make(chan time.Duration, 1),
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.sleep == nil {
		m.sleep = sleepContext
	}
	if m.log == nil {
		m.log = logrus.StandardLogger()
	}

	m.start = m.now()
	m.tracker = activity.NewTracker(m.start, m.config.Timeout)
	m.detector = motion.NewDetector(m.config.MotionThreshold, m.config.DiffThreshold)
	m.tracker.OnReactivate(func(idle time.Duration) {
		select {
		case m.reactivations <- idle:
		default:
		}
	})
	return m
}

// Tracker exposes the session accumulators to read-only observers.
func (m *Monitor) Tracker() *activity.Tracker {
	return m.tracker
}

// Start returns the session start time.
func (m *Monitor) Start() time.Time {
	return m.start
}

// Run samples until the runtime budget elapses or ctx is cancelled. The
// session is always finalized and its summary returned, including when the
// loop panics.
func (m *Monitor) Run(ctx context.Context) (summary types.SessionSummary, err error) {
	m.log.WithFields(logrus.Fields{
		"session":  m.sessionID,
		"username": m.username,
		"runtime":  m.config.TotalRuntime,
		"timeout":  m.config.Timeout,
		"interval": m.config.CheckInterval,
	}).Info("Starting activity monitor")

	if m.input != nil {
		if startErr := m.input.Start(m.tracker.Signal); startErr != nil {
			m.log.WithError(startErr).Warn("input hook unavailable, relying on screen motion only")
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("monitor loop panicked: %v", r)
			m.log.WithError(err).Error("sampling loop aborted")
		}
		summary = m.finalize(context.WithoutCancel(ctx))
	}()

	m.loop(ctx)
	return summary, nil
}

func (m *Monitor) loop(ctx context.Context) {
	deadline := m.start.Add(m.config.TotalRuntime)
	nextEmit := m.start.Add(m.config.LogPeriod)

	for {
		if ctx.Err() != nil {
			m.log.Info("Stopping activity monitor")
			return
		}
		if !m.now().Before(deadline) {
			return
		}

		if !m.awaitPresence(ctx, deadline) {
			continue
		}

		now := m.tick(ctx)

		if !now.Before(nextEmit) {
			m.emit(now)
			for !nextEmit.After(now) {
				nextEmit = nextEmit.Add(m.config.LogPeriod)
			}
		}

		if err := m.sleep(ctx, m.config.CheckInterval); err != nil {
			continue
		}
	}
}

// tick runs capture, motion detection and classification for one interval.
func (m *Monitor) tick(ctx context.Context) time.Time {
	sample, err := m.capturer.Capture(ctx)
	if err != nil {
		m.log.WithError(err).Warn("screen capture failed")
		sample = nil
	}

	res := m.detector.Observe(sample)
	m.lastIntensity = res.Intensity

	now := m.now()
	if res.Detected {
		m.tracker.Signal(now)
	}
	tr := m.tracker.Tick(now)

	select {
	case idle := <-m.reactivations:
		m.log.WithField("idle", idle.Round(time.Second)).Info("User is active again")
	default:
	}

	m.log.WithFields(logrus.Fields{
		"status":     tr.Status,
		"similarity": res.Similarity,
		"motion":     res.Intensity,
		"idle":       tr.SinceActivity.Round(time.Second),
	}).Debug("tick")
	return now
}

// awaitPresence reports whether the user is present. While the session is
// absent it polls every check interval, waking early on login record
// changes, and returns false once ctx is done or the deadline passes.
func (m *Monitor) awaitPresence(ctx context.Context, deadline time.Time) bool {
	if m.isPresent(ctx) {
		return true
	}

	m.log.Infof("%s session inactive. Pausing...", m.username)

	var changes <-chan struct{}
	if n, ok := m.presence.(interfaces.PresenceNotifier); ok {
		changes = n.Changes()
		// Changes seen while present say nothing about this absence
		drain(changes)
	}

	for {
		if err := m.pause(ctx, changes); err != nil {
			return false
		}
		now := m.now()
		if !now.Before(deadline) {
			return false
		}
		if m.isPresent(ctx) {
			m.log.Infof("%s session active. Resuming...", m.username)
			m.tracker.Resume(now)
			// The last sample predates the absence
			m.detector.Reset()
			return true
		}
	}
}

func (m *Monitor) isPresent(ctx context.Context) bool {
	if m.presence == nil {
		return true
	}
	present, err := m.presence.IsPresent(ctx, m.username)
	if err != nil {
		m.log.WithError(err).Warn("presence check failed, assuming present")
		return true
	}
	return present
}

// pause sleeps for one check interval, returning early when changes fires.
func (m *Monitor) pause(ctx context.Context, changes <-chan struct{}) error {
	if changes == nil {
		return m.sleep(ctx, m.config.CheckInterval)
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-changes:
			cancel()
		case <-wctx.Done():
		}
	}()

	_ = m.sleep(wctx, m.config.CheckInterval)
	return ctx.Err()
}

func drain(ch <-chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func (m *Monitor) emit(now time.Time) {
	totals := m.tracker.Snapshot()
	entry := types.LogEntry{
		SessionID:       m.sessionID,
		Username:        m.username,
		Hostname:        m.hostname,
		Timestamp:       now,
		Status:          totals.State,
		ActiveTime:      totals.Active.Seconds(),
		InactiveTime:    totals.Inactive.Seconds(),
		MotionIntensity: m.lastIntensity,
	}
	m.recorder.InsertLog(entry)

	msg := fmt.Sprintf("User is %s (Motion: %.2f%%)", totals.State, m.lastIntensity)
	if m.config.Quiet {
		m.log.Debug(msg)
	} else {
		m.log.Info(msg)
	}
}

// finalize stops the input listeners, reconciles the accumulators against
// the configured runtime and records the summary. A session cut short counts
// the unobserved remainder as inactive.
func (m *Monitor) finalize(ctx context.Context) types.SessionSummary {
	if m.input != nil {
		m.input.Stop()
	}

	end := m.now()
	runtime := m.config.TotalRuntime

	totals := m.tracker.Reconcile(runtime)
	summary := types.SessionSummary{
		SessionID:        m.sessionID,
		Username:         m.username,
		Hostname:         m.hostname,
		SessionStart:     m.start,
		SessionEnd:       end,
		TotalRuntime:     runtime.Seconds(),
		ActiveTime:       totals.Active.Seconds(),
		InactiveTime:     totals.Inactive.Seconds(),
		ActiveDuration:   types.FormatDuration(totals.Active),
		InactiveDuration: types.FormatDuration(totals.Inactive),
	}

	m.recorder.InsertSummary(ctx, summary)

	activePct, inactivePct := 0.0, 0.0
	if runtime > 0 {
		activePct = float64(totals.Active) / float64(runtime) * 100
		inactivePct = float64(totals.Inactive) / float64(runtime) * 100
	}
	m.log.Infof("Summary: total %s, active %s (%.2f%%), inactive %s (%.2f%%)",
		types.FormatDuration(runtime),
		summary.ActiveDuration, activePct,
		summary.InactiveDuration, inactivePct)

	return summary
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
