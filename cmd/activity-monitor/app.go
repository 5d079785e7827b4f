package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/activity-monitor/pkg/capture"
	"github.com/Veraticus/activity-monitor/pkg/config"
	"github.com/Veraticus/activity-monitor/pkg/idle"
	"github.com/Veraticus/activity-monitor/pkg/input"
	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/monitor"
	"github.com/Veraticus/activity-monitor/pkg/presence"
	"github.com/Veraticus/activity-monitor/pkg/record"
	"github.com/Veraticus/activity-monitor/pkg/status"
	"github.com/Veraticus/activity-monitor/pkg/store"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config          *config.Config
	Logger          logrus.FieldLogger
	SessionID       string
	Username        string
	Hostname        string
	Presence        interfaces.PresenceChecker
	Input           interfaces.InputSource
	Capturer        monitor.Capturer
	Store           *store.SQLiteStore
	Dispatcher      *record.Dispatcher
	Monitor         *monitor.Monitor
	StatusIndicator *status.Indicator
	StatusReporter  *status.Reporter

	watcher *presence.UtmpWatcher
}

// NewDependencies creates all dependencies with the given configuration
func NewDependencies(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:    cfg,
		Logger:    log,
		SessionID: uuid.NewString(),
		Username:  currentUsername(cfg),
		Hostname:  currentHostname(),
	}

	deps.Presence = deps.newPresence()
	// The global hook is preferred; the idle counter poller covers builds
	// and sessions where it cannot start.
	var poller interfaces.InputSource
	if q := idle.NewQuerier(ctx); q != nil {
		poller = idle.NewPoller(q, idle.DefaultPollInterval, log.WithField("component", "idle"))
	}
	deps.Input = input.NewFallback(input.NewBridge(input.NewPlatformSource()), poller)
	deps.Capturer = capture.NewScreenCapturer(cfg.Region, cfg.Resolution)

	var sink record.Sink = record.NewStdoutSink()
	if cfg.StorePath != "" {
		st, err := store.Open(ctx, cfg.StorePath)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		deps.Store = st
		sink = st
	}
	deps.Dispatcher = record.NewDispatcher(log.WithField("component", "record"), record.DefaultQueueSize, sink)

	deps.Monitor = monitor.New(monitor.Options{
		Config:    cfg,
		Capturer:  deps.Capturer,
		Presence:  deps.Presence,
		Input:     deps.Input,
		Recorder:  deps.Dispatcher,
		Logger:    log.WithField("component", "monitor"),
		Username:  deps.Username,
		Hostname:  deps.Hostname,
		SessionID: deps.SessionID,
	})

	// The status line only makes sense on an interactive terminal
	statusEnabled := cfg.StatusLine && !cfg.Quiet && isTerminal(os.Stderr)
	deps.StatusIndicator = status.NewIndicator(os.Stderr, statusEnabled, deps.Monitor.Tracker())
	deps.StatusReporter = status.NewReporter(deps.StatusIndicator)
	deps.Dispatcher.SetStatusReporter(deps.StatusReporter)

	return deps, nil
}

// newPresence picks the presence checker. The login records watcher is
// optional; without it absence is polled at the check interval only.
func (d *Dependencies) newPresence() interfaces.PresenceChecker {
	if !d.Config.PresenceCheck {
		return presence.Always{}
	}

	checker := presence.NewChecker()
	if runtime.GOOS == "windows" || d.Config.UtmpPath == "" {
		return checker
	}

	w, err := presence.NewUtmpWatcher(d.Config.UtmpPath, d.Logger.WithField("component", "presence"))
	if err != nil {
		d.Logger.WithError(err).Warn("cannot watch login records, polling only")
		return checker
	}
	d.watcher = w
	return &presence.Watching{PresenceChecker: checker, Watcher: w}
}

// Close cleans up all dependencies
func (d *Dependencies) Close() {
	if d.Dispatcher != nil {
		d.Dispatcher.Close()
	}

	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close store")
		}
	}

	if d.watcher != nil {
		_ = d.watcher.Close()
	}

	if d.StatusIndicator != nil {
		_ = d.StatusIndicator.Clear() // Best effort
	}
}

func currentUsername(cfg *config.Config) string {
	if cfg.Username != "" {
		return cfg.Username
	}
	u, err := user.Current()
	if err != nil {
		return os.Getenv("USER")
	}
	// Windows reports DOMAIN\user
	if i := strings.LastIndex(u.Username, `\`); i >= 0 {
		return u.Username[i+1:]
	}
	return u.Username
}

func currentHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

// Application represents the main application
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run monitors the session and drives the status line until the session
// ends or ctx is cancelled.
func (a *Application) Run(ctx context.Context) (types.SessionSummary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	var summary types.SessionSummary
	g.Go(func() error {
		// The status line stops with the session
		defer cancel()
		s, err := a.deps.Monitor.Run(gctx)
		summary = s
		return err
	})
	g.Go(func() error {
		return a.deps.StatusIndicator.Run(gctx)
	})

	err := g.Wait()
	if a.deps.StatusReporter != nil {
		if stats := a.deps.StatusReporter.Stats(); stats.Failed > 0 {
			a.deps.Logger.Warnf("Records written: %d, failed: %d", stats.Written, stats.Failed)
		} else {
			a.deps.Logger.Debugf("Records written: %d", stats.Written)
		}
	}
	return summary, err
}

var (
	reportHeader = color.New(color.FgGreen, color.Bold)
	reportActive = color.New(color.FgGreen)
	reportIdle   = color.New(color.FgYellow)
)

// runReport prints the n most recent session summaries from the store.
func runReport(ctx context.Context, cfg *config.Config, n int, w io.Writer) error {
	if cfg.StorePath == "" {
		return fmt.Errorf("report needs a store: set --store or store_path")
	}

	st, err := store.Open(ctx, cfg.StorePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	summaries, err := st.RecentSummaries(ctx, n)
	if err != nil {
		return err
	}
	printSummaries(w, summaries)
	return nil
}

func printSummaries(w io.Writer, summaries []types.SessionSummary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return
	}

	for _, s := range summaries {
		_, _ = reportHeader.Fprintf(w, "%s  %s@%s\n",
			s.SessionStart.Local().Format("2006-01-02 15:04"), s.Username, s.Hostname)

		activePct, inactivePct := 0.0, 0.0
		if s.TotalRuntime > 0 {
			activePct = s.ActiveTime / s.TotalRuntime * 100
			inactivePct = s.InactiveTime / s.TotalRuntime * 100
		}
		fmt.Fprintf(w, "  Total:    %s\n", types.FormatDuration(secondsToDuration(s.TotalRuntime)))
		_, _ = reportActive.Fprintf(w, "  Active:   %s (%.2f%%)\n", s.ActiveDuration, activePct)
		_, _ = reportIdle.Fprintf(w, "  Inactive: %s (%.2f%%)\n", s.InactiveDuration, inactivePct)
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
