package main

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/Veraticus/activity-monitor/pkg/config"
	"github.com/Veraticus/activity-monitor/pkg/monitor"
	"github.com/Veraticus/activity-monitor/pkg/motion"
	"github.com/Veraticus/activity-monitor/pkg/presence"
	"github.com/Veraticus/activity-monitor/pkg/record"
	"github.com/Veraticus/activity-monitor/pkg/status"
	"github.com/Veraticus/activity-monitor/pkg/store"
	"github.com/Veraticus/activity-monitor/pkg/testutil"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("ACTIVITY_MONITOR_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestParseFlags(t *testing.T) {
	opts, fs, err := parseFlags([]string{"--runtime", "1h", "--store=/tmp/a.db", "-q", "--report", "3"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := config.DefaultConfig()
	opts.apply(cfg, fs)

	if cfg.TotalRuntime != time.Hour {
		t.Errorf("expected runtime 1h, got %v", cfg.TotalRuntime)
	}
	if cfg.StorePath != "/tmp/a.db" {
		t.Errorf("expected store path to be set, got %q", cfg.StorePath)
	}
	if !cfg.Quiet {
		t.Error("expected quiet to be set")
	}
	if opts.report != 3 {
		t.Errorf("expected report 3, got %d", opts.report)
	}
	// Flags that were not given leave the config alone
	if cfg.Timeout != 5*time.Minute || cfg.CheckInterval != 10*time.Second {
		t.Errorf("unset flags changed config: timeout=%v interval=%v", cfg.Timeout, cfg.CheckInterval)
	}
}

func TestParseFlagsRejectsArguments(t *testing.T) {
	if _, _, err := parseFlags([]string{"extra"}, &bytes.Buffer{}); err == nil {
		t.Error("expected an error for positional arguments")
	}
	if _, _, err := parseFlags([]string{"--runtime", "soon"}, &bytes.Buffer{}); err == nil {
		t.Error("expected an error for a malformed duration")
	}
}

func TestRunHelp(t *testing.T) {
	stdout := &bytes.Buffer{}
	if code := run([]string{"--help"}, stdout, &bytes.Buffer{}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	for _, want := range []string{"Usage: activity-monitor", "--runtime", "ACTIVITY_MONITOR_STORE"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("expected usage to contain %q", want)
		}
	}
}

func TestRunInvalidConfig(t *testing.T) {
	isolateConfig(t)
	stderr := &bytes.Buffer{}
	if code := run([]string{"--interval", "0s"}, &bytes.Buffer{}, stderr); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "check_interval must be positive") {
		t.Errorf("expected validation error, got %q", stderr.String())
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json with log file", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.LogFormat = "json"
		cfg.LogLevel = "debug"
		cfg.LogFile = filepath.Join(t.TempDir(), "logs", "monitor.log")

		stderr := &bytes.Buffer{}
		log, err := newLogger(cfg, stderr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		log.Debug("hello")

		if !strings.Contains(stderr.String(), `"msg":"hello"`) {
			t.Errorf("expected JSON output on stderr, got %q", stderr.String())
		}
		data, err := os.ReadFile(cfg.LogFile)
		if err != nil {
			t.Fatalf("expected log file to be written: %v", err)
		}
		if !strings.Contains(string(data), "hello") {
			t.Errorf("expected log file to contain the message, got %q", data)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.LogLevel = "loud"
		if _, err := newLogger(cfg, &bytes.Buffer{}); err == nil {
			t.Error("expected an error for an invalid level")
		}
	})
}

func TestNewDependencies(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PresenceCheck = false
	cfg.StorePath = filepath.Join(t.TempDir(), "activity.db")
	cfg.Username = "alice"

	deps, err := NewDependencies(context.Background(), cfg, logrus.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer deps.Close()

	if deps.Username != "alice" {
		t.Errorf("expected configured username, got %q", deps.Username)
	}
	if deps.SessionID == "" {
		t.Error("expected a session id")
	}
	if _, ok := deps.Presence.(presence.Always); !ok {
		t.Errorf("expected presence checks to be disabled, got %T", deps.Presence)
	}
	if deps.Store == nil || deps.Dispatcher == nil || deps.Monitor == nil {
		t.Error("expected store, dispatcher and monitor to be created")
	}
	if deps.StatusIndicator == nil || deps.StatusReporter == nil {
		t.Error("expected status indicator and reporter to be created")
	}
}

func TestNewDependenciesStoreFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.PresenceCheck = false
	cfg.StorePath = filepath.Join(blocker, "activity.db")

	if _, err := NewDependencies(context.Background(), cfg, logrus.New()); err == nil {
		t.Error("expected an error when the store cannot be created")
	}
}

func TestApplicationRun(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TotalRuntime = time.Minute
	cfg.CheckInterval = 10 * time.Second

	img := image.NewGray(image.Rect(0, 0, 16, 16))
	clock := testutil.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	sink := testutil.NewMockSink()
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})

	dispatcher := record.NewDispatcher(log, 8, sink)
	mon := monitor.New(monitor.Options{
		Config:    cfg,
		Capturer:  testutil.NewMockCapturer([]*motion.Sample{{Image: img}}, nil),
		Recorder:  dispatcher,
		Logger:    log,
		Username:  "alice",
		SessionID: "app-test",
		Now:       clock.Now,
		Sleep:     clock.Sleep,
	})
	indicator := status.NewIndicator(&bytes.Buffer{}, true, mon.Tracker())
	reporter := status.NewReporter(indicator)
	dispatcher.SetStatusReporter(reporter)
	deps := &Dependencies{
		Config:          cfg,
		Logger:          log,
		Dispatcher:      dispatcher,
		Monitor:         mon,
		StatusIndicator: indicator,
		StatusReporter:  reporter,
	}
	defer deps.Close()

	done := make(chan struct{})
	var (
		summary types.SessionSummary
		runErr  error
	)
	go func() {
		defer close(done)
		summary, runErr = NewApplication(deps).Run(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("application did not stop after the session ended")
	}

	if runErr != nil {
		t.Fatalf("unexpected error: %v", runErr)
	}
	if summary.TotalRuntime != 60 || summary.ActiveTime+summary.InactiveTime != 60 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(sink.GetSummaries()) != 1 {
		t.Errorf("expected the summary to reach the sink, got %d", len(sink.GetSummaries()))
	}
	if stats := reporter.Stats(); stats.Written == 0 || stats.Failed != 0 {
		t.Errorf("unexpected record stats: %+v", stats)
	}
}

func TestRunReport(t *testing.T) {
	color.NoColor = true
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.StorePath = filepath.Join(t.TempDir(), "activity.db")

	st, err := store.Open(ctx, cfg.StorePath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := st.InsertSummary(ctx, types.SessionSummary{
		SessionID:        "s1",
		Username:         "alice",
		Hostname:         "desk",
		SessionStart:     time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		TotalRuntime:     1800,
		ActiveTime:       1350,
		InactiveTime:     450,
		ActiveDuration:   "0:22:30",
		InactiveDuration: "0:07:30",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = st.Close()

	out := &bytes.Buffer{}
	if err := runReport(ctx, cfg, 5, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"alice@desk",
		"Total:    0:30:00",
		"Active:   0:22:30 (75.00%)",
		"Inactive: 0:07:30 (25.00%)",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected report to contain %q, got %q", want, out.String())
		}
	}
}

func TestRunReportNeedsStore(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := runReport(context.Background(), cfg, 5, &bytes.Buffer{}); err == nil {
		t.Error("expected an error without a store path")
	}
}

func TestPrintSummariesEmpty(t *testing.T) {
	out := &bytes.Buffer{}
	printSummaries(out, nil)
	if !strings.Contains(out.String(), "No sessions recorded.") {
		t.Errorf("unexpected output: %q", out.String())
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(nil) {
		t.Error("nil file reported as a terminal")
	}

	f, err := os.Create(filepath.Join(t.TempDir(), "out.log"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Close()
	if isTerminal(f) {
		t.Error("regular file reported as a terminal")
	}
}
