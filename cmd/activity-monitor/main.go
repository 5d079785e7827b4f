package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/Veraticus/activity-monitor/pkg/config"
)

// options holds the command line flags
type options struct {
	configPath string
	runtime    time.Duration
	timeout    time.Duration
	interval   time.Duration
	storePath  string
	logLevel   string
	quiet      bool
	report     int
	help       bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if opts.help {
		printUsage(stdout, fs)
		return 0
	}

	if opts.configPath != "" {
		if err := os.Setenv("ACTIVITY_MONITOR_CONFIG", opts.configPath); err != nil {
			fmt.Fprintf(stderr, "Error setting config path: %v\n", err)
			return 1
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}
	opts.apply(cfg, fs)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	log, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating logger: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.report > 0 {
		if err := runReport(ctx, cfg, opts.report, stdout); err != nil {
			log.WithError(err).Error("report failed")
			return 1
		}
		return 0
	}

	deps, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to start activity monitor")
		return 1
	}
	defer deps.Close()

	app := NewApplication(deps)
	if _, err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("activity monitor stopped with an error")
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*options, *flag.FlagSet, error) {
	opts := &options{}
	fs := flag.NewFlagSet("activity-monitor", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.DurationVar(&opts.runtime, "runtime", 0, "Total session length (e.g. 30m)")
	fs.DurationVar(&opts.timeout, "timeout", 0, "Inactivity timeout (e.g. 5m)")
	fs.DurationVar(&opts.interval, "interval", 0, "Sampling interval (e.g. 10s)")
	fs.StringVar(&opts.storePath, "store", "", "SQLite database for records (prints to stdout when empty)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVarP(&opts.quiet, "quiet", "q", false, "Hide the status line and periodic status messages")
	fs.IntVar(&opts.report, "report", 0, "Print the N most recent session summaries and exit")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, fs, nil
}

// apply overrides cfg with the flags that were set explicitly
func (o *options) apply(cfg *config.Config, fs *flag.FlagSet) {
	if fs.Changed("runtime") {
		cfg.TotalRuntime = o.runtime
	}
	if fs.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if fs.Changed("interval") {
		cfg.CheckInterval = o.interval
	}
	if fs.Changed("store") {
		cfg.StorePath = o.storePath
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if o.quiet {
		cfg.Quiet = true
	}
}

// newLogger builds the process logger. With a log file configured, output
// goes to both stderr and a rotating file.
func newLogger(cfg *config.Config, stderr io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	log := logrus.New()
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = stderr
	if cfg.LogFile != "" {
		out = io.MultiWriter(stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 4,
			MaxAge:     12, // days
		})
	}
	log.SetOutput(out)
	return log, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "activity-monitor - track active and inactive time of the current user")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: activity-monitor [OPTIONS]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_CONFIG          Path to config file")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_TOTAL_RUNTIME   Total session length (default: 30m)")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_TIMEOUT         Inactivity timeout (default: 5m)")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_CHECK_INTERVAL  Sampling interval (default: 10s)")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_LOG_PERIOD      Periodic record interval (default: 5m)")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_USERNAME        User whose session is monitored")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_STORE           SQLite database path")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_PRESENCE_CHECK  Pause while the user is logged out (true/false)")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_QUIET           Hide status output (true/false)")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_LOG_LEVEL       Log level (default: info)")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_LOG_FORMAT      text or json")
	fmt.Fprintln(w, "  ACTIVITY_MONITOR_LOG_FILE        Also write logs to this rotating file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration file: ~/.config/activity-monitor/config.yaml")
}
