package record

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

// DefaultQueueSize bounds the number of log entries waiting for the sinks.
const DefaultQueueSize = 64

// Dispatcher hands records to every sink. Persistence is best effort:
// failures are logged and never reach the caller.
type Dispatcher struct {
	sinks []Sink
	log   logrus.FieldLogger

	queue chan types.LogEntry
	wg    sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	reporter interfaces.StatusReporter
}

// NewDispatcher creates a dispatcher and starts its log worker.
func NewDispatcher(log logrus.FieldLogger, queueSize int, sinks ...Sink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	d := &Dispatcher{
		sinks: sinks,
		log:   log,
		queue: make(chan types.LogEntry, queueSize),
	}

	d.wg.Add(1)
	go d.worker()

	return d
}

// SetStatusReporter sets the status reporter for persistence outcomes
func (d *Dispatcher) SetStatusReporter(reporter interfaces.StatusReporter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reporter = reporter
}

func (d *Dispatcher) statusReporter() interfaces.StatusReporter {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reporter
}

// InsertLog queues entry without blocking. A full queue drops the entry.
func (d *Dispatcher) InsertLog(entry types.LogEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.log.Warn("dispatcher closed, dropping log entry")
		return
	}

	select {
	case d.queue <- entry:
	default:
		d.log.WithField("timestamp", entry.Timestamp).Warn("record queue full, dropping log entry")
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for entry := range d.queue {
		d.deliver("insert_logs", func(s Sink) error {
			return s.InsertLog(context.Background(), entry)
		})
	}
}

// InsertSummary drains queued log entries and then writes summary to every
// sink synchronously.
func (d *Dispatcher) InsertSummary(ctx context.Context, summary types.SessionSummary) {
	d.Close()
	d.deliver("insert_summary", func(s Sink) error {
		return s.InsertSummary(ctx, summary)
	})
}

// deliver runs op against each sink, logging and reporting the outcome.
func (d *Dispatcher) deliver(op string, fn func(Sink) error) {
	reporter := d.statusReporter()
	if reporter != nil {
		reporter.ReportSending()
	}

	failed := false
	for _, s := range d.sinks {
		if err := fn(s); err != nil {
			failed = true
			d.log.WithError(err).WithField("op", op).Error("database error")
			continue
		}
		d.log.WithField("op", op).Debug("record inserted")
	}

	if reporter != nil {
		if failed {
			reporter.ReportFailure()
		} else {
			reporter.ReportSuccess()
		}
	}
}

// Close stops accepting log entries and waits for queued ones to be written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.wg.Wait()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
