package record_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Veraticus/activity-monitor/pkg/record"
	"github.com/Veraticus/activity-monitor/pkg/testutil"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

func newTestLogger() (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(buf)
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func TestDispatcherDeliversLogsBeforeSummary(t *testing.T) {
	log, _ := newTestLogger()
	sink := testutil.NewMockSink()
	d := record.NewDispatcher(log, 8, sink)

	for i := 0; i < 3; i++ {
		d.InsertLog(types.LogEntry{Username: "alice", Timestamp: time.Unix(int64(i), 0)})
	}
	d.InsertSummary(context.Background(), types.SessionSummary{Username: "alice"})

	logs := sink.GetLogs()
	if len(logs) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(logs))
	}
	for i, e := range logs {
		if e.Timestamp.Unix() != int64(i) {
			t.Errorf("entry %d out of order: %v", i, e.Timestamp)
		}
	}
	if len(sink.GetSummaries()) != 1 {
		t.Errorf("expected 1 summary, got %d", len(sink.GetSummaries()))
	}
}

func TestDispatcherSwallowsSinkErrors(t *testing.T) {
	log, buf := newTestLogger()
	failing := testutil.NewMockSink()
	failing.SetError(errors.New("connection refused"))
	healthy := testutil.NewMockSink()
	reporter := &testutil.MockStatusReporter{}

	d := record.NewDispatcher(log, 8, failing, healthy)
	d.SetStatusReporter(reporter)

	d.InsertLog(types.LogEntry{Username: "alice"})
	d.InsertSummary(context.Background(), types.SessionSummary{Username: "alice"})

	if failing.GetAttempts() != 2 {
		t.Errorf("expected 2 attempts on failing sink, got %d", failing.GetAttempts())
	}
	if len(healthy.GetLogs()) != 1 || len(healthy.GetSummaries()) != 1 {
		t.Error("healthy sink should still receive every record")
	}
	if !bytes.Contains(buf.Bytes(), []byte("connection refused")) {
		t.Errorf("expected the error to be logged, got %q", buf.String())
	}

	sending, success, failures := reporter.Counts()
	if sending != 2 || failures != 2 || success != 0 {
		t.Errorf("unexpected reports: sending=%d success=%d failures=%d", sending, success, failures)
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	log, buf := newTestLogger()
	sink := testutil.NewMockSink()
	sink.SetDelay(50 * time.Millisecond)

	d := record.NewDispatcher(log, 1, sink)

	// One in flight, one queued, the rest dropped
	for i := 0; i < 5; i++ {
		d.InsertLog(types.LogEntry{Timestamp: time.Unix(int64(i), 0)})
	}
	d.Close()

	got := len(sink.GetLogs())
	if got < 1 || got > 2 {
		t.Errorf("expected 1 or 2 entries written, got %d", got)
	}
	if !bytes.Contains(buf.Bytes(), []byte("queue full")) {
		t.Errorf("expected a dropped-entry warning, got %q", buf.String())
	}
}

func TestDispatcherInsertAfterClose(t *testing.T) {
	log, _ := newTestLogger()
	sink := testutil.NewMockSink()
	d := record.NewDispatcher(log, 4, sink)

	d.Close()
	d.Close() // idempotent
	d.InsertLog(types.LogEntry{})

	if len(sink.GetLogs()) != 0 {
		t.Error("expected no entries after close")
	}
}

func TestStdoutSinkImplementsSink(t *testing.T) {
	var _ record.Sink = record.NewStdoutSink()
}
