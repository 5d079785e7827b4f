package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/Veraticus/activity-monitor/pkg/motion"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

// MockSink is a thread-safe mock implementation of record.Sink for testing
type MockSink struct {
	mu        sync.Mutex
	logs      []types.LogEntry
	summaries []types.SessionSummary
	attempts  int // Track all insert attempts
	insertErr error
	delay     time.Duration
}

// NewMockSink creates a new mock sink
func NewMockSink() *MockSink {
	return &MockSink{}
}

// InsertLog implements the Sink interface
func (m *MockSink) InsertLog(_ context.Context, e types.LogEntry) error {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.insertErr != nil {
		return m.insertErr
	}
	m.logs = append(m.logs, e)
	return nil
}

// InsertSummary implements the Sink interface
func (m *MockSink) InsertSummary(_ context.Context, s types.SessionSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts++
	if m.insertErr != nil {
		return m.insertErr
	}
	m.summaries = append(m.summaries, s)
	return nil
}

// GetLogs returns a copy of successfully inserted log entries
func (m *MockSink) GetLogs() []types.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]types.LogEntry, len(m.logs))
	copy(result, m.logs)
	return result
}

// GetSummaries returns a copy of successfully inserted summaries
func (m *MockSink) GetSummaries() []types.SessionSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]types.SessionSummary, len(m.summaries))
	copy(result, m.summaries)
	return result
}

// GetAttempts returns how many inserts were attempted, including failures
func (m *MockSink) GetAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// SetError sets the error to return on insert calls
func (m *MockSink) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertErr = err
}

// SetDelay sets a delay before each InsertLog call
func (m *MockSink) SetDelay(delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = delay
}

// MockStatusReporter records status reports
type MockStatusReporter struct {
	mu       sync.Mutex
	sending  int
	success  int
	failures int
}

// ReportSending implements interfaces.StatusReporter
func (m *MockStatusReporter) ReportSending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sending++
}

// ReportSuccess implements interfaces.StatusReporter
func (m *MockStatusReporter) ReportSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.success++
}

// ReportFailure implements interfaces.StatusReporter
func (m *MockStatusReporter) ReportFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

// Counts returns the number of sending, success and failure reports
func (m *MockStatusReporter) Counts() (sending, success, failures int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sending, m.success, m.failures
}

// MockPresenceChecker answers presence queries from a script
type MockPresenceChecker struct {
	mu        sync.Mutex
	responses []bool
	err       error
	calls     int
}

// NewMockPresenceChecker returns a checker that answers with responses in
// order and then repeats the last one
func NewMockPresenceChecker(responses ...bool) *MockPresenceChecker {
	if len(responses) == 0 {
		responses = []bool{true}
	}
	return &MockPresenceChecker{responses: responses}
}

// IsPresent implements interfaces.PresenceChecker
func (m *MockPresenceChecker) IsPresent(context.Context, string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	if i >= len(m.responses) {
		i = len(m.responses) - 1
	}
	m.calls++
	return m.responses[i], m.err
}

// SetError sets the error to return on IsPresent
func (m *MockPresenceChecker) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times IsPresent was called
func (m *MockPresenceChecker) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockCapturer returns scripted samples
type MockCapturer struct {
	mu      sync.Mutex
	samples []*motion.Sample
	errs    []error
	calls   int
}

// NewMockCapturer returns a capturer that hands out samples in order and
// then repeats the last one. A nil entry with a non-nil error in errs
// simulates a capture failure.
func NewMockCapturer(samples []*motion.Sample, errs []error) *MockCapturer {
	return &MockCapturer{samples: samples, errs: errs}
}

// Capture implements the capturer used by the monitor
func (m *MockCapturer) Capture(context.Context) (*motion.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if len(m.samples) == 0 {
		return nil, nil
	}
	if i >= len(m.samples) {
		i = len(m.samples) - 1
	}
	return m.samples[i], nil
}

// Calls returns how many captures were requested
func (m *MockCapturer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
