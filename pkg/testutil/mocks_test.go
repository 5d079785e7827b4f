package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/activity-monitor/pkg/motion"
	"github.com/Veraticus/activity-monitor/pkg/types"
)

func TestMockSink(t *testing.T) {
	sink := NewMockSink()
	ctx := context.Background()

	if err := sink.InsertLog(ctx, types.LogEntry{Status: types.StatusActive}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := sink.InsertSummary(ctx, types.SessionSummary{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sink.SetError(errors.New("disk full"))
	if err := sink.InsertLog(ctx, types.LogEntry{}); err == nil {
		t.Error("expected error after SetError")
	}

	if got := len(sink.GetLogs()); got != 1 {
		t.Errorf("expected 1 stored log, got %d", got)
	}
	if got := len(sink.GetSummaries()); got != 1 {
		t.Errorf("expected 1 stored summary, got %d", got)
	}
	if got := sink.GetAttempts(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestMockPresenceCheckerRepeatsLastResponse(t *testing.T) {
	m := NewMockPresenceChecker(false, true)
	want := []bool{false, true, true}
	for i, w := range want {
		got, err := m.IsPresent(context.Background(), "alice")
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("call %d: got %v, want %v", i, got, w)
		}
	}
	if m.Calls() != 3 {
		t.Errorf("expected 3 calls, got %d", m.Calls())
	}
}

func TestMockCapturer(t *testing.T) {
	first := &motion.Sample{}
	second := &motion.Sample{}
	boom := errors.New("no display")
	m := NewMockCapturer([]*motion.Sample{first, second}, []error{nil, boom})

	if s, err := m.Capture(context.Background()); err != nil || s != first {
		t.Errorf("call 1: got %v, %v", s, err)
	}
	if _, err := m.Capture(context.Background()); !errors.Is(err, boom) {
		t.Errorf("call 2: expected scripted error, got %v", err)
	}
	if s, _ := m.Capture(context.Background()); s != second {
		t.Error("call 3: expected the last sample to repeat")
	}
}

func TestFakeClockSleep(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	var seen []time.Time
	c.OnSleep(func(now time.Time) { seen = append(seen, now) })

	if err := c.Sleep(context.Background(), 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Advance(5 * time.Second)

	if want := start.Add(15 * time.Second); !c.Now().Equal(want) {
		t.Errorf("Now() = %v, want %v", c.Now(), want)
	}
	if len(seen) != 1 || !seen[0].Equal(start.Add(10*time.Second)) {
		t.Errorf("unexpected hook calls: %v", seen)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Sleep(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if got := c.Sleeps(); len(got) != 1 || got[0] != 10*time.Second {
		t.Errorf("Sleeps() = %v", got)
	}
}
