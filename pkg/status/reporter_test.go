package status

import (
	"bytes"
	"strings"
	"testing"
)

func TestReporterDrawsOutcome(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, true, &fixedTotals{})
	reporter := NewReporter(indicator)

	steps := []struct {
		report func()
		want   Status
	}{
		{reporter.ReportSending, StatusSending},
		{reporter.ReportSuccess, StatusSuccess},
		{reporter.ReportSending, StatusSending},
		{reporter.ReportFailure, StatusFailed},
	}
	for i, step := range steps {
		step.report()
		if indicator.status != step.want {
			t.Errorf("step %d: status = %v, want %v", i, indicator.status, step.want)
		}
	}

	if !strings.Contains(buf.String(), "✗ db") {
		t.Errorf("expected the failure glyph to be drawn, got %q", buf.String())
	}
}

func TestReporterStats(t *testing.T) {
	reporter := NewReporter(nil)

	reporter.ReportSending()
	reporter.ReportSuccess()
	reporter.ReportSending()
	reporter.ReportSending()
	reporter.ReportFailure()

	got := reporter.Stats()
	want := Stats{Written: 1, Failed: 1, Pending: 1}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	// Outcomes without a matching start never drive Pending negative
	reporter.ReportSuccess()
	reporter.ReportSuccess()
	if p := reporter.Stats().Pending; p != 0 {
		t.Errorf("Pending = %d, want 0", p)
	}
}
