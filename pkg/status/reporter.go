package status

import (
	"sync"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// Stats counts record write outcomes seen by a Reporter.
type Stats struct {
	Written int
	Failed  int
	// Pending is writes started but not yet finished.
	Pending int
}

// Reporter turns record write outcomes into status line glyphs and keeps a
// running tally for the end of the session. A nil indicator only counts.
type Reporter struct {
	indicator *Indicator

	mu    sync.Mutex
	stats Stats
}

func NewReporter(indicator *Indicator) *Reporter {
	return &Reporter{indicator: indicator}
}

var _ interfaces.StatusReporter = (*Reporter)(nil)

func (r *Reporter) ReportSending() {
	r.update(StatusSending, func(s *Stats) { s.Pending++ })
}

func (r *Reporter) ReportSuccess() {
	r.update(StatusSuccess, func(s *Stats) {
		s.Written++
		s.settle()
	})
}

func (r *Reporter) ReportFailure() {
	r.update(StatusFailed, func(s *Stats) {
		s.Failed++
		s.settle()
	})
}

// Stats returns the tally so far.
func (r *Reporter) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

func (r *Reporter) update(status Status, fn func(*Stats)) {
	r.mu.Lock()
	fn(&r.stats)
	r.mu.Unlock()

	if r.indicator != nil {
		r.indicator.SetStatus(status)
	}
}

func (s *Stats) settle() {
	if s.Pending > 0 {
		s.Pending--
	}
}
