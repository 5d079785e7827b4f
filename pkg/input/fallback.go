package input

import (
	"errors"
	"sync"
	"time"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// Fallback starts the first of its sources that starts successfully.
type Fallback struct {
	sources []interfaces.InputSource

	mu     sync.Mutex
	active interfaces.InputSource
}

// NewFallback creates a fallback over sources in order of preference. Nil
// sources are skipped.
func NewFallback(sources ...interfaces.InputSource) *Fallback {
	f := &Fallback{}
	for _, s := range sources {
		if s != nil {
			f.sources = append(f.sources, s)
		}
	}
	return f
}

// Start tries each source in turn. It fails only if every source fails.
func (f *Fallback) Start(handler func(time.Time)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.active != nil {
		return errors.New("input already started")
	}

	var errs []error
	for _, s := range f.sources {
		if err := s.Start(handler); err != nil {
			errs = append(errs, err)
			continue
		}
		f.active = s
		return nil
	}
	if len(errs) == 0 {
		return ErrUnsupported
	}
	return errors.Join(errs...)
}

// Active returns the source that started, or nil.
func (f *Fallback) Active() interfaces.InputSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Stop stops the running source.
func (f *Fallback) Stop() {
	f.mu.Lock()
	active := f.active
	f.active = nil
	f.mu.Unlock()

	if active != nil {
		active.Stop()
	}
}

var _ interfaces.InputSource = (*Fallback)(nil)
