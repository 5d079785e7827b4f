//go:build cgo
// +build cgo

package input

import (
	"os"
	"runtime"
	"sync"
	"time"

	hook "github.com/robotn/gohook"
)

// HookSource reads the global input hook.
type HookSource struct {
	mu      sync.Mutex
	started bool
}

// NewPlatformSource returns the input source for this build.
func NewPlatformSource() Source {
	return &HookSource{}
}

// Start installs the hook and forwards pointer and keyboard events. It fails
// with ErrUnsupported when the session has no display the hook can read.
func (s *HookSource) Start(emit func(Event)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkHookSession(runtime.GOOS, os.Getenv); err != nil {
		return err
	}

	raw := hook.Start()
	s.started = true

	go func() {
		for ev := range raw {
			if kind, ok := classify(ev.Kind); ok {
				emit(Event{Kind: kind, Time: time.Now()})
			}
		}
	}()
	return nil
}

// Stop removes the hook.
func (s *HookSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		hook.End()
		s.started = false
	}
}

func classify(kind uint8) (Kind, bool) {
	switch kind {
	case hook.MouseMove, hook.MouseDrag, hook.MouseDown, hook.MouseUp, hook.MouseWheel:
		return KindPointer, true
	case hook.KeyDown:
		return KindKeyboard, true
	default:
		return 0, false
	}
}
