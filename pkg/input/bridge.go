// Package input turns platform pointer and keyboard events into activity
// signals.
package input

import (
	"errors"
	"sync"
	"time"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// ErrUnsupported is returned when no input hook is available in this build.
var ErrUnsupported = errors.New("input hook not supported in this build")

// Kind is the device class an event came from.
type Kind int

const (
	KindPointer Kind = iota
	KindKeyboard
)

func (k Kind) String() string {
	switch k {
	case KindPointer:
		return "pointer"
	case KindKeyboard:
		return "keyboard"
	default:
		return "unknown"
	}
}

// Event is a single input event.
type Event struct {
	Kind Kind
	Time time.Time
}

// Source delivers raw input events. emit is called from the source's own
// goroutine.
type Source interface {
	Start(emit func(Event)) error
	Stop()
}

// Listener receives the events of one device class.
type Listener struct {
	kind    Kind
	mu      sync.Mutex
	events  int64
	handler func(time.Time)
}

// Kind returns the device class this listener subscribes to.
func (l *Listener) Kind() Kind {
	return l.kind
}

// Events returns how many events the listener has delivered.
func (l *Listener) Events() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events
}

func (l *Listener) deliver(t time.Time) {
	l.mu.Lock()
	l.events++
	h := l.handler
	l.mu.Unlock()
	if h != nil {
		h(t)
	}
}

// Bridge fans a Source out to a pointer listener and a keyboard listener.
type Bridge struct {
	source   Source
	Pointer  *Listener
	Keyboard *Listener

	// dispatch holds the read lock while delivering, so Stop returns only
	// after in-flight callbacks have finished
	mu      sync.RWMutex
	running bool
}

// NewBridge creates a bridge over source.
func NewBridge(source Source) *Bridge {
	return &Bridge{
		source:   source,
		Pointer:  &Listener{kind: KindPointer},
		Keyboard: &Listener{kind: KindKeyboard},
	}
}

// Start subscribes both listeners and begins delivering to handler.
func (b *Bridge) Start(handler func(time.Time)) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return errors.New("input bridge already started")
	}
	for _, l := range []*Listener{b.Pointer, b.Keyboard} {
		l.mu.Lock()
		l.handler = handler
		l.mu.Unlock()
	}
	b.running = true
	b.mu.Unlock()

	if err := b.source.Start(b.dispatch); err != nil {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		return err
	}
	return nil
}

func (b *Bridge) dispatch(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running {
		return
	}
	switch ev.Kind {
	case KindPointer:
		b.Pointer.deliver(ev.Time)
	case KindKeyboard:
		b.Keyboard.deliver(ev.Time)
	}
}

// Stop unsubscribes both listeners. No handler call starts or is still
// running once Stop returns.
func (b *Bridge) Stop() {
	b.mu.Lock()
	wasRunning := b.running
	b.running = false
	b.mu.Unlock()

	if wasRunning {
		b.source.Stop()
	}
}

// Ensure Bridge implements InputSource
var _ interfaces.InputSource = (*Bridge)(nil)
