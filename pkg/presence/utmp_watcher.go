package presence

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// UtmpWatcher signals whenever the login records file changes. Logins and
// logouts rewrite it, so a change is a hint to re-check presence early.
type UtmpWatcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}
	done    chan struct{}
	log     logrus.FieldLogger

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewUtmpWatcher starts watching path.
func NewUtmpWatcher(path string, log logrus.FieldLogger) (*UtmpWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &UtmpWatcher{
		watcher: watcher,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     log,
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *UtmpWatcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.notify()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("utmp watcher error")
		case <-w.done:
			return
		}
	}
}

// notify coalesces bursts into a single pending change.
func (w *UtmpWatcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

// Changes returns a channel that receives after the file changed.
func (w *UtmpWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops watching.
func (w *UtmpWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

// Watching combines a checker with a change source.
type Watching struct {
	interfaces.PresenceChecker
	Watcher *UtmpWatcher
}

// Changes delegates to the watcher.
func (w *Watching) Changes() <-chan struct{} {
	return w.Watcher.Changes()
}

// Close stops the watcher.
func (w *Watching) Close() error {
	return w.Watcher.Close()
}

var (
	_ interfaces.PresenceNotifier = (*UtmpWatcher)(nil)
	_ interfaces.PresenceNotifier = (*Watching)(nil)
)
