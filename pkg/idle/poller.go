package idle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Veraticus/activity-monitor/pkg/interfaces"
)

// DefaultPollInterval is how often the idle counter is read.
const DefaultPollInterval = time.Second

// ErrNoQuerier is returned by Start when the platform has no idle source.
var ErrNoQuerier = errors.New("no idle time source available")

// Poller reads an idle counter periodically and signals activity whenever
// the counter shows input since the previous read.
type Poller struct {
	querier  Querier
	interval time.Duration
	log      logrus.FieldLogger
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a poller over querier. querier may be nil, in which case
// Start fails with ErrNoQuerier.
func NewPoller(querier Querier, interval time.Duration, log logrus.FieldLogger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		querier:  querier,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Start begins polling, calling handler with the estimated time of the
// latest input.
func (p *Poller) Start(handler func(time.Time)) error {
	if p.querier == nil {
		return ErrNoQuerier
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return errors.New("idle poller already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, handler, p.done)
	return nil
}

func (p *Poller) loop(ctx context.Context, handler func(time.Time), done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	prev := time.Duration(-1)
	for {
		idle, err := p.querier.IdleTime(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			if p.log != nil {
				p.log.WithError(err).Debug("idle query failed")
			}
		default:
			if idle < p.interval || (prev >= 0 && idle < prev) {
				handler(p.now().Add(-idle))
			}
			prev = idle
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop ends polling. No handler call is running or starts after Stop
// returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Ensure Poller implements InputSource
var _ interfaces.InputSource = (*Poller)(nil)
