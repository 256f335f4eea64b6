package engine

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"classline/pkg/logger"
	"classline/pkg/telemetry"
)

// Scheduler drives the polling loop for one conversation screen. One
// timer per screen; Start is bound to focus/foreground, Stop to
// blur/background. Stop cancels future ticks only — a request already
// in flight resolves and merges idempotently.
//
// Every refresh, manual or scheduled, passes the debounce guard: a
// rate.Limiter with a burst of one, so refreshes closer together than
// the configured floor are skipped rather than queued.
type Scheduler struct {
	interval time.Duration
	limiter  *rate.Limiter
	refresh  func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewScheduler(interval, minInterval time.Duration, refresh func(ctx context.Context)) *Scheduler {
	return &Scheduler{
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(minInterval), 1),
		refresh:  refresh,
	}
}

// Start begins polling and fires one immediate (debounced) refresh.
// Calling Start while running is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	s.Refresh()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh()
		}
	}
}

// Stop cancels future ticks. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Running reports whether the polling loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Refresh runs one refresh through the debounce guard and returns
// immediately; the refresh body runs on its own goroutine so a caller on
// the UI path never blocks on the network. The body gets a background
// context on purpose: losing focus must not cancel a request that
// already left.
func (s *Scheduler) Refresh() {
	if !s.limiter.Allow() {
		telemetry.RefreshesSkipped.Inc()
		logger.Debug("refresh_debounced")
		return
	}
	go s.refresh(context.Background())
}
