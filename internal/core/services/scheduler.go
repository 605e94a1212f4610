package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driving"
	"github.com/custodia-labs/triago-cli/internal/logger"
)

// defaultScanInterval is how often the scheduler wakes up to evaluate
// per-source sync frequencies. Individual sources still honour their own
// SyncFrequency; the tick only bounds scheduling latency.
const defaultScanInterval = 5 * time.Minute

// Scheduler periodically drives the detection engine. Start is
// non-blocking; Stop waits for an in-flight scan to finish.
type Scheduler struct {
	engine   driving.DetectionEngine
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler. A non-positive interval selects the
// default.
func NewScheduler(engine driving.DetectionEngine, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultScanInterval
	}
	return &Scheduler{engine: engine, interval: interval}
}

// Start launches the periodic scan loop. Calling Start on a running
// scheduler is a no-op. An immediate first scan runs before the ticker
// takes over.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(runCtx, s.done)
	logger.Info("scheduler: started, scanning every %s", s.interval)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.scan(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *Scheduler) scan(ctx context.Context) {
	ops, err := s.engine.DetectAll(ctx, domain.SyncScheduled, false)
	if err != nil {
		logger.Error("scheduler: scan failed: %v", err)
		return
	}
	if len(ops) > 0 {
		logger.Info("scheduler: scan checked %d sources", len(ops))
	}
}

// Stop halts the loop and waits for any in-flight scan to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.Info("scheduler: stopped")
}
