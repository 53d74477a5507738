package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// Scheduler runs ExportAll for the current window on a fixed interval.
type Scheduler struct {
	worker   *LedgerWorker
	interval time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewScheduler(worker *LedgerWorker, interval time.Duration) *Scheduler {
	return &Scheduler{
		worker:   worker,
		interval: interval,
		logger:   log.Default(log.ComponentWorker),
	}
}

// Start begins the export loop. An export runs immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.run(ctx, stop, done)

	s.logger.InfoContext(ctx, "Export scheduler started", "interval", s.interval.String())
	return nil
}

// Stop signals the loop and waits for it, or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stop)

	select {
	case <-done:
		s.logger.InfoContext(ctx, "Export scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Export scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	win := core.CurrentWindow(s.worker.now())
	if _, err := s.worker.ExportAll(ctx, win); err != nil && ctx.Err() == nil {
		s.logger.ErrorContext(ctx, "Scheduled export failed", "window", win.String(), log.FieldError, err)
	}
}
