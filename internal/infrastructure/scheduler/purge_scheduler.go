// Package scheduler runs periodic maintenance jobs in the background.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Purger deletes expired records and reports how many were removed
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeSchedulerConfig holds configuration for the purge scheduler
type PurgeSchedulerConfig struct {
	// Name identifies the job in logs
	Name string

	// Interval is the time between two purge runs
	Interval time.Duration

	// Timeout bounds a single run
	Timeout time.Duration
}

// DefaultPurgeSchedulerConfig returns default purge scheduler configuration
func DefaultPurgeSchedulerConfig() PurgeSchedulerConfig {
	return PurgeSchedulerConfig{
		Name:     "warning_acknowledgements",
		Interval: time.Hour,
		Timeout:  5 * time.Minute,
	}
}

// PurgeScheduler periodically deletes expired warning acknowledgements
type PurgeScheduler struct {
	config PurgeSchedulerConfig
	purger Purger
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
	lastCount int64
}

// NewPurgeScheduler creates a new purge scheduler
func NewPurgeScheduler(config PurgeSchedulerConfig, purger Purger, logger *zap.Logger) (*PurgeScheduler, error) {
	if purger == nil {
		return nil, fmt.Errorf("%w: purger is required", ErrInvalidConfig)
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if config.Timeout <= 0 {
		config.Timeout = config.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurgeScheduler{
		config: config,
		purger: purger,
		logger: logger.With(zap.String("job", config.Name)),
	}, nil
}

// Start starts the purge loop
func (s *PurgeScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Purge scheduler started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop stops the purge loop, waiting for a running purge until ctx is done
func (s *PurgeScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Purge scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Purge scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *PurgeScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx)
		}
	}
}

// TriggerImmediatePurge runs one purge in the background
func (s *PurgeScheduler) TriggerImmediatePurge(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.execute(ctx)
	}()
	return nil
}

func (s *PurgeScheduler) execute(ctx context.Context) {
	purgeCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	deleted, err := s.purger.PurgeExpired(purgeCtx)
	duration := time.Since(start)
	if err != nil {
		s.logger.Error("Purge failed", zap.Duration("duration", duration), zap.Error(err))
		return
	}

	s.mu.Lock()
	s.lastRun = start
	s.lastCount = deleted
	s.mu.Unlock()

	s.logger.Info("Purge completed",
		zap.Duration("duration", duration),
		zap.Int64("deleted_count", deleted),
	)
}

// LastRun returns the start time and deleted count of the last successful purge
func (s *PurgeScheduler) LastRun() (time.Time, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastCount
}

// IsRunning returns whether the scheduler is running
func (s *PurgeScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
