package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"NewsDebate/internal/ports"
)

// Scheduler wires the cron driver with the batch pipeline.
type Scheduler struct {
	driver    ports.Scheduler
	pipeline  *Pipeline
	batchSize int
	logger    *slog.Logger

	// running guards against overlapping runs when a batch outlasts the interval.
	running sync.Mutex
}

// NewScheduler returns a helper to start/stop recurring batches.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, batchSize int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, batchSize: batchSize, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if !s.running.TryLock() {
			s.logger.Warn("previous batch still running, skipping trigger", "trigger", trigger)
			return
		}
		defer s.running.Unlock()

		if _, err := s.pipeline.ProcessBatch(ctx, s.batchSize); err != nil {
			s.logger.Error("scheduled batch failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
