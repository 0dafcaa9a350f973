package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"ProxyPool/internal/ports"
)

// Scheduler wires the ticker driver with the re-verification job.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop the recurring refresh.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the stored-proxy refresh with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		verified, err := s.pipeline.RefreshStored(ctx)
		if err != nil {
			s.logger.Error("scheduled refresh failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled refresh finished", "trigger", trigger, "verified", verified)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
