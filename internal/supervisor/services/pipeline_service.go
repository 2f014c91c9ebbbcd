// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/recommend"
)

// PipelineRunner runs one ranking pipeline. Satisfied by *recommend.Engine.
type PipelineRunner interface {
	Run(ctx context.Context) (*recommend.RunResult, error)
}

// PipelineServiceConfig holds configuration for the pipeline scheduler.
type PipelineServiceConfig struct {
	// RunOnStartup triggers a run when the service starts.
	RunOnStartup bool

	// Interval is how often to rerun the pipeline. Default: 24h.
	Interval time.Duration

	// OnSuccess is called after every successful run.
	OnSuccess func(*recommend.RunResult)
}

// PipelineService runs the ranking pipeline on a schedule under suture
// supervision. Run failures are logged and do not restart the service.
type PipelineService struct {
	runner PipelineRunner
	config PipelineServiceConfig
	logger zerolog.Logger
	name   string
}

// NewPipelineService creates a new pipeline scheduler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPipelineService(runner PipelineRunner, cfg PipelineServiceConfig, logger zerolog.Logger) *PipelineService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &PipelineService{
		runner: runner,
		config: cfg,
		logger: logger.With().Str("service", "pipeline").Logger(),
		name:   "pipeline-scheduler",
	}
}

// Serve implements suture.Service.
func (s *PipelineService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("Pipeline scheduler starting")

	if s.config.RunOnStartup {
		s.run(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Pipeline scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx, "schedule")
		}
	}
}

func (s *PipelineService) run(ctx context.Context, trigger string) {
	res, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, recommend.ErrRunInProgress):
		s.logger.Info().Str("trigger", trigger).Msg("Previous run still in progress, skipping")
	case err != nil && ctx.Err() != nil:
		s.logger.Debug().Err(err).Msg("Run interrupted by shutdown")
	case err != nil:
		s.logger.Error().Err(err).Str("trigger", trigger).Msg("Pipeline run failed, previous artifacts kept")
	default:
		s.logger.Info().
			Str("trigger", trigger).
			Str("run_id", res.RunID).
			Dur("duration", res.Duration()).
			Msg("Pipeline run complete")
		if s.config.OnSuccess != nil {
			s.config.OnSuccess(res)
		}
	}
}

// String returns the service name for logging.
func (s *PipelineService) String() string {
	return s.name
}
