// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/notify"
)

// RunSubscriber delivers run-completed notifications. Satisfied by
// *notify.Publisher.
type RunSubscriber interface {
	Subscribe(ctx context.Context) (<-chan notify.RunCompleted, error)
}

// Reloader reloads served artifacts. Satisfied by *api.Server.
type Reloader interface {
	Reload() error
}

// ReloadServiceConfig holds configuration for the artifact reloader.
type ReloadServiceConfig struct {
	// PollInterval reloads on a timer as well. Zero disables polling.
	PollInterval time.Duration
}

// ReloadService keeps the API snapshot current. It reloads on every
// run-completed notification and, when configured, on a poll interval.
// A nil subscriber runs in poll-only mode.
type ReloadService struct {
	subscriber RunSubscriber
	reloader   Reloader
	config     ReloadServiceConfig
	logger     zerolog.Logger
	name       string
}

// NewReloadService creates a new artifact reloader.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewReloadService(subscriber RunSubscriber, reloader Reloader, cfg ReloadServiceConfig, logger zerolog.Logger) *ReloadService {
	return &ReloadService{
		subscriber: subscriber,
		reloader:   reloader,
		config:     cfg,
		logger:     logger.With().Str("service", "reload").Logger(),
		name:       "artifact-reloader",
	}
}

// Serve implements suture.Service. A closed subscription is returned as an
// error so that suture resubscribes.
func (s *ReloadService) Serve(ctx context.Context) error {
	var events <-chan notify.RunCompleted
	if s.subscriber != nil {
		ch, err := s.subscriber.Subscribe(ctx)
		if err != nil {
			return fmt.Errorf("subscribe to run notifications: %w", err)
		}
		events = ch
	}

	var tick <-chan time.Time
	if s.config.PollInterval > 0 {
		ticker := time.NewTicker(s.config.PollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	if events == nil && tick == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("run notification subscription closed")
			}
			s.logger.Debug().Str("run_id", ev.RunID).Msg("Run completed, reloading artifacts")
			s.reload()
		case <-tick:
			s.reload()
		}
	}
}

func (s *ReloadService) reload() {
	if err := s.reloader.Reload(); err != nil {
		s.logger.Warn().Err(err).Msg("Artifact reload failed")
	}
}

// String implements fmt.Stringer for logging.
func (s *ReloadService) String() string {
	return s.name
}
