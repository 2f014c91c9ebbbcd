// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/artifact"
	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/recommend"
)

// StatusFunc reports the pipeline engine state. recommend.Engine.Status
// satisfies it.
type StatusFunc func() recommend.RunStatus

// Config configures the API server.
type Config struct {
	// ArtifactDir is the directory written by the pipeline.
	ArtifactDir string

	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// Server serves the latest artifact snapshot. Reload swaps the snapshot
// atomically; requests in flight keep the snapshot they started with.
type Server struct {
	config    Config
	status    StatusFunc
	snapshot  atomic.Pointer[artifact.Snapshot]
	reloadMu  sync.Mutex
	startTime time.Time
	logger    zerolog.Logger
}

// NewServer creates a server. status may be nil when no engine runs in the
// same process.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewServer(cfg Config, status StatusFunc, logger zerolog.Logger) *Server {
	return &Server{
		config:    cfg,
		status:    status,
		startTime: time.Now(),
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Reload loads the artifact directory and swaps the snapshot. On failure
// the previous snapshot stays in place.
func (s *Server) Reload() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	snap, err := artifact.Load(s.config.ArtifactDir)
	metrics.RecordArtifactReload(err)
	if err != nil {
		s.logger.Warn().Err(err).Str("dir", s.config.ArtifactDir).Msg("Artifact reload failed, keeping previous snapshot")
		return err
	}

	prev := s.snapshot.Swap(snap)
	if prev != nil && prev.ETag == snap.ETag {
		s.logger.Debug().Str("etag", snap.ETag).Msg("Artifacts unchanged")
		return nil
	}
	s.logger.Info().
		Str("run_id", snap.Rankings.RunID).
		Int("items", len(snap.Rankings.Rankings)).
		Str("etag", snap.ETag).
		Msg("Artifacts loaded")
	return nil
}

// Snapshot returns the current snapshot, or nil before the first
// successful Reload.
func (s *Server) Snapshot() *artifact.Snapshot {
	return s.snapshot.Load()
}
