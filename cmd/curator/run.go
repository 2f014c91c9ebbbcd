// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package main

import (
	"context"

	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/metrics"
)

// runOnce executes a single pipeline run.
func runOnce(ctx context.Context, cfg *config.Config) error {
	logger := logging.WithComponent("cli")

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error releasing resources")
		}
	}()

	res, runErr := a.engine.Run(ctx)

	if path := cfg.Output.MetricsTextfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Failed to write metrics textfile")
		}
	}
	if runErr != nil {
		return runErr
	}

	ranking := res.Ranking
	observed, cold := ranking.Table.Counts()
	logger.Info().
		Str("run_id", res.RunID).
		Str("algorithm", ranking.Algorithm()).
		Int("observed", observed).
		Int("cold_start", cold).
		Int("carousels", len(res.Carousels)).
		Strs("artifacts", res.Artifacts).
		Dur("duration", res.Duration()).
		Msg("Ranking run complete")
	return nil
}
