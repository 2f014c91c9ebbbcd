// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/curator/internal/api"
	"github.com/tomtom215/curator/internal/artifact"
	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/recommend"
	"github.com/tomtom215/curator/internal/supervisor"
	"github.com/tomtom215/curator/internal/supervisor/services"
)

// serve runs the supervisor tree until ctx is canceled.
func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.WithComponent("server")

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("Error releasing resources")
		}
	}()

	apiServer := api.NewServer(api.Config{
		ArtifactDir:       cfg.Output.Dir,
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitReqs,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	}, a.engine.Status, logger)

	// Serve the previous run's artifacts until the first run completes.
	if err := apiServer.Reload(); err != nil {
		if errors.Is(err, artifact.ErrNoRankings) {
			logger.Info().Str("dir", cfg.Output.Dir).Msg("No artifacts yet, API unavailable until the first run")
		} else {
			logger.Warn().Err(err).Msg("Failed to load existing artifacts")
		}
	}

	// sutureslog needs slog; the adapter writes through zerolog.
	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: 10 * time.Second,
	})

	pipelineCfg := services.PipelineServiceConfig{
		RunOnStartup: cfg.Schedule.RunOnStartup,
		Interval:     cfg.Schedule.Interval,
	}
	reloadCfg := services.ReloadServiceConfig{PollInterval: cfg.Server.ReloadInterval}
	switch {
	case a.publisher != nil:
		tree.AddMessagingService(services.NewReloadService(a.publisher, apiServer, reloadCfg, logger))
	default:
		pipelineCfg.OnSuccess = func(*recommend.RunResult) {
			if err := apiServer.Reload(); err != nil {
				logger.Warn().Err(err).Msg("Artifact reload failed")
			}
		}
		if reloadCfg.PollInterval > 0 {
			tree.AddMessagingService(services.NewReloadService(nil, apiServer, reloadCfg, logger))
		}
	}
	tree.AddPipelineService(services.NewPipelineService(a.engine, pipelineCfg, logger))

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(httpServer, 10*time.Second))

	logger.Info().
		Str("addr", httpServer.Addr).
		Bool("notify", a.publisher != nil).
		Dur("interval", cfg.Schedule.Interval).
		Msg("Starting supervisor tree")

	serveErr := tree.Serve(ctx)
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	} else if serveErr != nil {
		logger.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport() //nolint:errcheck // report is best effort
	for _, svc := range unstopped {
		logger.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logger.Info().Msg("Curator stopped")
	return serveErr
}
