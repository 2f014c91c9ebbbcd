// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/artifact"
	"github.com/tomtom215/curator/internal/cluster"
	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/embed"
	"github.com/tomtom215/curator/internal/engagement"
	"github.com/tomtom215/curator/internal/notify"
	"github.com/tomtom215/curator/internal/recommend"
	"github.com/tomtom215/curator/internal/recommend/storage"
)

// app holds the wired pipeline and the resources to release on exit.
type app struct {
	engine    *recommend.Engine
	publisher *notify.Publisher
	closers   []io.Closer
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildApp wires the pipeline sources, stores and notifier from cfg.
//
//nolint:gocritic,gocyclo // zerolog.Logger is designed to be passed by value; sequential setup
func buildApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close() //nolint:errcheck // setup error takes precedence
		}
	}()

	deps := recommend.Dependencies{
		Catalog: &recommend.CatalogDir{Dir: cfg.Catalog.Dir, Logger: logger},
	}

	// Embeddings: precomputed vectors, gaps filled by the provider and cache.
	vectors := &recommend.EmbeddingDir{Dir: cfg.Embeddings.Dir, Logger: logger}
	oa := cfg.Embeddings.OpenAI
	if oa.Enabled {
		vectors.Embedder = embed.NewOpenAIEmbedder(&embed.OpenAIConfig{
			APIKey:            oa.APIKey,
			BaseURL:           oa.BaseURL,
			Model:             oa.Model,
			Dimensions:        oa.Dimensions,
			RequestsPerSecond: oa.RequestsPerSecond,
			BatchSize:         oa.BatchSize,
		})
	}
	if cfg.Embeddings.CacheDir != "" {
		cache, err := embed.OpenBadgerCache(cfg.Embeddings.CacheDir)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, cache)
		vectors.Cache = cache
	}
	deps.Vectors = vectors

	events, err := engagement.NewSource(cfg.Events.Source, cfg.Events.Path)
	if err != nil {
		return nil, fmt.Errorf("open event source: %w", err)
	}
	resilient := engagement.NewResilientSource(events, engagement.ResilientConfig{
		Attempts:      cfg.Events.RetryAttempts,
		Delay:         cfg.Events.RetryDelay,
		Timeout:       cfg.Events.Timeout,
		RatePerSecond: cfg.Events.RateLimit,
	})
	a.closers = append(a.closers, resilient)
	deps.Events = resilient

	if cfg.Clusters.Path != "" {
		deps.Clusters = &recommend.ClusterFile{Path: cfg.Clusters.Path, Logger: logger}
		if cfg.Clusters.Relabel && oa.Enabled {
			deps.Labeler = cluster.NewOpenAILabeler(&cluster.LLMConfig{
				APIKey:            oa.APIKey,
				BaseURL:           oa.BaseURL,
				Model:             oa.ChatModel,
				RequestsPerSecond: oa.RequestsPerSecond,
			})
		}
	}

	if cfg.Models.Dir != "" {
		models, err := storage.NewStore(cfg.Models.Dir)
		if err != nil {
			return nil, fmt.Errorf("open model store: %w", err)
		}
		deps.Models = models
	}

	recCfg := recommend.FromAppConfig(cfg)
	deps.Artifacts = artifact.NewWriter(cfg.Output.Dir, recCfg.TrendingSize, logger)

	if cfg.Notify.Enabled {
		pub, err := notify.New(notify.Config{
			Backend:     cfg.Notify.Backend,
			URL:         cfg.Notify.NATSURL,
			Topic:       cfg.Notify.Topic,
			ArtifactDir: cfg.Output.Dir,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create notifier: %w", err)
		}
		a.closers = append(a.closers, pub)
		a.publisher = pub
		deps.Notifier = pub
	}

	a.engine, err = recommend.NewEngine(recCfg, deps, logger)
	if err != nil {
		return nil, err
	}
	ok = true
	return a, nil
}
