// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/cluster"
	"github.com/tomtom215/curator/internal/embed"
	"github.com/tomtom215/curator/internal/metrics"
)

// CatalogSource loads the item catalog.
type CatalogSource interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// VectorSource loads item embeddings for a catalog.
type VectorSource interface {
	Load(ctx context.Context, items []catalog.Item) (*embed.Store, error)
}

// ClusterSource loads upstream cluster membership.
type ClusterSource interface {
	Load(ctx context.Context) ([]cluster.Cluster, error)
}

// ArtifactWriter persists the outputs of a run and returns the paths written.
type ArtifactWriter interface {
	Write(ctx context.Context, res *RunResult) ([]string, error)
}

// Notifier announces a completed run.
type Notifier interface {
	NotifyRunCompleted(ctx context.Context, res *RunResult) error
}

// CatalogDir loads the catalog from a directory of per-type JSON arrays.
type CatalogDir struct {
	Dir    string
	Logger zerolog.Logger
}

// Load implements CatalogSource.
func (c *CatalogDir) Load(ctx context.Context) (*catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cat, stats, err := catalog.Load(c.Dir, c.Logger)
	if err != nil {
		return nil, err
	}
	metrics.RecordCatalogRejected("invalid", stats.Invalid)
	metrics.RecordCatalogRejected("duplicate", stats.Duplicates)
	c.Logger.Info().
		Int("files", stats.Files).
		Int("records", stats.Records).
		Int("items", cat.Len()).
		Int("invalid", stats.Invalid).
		Int("duplicates", stats.Duplicates).
		Msg("Catalog loaded")
	return cat, nil
}

// EmbeddingDir loads precomputed embeddings and fills the gaps from an
// optional embedder and cache. A missing embedding directory is not an
// error; every item then goes through the embedder or stays without a
// vector.
type EmbeddingDir struct {
	Dir      string
	Embedder embed.Embedder
	Cache    embed.Cache
	Logger   zerolog.Logger
}

// Load implements VectorSource.
func (e *EmbeddingDir) Load(ctx context.Context, items []catalog.Item) (*embed.Store, error) {
	store, err := embed.Load(e.Dir)
	switch {
	case errors.Is(err, embed.ErrNoEmbeddings):
		e.Logger.Warn().Str("dir", e.Dir).Msg("No precomputed embeddings found")
		store = embed.NewStore(0)
	case err != nil:
		return nil, err
	}

	stats, err := embed.Fill(ctx, store, items, e.Embedder, e.Cache, e.Logger)
	if err != nil {
		return nil, err
	}
	e.Logger.Info().
		Int("vectors", store.Len()).
		Int("dim", store.Dim()).
		Int("missing", stats.Missing).
		Int("fetched", stats.Fetched).
		Msg("Embeddings ready")
	return store, nil
}

// ClusterFile loads clusters.json.
type ClusterFile struct {
	Path   string
	Logger zerolog.Logger
}

// Load implements ClusterSource.
func (c *ClusterFile) Load(ctx context.Context) ([]cluster.Cluster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clusters, stats, err := cluster.Load(c.Path)
	if err != nil {
		return nil, err
	}
	if stats.Orphans > 0 {
		c.Logger.Warn().Int("orphans", stats.Orphans).Msg("Cluster assignments reference unknown clusters")
	}
	if stats.Invalid > 0 {
		c.Logger.Warn().Int("invalid", stats.Invalid).Msg("Cluster assignments with malformed item IDs skipped")
	}
	return clusters, nil
}
