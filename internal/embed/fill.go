// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package embed

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/metrics"
)

// FillStats reports what Fill did.
type FillStats struct {
	Missing int `json:"missing"`
	Cached  int `json:"cached"`
	Fetched int `json:"fetched"`
	Failed  int `json:"failed"`
}

// Fill adds vectors for catalog items missing from store, first from cache
// and then from emb. Provider failures are logged and leave the affected
// items without a vector; only context cancellation is returned. emb and
// cache may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Fill(ctx context.Context, store *Store, items []catalog.Item, emb Embedder, cache Cache, logger zerolog.Logger) (FillStats, error) {
	var stats FillStats

	type pending struct {
		id, key, text string
	}
	var todo []pending

	model := store.Model()
	if emb != nil {
		model = emb.Model()
	}

	for i := range items {
		it := &items[i]
		if store.Has(it.ID) {
			continue
		}
		stats.Missing++

		text := Text(it)
		key := CacheKey(model, text)
		if cache != nil {
			vec, ok, err := cache.Get(key)
			if err != nil {
				logger.Warn().Err(err).Str("item", it.ID).Msg("Embedding cache read failed")
			}
			metrics.RecordEmbeddingCache(ok)
			if ok && store.Put(it.ID, vec) == nil {
				stats.Cached++
				continue
			}
		}
		todo = append(todo, pending{id: it.ID, key: key, text: text})
	}

	if len(todo) == 0 || emb == nil {
		stats.Failed = len(todo)
		logFill(logger, &stats)
		return stats, nil
	}

	texts := make([]string, len(todo))
	for i, p := range todo {
		texts[i] = p.text
	}
	vecs, err := emb.Embed(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		logger.Warn().Err(err).Int("items", len(todo)).Msg("Embedding provider failed, items keep the zero vector")
		stats.Failed = len(todo)
		logFill(logger, &stats)
		return stats, nil
	}

	for i, p := range todo {
		if err := store.Put(p.id, vecs[i]); err != nil {
			logger.Warn().Err(err).Str("item", p.id).Msg("Rejected fetched embedding")
			stats.Failed++
			continue
		}
		stats.Fetched++
		if cache != nil {
			if err := cache.Put(p.key, vecs[i]); err != nil {
				logger.Warn().Err(err).Str("item", p.id).Msg("Embedding cache write failed")
			}
		}
	}

	logFill(logger, &stats)
	return stats, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func logFill(logger zerolog.Logger, s *FillStats) {
	if s.Missing == 0 {
		return
	}
	ev := logger.Info()
	if s.Failed > 0 {
		ev = logger.Warn()
	}
	ev.Int("missing", s.Missing).
		Int("cached", s.Cached).
		Int("fetched", s.Fetched).
		Int("without_vector", s.Failed).
		Msg("Embedding fill finished")
}
