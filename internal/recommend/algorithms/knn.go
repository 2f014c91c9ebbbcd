// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"context"
	"fmt"
	"sort"
)

// KNNConfig contains configuration for the k-nearest-neighbor regressor.
type KNNConfig struct {
	// K is the number of neighbors averaged.
	K int
}

// DefaultKNNConfig returns default kNN configuration.
func DefaultKNNConfig() KNNConfig {
	return KNNConfig{K: 5}
}

// KNNRegressor predicts the similarity-weighted mean target of the K most
// cosine-similar training rows. Only positively similar neighbors carry
// weight; when none do, the plain mean of the neighbors is used.
type KNNRegressor struct {
	BaseAlgorithm
	config KNNConfig

	rows    [][]float64
	targets []float64
}

// NewKNNRegressor creates a kNN regressor.
func NewKNNRegressor(cfg KNNConfig) *KNNRegressor {
	if cfg.K <= 0 {
		cfg.K = DefaultKNNConfig().K
	}
	return &KNNRegressor{
		BaseAlgorithm: NewBaseAlgorithm("knn"),
		config:        cfg,
	}
}

// Fit stores the training rows.
//
//nolint:gocritic // X follows standard linear algebra notation
func (k *KNNRegressor) Fit(ctx context.Context, X [][]float64, y []float64) error {
	k.acquireTrainLock()
	defer k.releaseTrainLock()

	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrInsufficientData, len(X), len(y))
	}
	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	k.rows = X
	k.targets = append([]float64(nil), y...)
	k.markTrained()
	return nil
}

type neighbor struct {
	idx int
	sim float64
}

// Predict returns one prediction per row.
//
//nolint:gocritic // X follows standard linear algebra notation
func (k *KNNRegressor) Predict(X [][]float64) ([]float64, error) {
	k.acquirePredictLock()
	defer k.releasePredictLock()

	if !k.trained {
		return nil, ErrNotTrained
	}

	out := make([]float64, len(X))
	neighbors := make([]neighbor, len(k.rows))
	for i, row := range X {
		for j, train := range k.rows {
			neighbors[j] = neighbor{idx: j, sim: CosineSimilarity(row, train)}
		}
		sort.Slice(neighbors, func(a, b int) bool {
			if neighbors[a].sim != neighbors[b].sim {
				return neighbors[a].sim > neighbors[b].sim
			}
			return neighbors[a].idx < neighbors[b].idx
		})

		top := neighbors[:min(k.config.K, len(neighbors))]
		var weighted, weights, plain float64
		for _, n := range top {
			plain += k.targets[n.idx]
			if n.sim > 0 {
				weighted += n.sim * k.targets[n.idx]
				weights += n.sim
			}
		}
		if weights > 0 {
			out[i] = weighted / weights
		} else {
			out[i] = plain / float64(len(top))
		}
	}
	return out, nil
}
