// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

var (
	// ErrInsufficientData is returned when there is too little data to fit a model.
	ErrInsufficientData = errors.New("insufficient data to train")

	// ErrSingularMatrix is returned when a linear system is not positive definite.
	ErrSingularMatrix = errors.New("matrix is not positive definite")

	// ErrNotTrained is returned when predicting with an untrained model.
	ErrNotTrained = errors.New("model is not trained")
)

// Regressor predicts a score from a feature row.
type Regressor interface {
	Name() string
	Fit(ctx context.Context, X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
}

// BaseAlgorithm provides common functionality for all algorithms.
type BaseAlgorithm struct {
	name          string
	trained       bool
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{
		name: name,
	}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// IsTrained returns whether the model has been trained.
func (b *BaseAlgorithm) IsTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trained
}

// Version returns the model version.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastTrainedAt returns when the model was last trained.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// markTrained updates the trained state.
// Must be called while holding the training lock (acquireTrainLock).
func (b *BaseAlgorithm) markTrained() {
	b.trained = true
	b.version++
	b.lastTrainedAt = time.Now()
}

// acquireTrainLock acquires the exclusive training lock.
func (b *BaseAlgorithm) acquireTrainLock() {
	b.mu.Lock()
}

// releaseTrainLock releases the exclusive training lock.
func (b *BaseAlgorithm) releaseTrainLock() {
	b.mu.Unlock()
}

// acquirePredictLock acquires the shared prediction lock.
func (b *BaseAlgorithm) acquirePredictLock() {
	b.mu.RLock()
}

// releasePredictLock releases the shared prediction lock.
func (b *BaseAlgorithm) releasePredictLock() {
	b.mu.RUnlock()
}

// NormalizeScores returns scores min-max scaled to [0, 1]. When all scores
// are equal every item gets 0.5. The input is not modified.
func NormalizeScores(scores map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	// Find min and max
	var minScore, maxScore float64
	first := true
	for _, score := range scores {
		if first {
			minScore, maxScore = score, score
			first = false
			continue
		}
		minScore = math.Min(minScore, score)
		maxScore = math.Max(maxScore, score)
	}

	// Avoid division by zero
	rang := maxScore - minScore
	if rang == 0 {
		for id := range scores {
			out[id] = 0.5
		}
		return out
	}

	for id, score := range scores {
		out[id] = (score - minScore) / rang
	}
	return out
}

// CosineSimilarity computes cosine similarity between two vectors. Vectors of
// different length or with zero norm have similarity 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// dot returns the inner product of equal-length vectors.
func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// Ensure regressors implement the interface.
var (
	_ Regressor = (*Ridge)(nil)
	_ Regressor = (*KNNRegressor)(nil)
)
