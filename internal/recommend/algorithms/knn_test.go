// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestKNNRegressor(t *testing.T) {
	X := [][]float64{
		{1, 0},
		{0.9, 0.1},
		{0, 1},
	}
	y := []float64{10, 8, 0}

	k := NewKNNRegressor(KNNConfig{K: 2})
	if _, err := k.Predict(X); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Predict() before Fit error = %v, want ErrNotTrained", err)
	}
	if err := k.Fit(context.Background(), X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	got, err := k.Predict([][]float64{{1, 0.05}, {0, 1}, {-1, 0}})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if got[0] < 8 || got[0] > 10 {
		t.Errorf("prediction near the engaged pair = %v, want within [8, 10]", got[0])
	}
	// Neighbors of {0, 1}: itself (sim 1, target 0) and {0.9, 0.1} (sim ~0.11, target 8).
	sim := 0.1 / math.Sqrt(0.82)
	want := sim * 8 / (1 + sim)
	if math.Abs(got[1]-want) > 1e-9 {
		t.Errorf("prediction = %v, want %v", got[1], want)
	}
	// No positive similarity: plain mean of the two least dissimilar rows.
	if got[2] != 4 {
		t.Errorf("prediction without similar rows = %v, want 4", got[2])
	}
}

func TestKNNRegressorFitErrors(t *testing.T) {
	k := NewKNNRegressor(KNNConfig{})
	if k.config.K != 5 {
		t.Errorf("default K = %d, want 5", k.config.K)
	}
	if err := k.Fit(context.Background(), nil, nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Fit(nil) error = %v, want ErrInsufficientData", err)
	}
}
