// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"context"
	"fmt"
)

// RidgeConfig contains configuration for ridge regression.
type RidgeConfig struct {
	// Lambda is the L2 penalty on the weights. The intercept is not penalized.
	Lambda float64
}

// DefaultRidgeConfig returns default ridge configuration.
func DefaultRidgeConfig() RidgeConfig {
	return RidgeConfig{Lambda: 1.0}
}

// Ridge is L2-regularized linear regression with an unpenalized intercept.
//
// Inputs are expected to be standardized. With n samples and d features the
// weights are solved in the primal when n >= d:
//
//	w = (Xc'Xc + lambda*I)^-1 Xc'yc
//
// and in the dual (kernel) form otherwise, which needs an n x n solve:
//
//	a = (Xc Xc' + lambda*I)^-1 yc,  w = Xc'a
//
// where Xc and yc are centered. Both give the same w.
type Ridge struct {
	BaseAlgorithm
	config RidgeConfig

	weights   []float64
	intercept float64
	dual      bool
}

// NewRidge creates a ridge regressor.
func NewRidge(cfg RidgeConfig) *Ridge {
	if cfg.Lambda <= 0 {
		cfg.Lambda = DefaultRidgeConfig().Lambda
	}
	return &Ridge{
		BaseAlgorithm: NewBaseAlgorithm("ridge"),
		config:        cfg,
	}
}

// Fit trains the model on rows X and targets y.
//
//nolint:gocritic // X follows standard linear algebra notation
func (r *Ridge) Fit(ctx context.Context, X [][]float64, y []float64) error {
	r.acquireTrainLock()
	defer r.releaseTrainLock()

	n := len(X)
	if n == 0 || n != len(y) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrInsufficientData, n, len(y))
	}
	d := len(X[0])

	// Center features and target so the intercept drops out of the solve.
	xMean := make([]float64, d)
	yMean := 0.0
	for i, row := range X {
		if len(row) != d {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), d)
		}
		for j, v := range row {
			xMean[j] += v
		}
		yMean += y[i]
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean /= float64(n)

	Xc := make([][]float64, n)
	yc := make([]float64, n)
	for i, row := range X {
		Xc[i] = make([]float64, d)
		for j, v := range row {
			Xc[i][j] = v - xMean[j]
		}
		yc[i] = y[i] - yMean
	}

	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	var (
		w   []float64
		err error
	)
	dual := n < d
	if dual {
		w, err = r.solveDual(Xc, yc)
	} else {
		w, err = r.solvePrimal(Xc, yc, d)
	}
	if err != nil {
		return fmt.Errorf("ridge solve: %w", err)
	}

	r.weights = w
	r.intercept = yMean - dot(w, xMean)
	r.dual = dual
	r.markTrained()
	return nil
}

//nolint:gocritic // Xc follows standard linear algebra notation
func (r *Ridge) solvePrimal(Xc [][]float64, yc []float64, d int) ([]float64, error) {
	A := gram(Xc, d)
	for j := 0; j < d; j++ {
		A[j][j] += r.config.Lambda
	}
	b := make([]float64, d)
	for i, row := range Xc {
		for j, v := range row {
			b[j] += v * yc[i]
		}
	}
	return solveSPD(A, b)
}

//nolint:gocritic // Xc, K follow standard linear algebra notation
func (r *Ridge) solveDual(Xc [][]float64, yc []float64) ([]float64, error) {
	n := len(Xc)
	K := make([][]float64, n)
	for i := range K {
		K[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k := dot(Xc[i], Xc[j])
			K[i][j], K[j][i] = k, k
		}
		K[i][i] += r.config.Lambda
	}

	alpha, err := solveSPD(K, yc)
	if err != nil {
		return nil, err
	}

	w := make([]float64, len(Xc[0]))
	for i, row := range Xc {
		for j, v := range row {
			w[j] += alpha[i] * v
		}
	}
	return w, nil
}

// Predict returns one prediction per row.
//
//nolint:gocritic // X follows standard linear algebra notation
func (r *Ridge) Predict(X [][]float64) ([]float64, error) {
	r.acquirePredictLock()
	defer r.releasePredictLock()

	if !r.trained {
		return nil, ErrNotTrained
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(r.weights) {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), len(r.weights))
		}
		out[i] = r.intercept + dot(r.weights, row)
	}
	return out, nil
}

// Weights returns a copy of the learned weights and the intercept.
func (r *Ridge) Weights() ([]float64, float64) {
	r.acquirePredictLock()
	defer r.releasePredictLock()
	return append([]float64(nil), r.weights...), r.intercept
}

// Dual reports whether the last fit used the dual form.
func (r *Ridge) Dual() bool {
	r.acquirePredictLock()
	defer r.releasePredictLock()
	return r.dual
}

// Lambda returns the L2 penalty.
func (r *Ridge) Lambda() float64 {
	return r.config.Lambda
}
