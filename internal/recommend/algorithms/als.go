// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"github.com/tomtom215/curator/internal/engagement"
)

// ALSConfig contains configuration for the ALS algorithm.
type ALSConfig struct {
	// NumFactors fixes the latent dimension. If <= 0 it is derived from the
	// matrix shape: clamp(min(sessions, items) - 1, MinFactors, MaxFactors).
	NumFactors int

	// MinFactors and MaxFactors bound the derived dimension.
	MinFactors int
	MaxFactors int

	// NumIterations is the number of ALS iterations to run.
	NumIterations int

	// Regularization is the L2 regularization parameter.
	Regularization float64

	// Alpha scales the confidence transformation for implicit feedback.
	// c = 1 + alpha * r, where r is the cell value.
	Alpha float64

	// MinItems is the minimum number of items in the matrix. Smaller matrices
	// return ErrInsufficientData.
	MinItems int

	// Seed fixes the factor initialization.
	Seed int64

	// NumWorkers is the number of parallel workers for training.
	// If <= 0, defaults to runtime.NumCPU().
	NumWorkers int
}

// DefaultALSConfig returns default ALS configuration.
func DefaultALSConfig() ALSConfig {
	return ALSConfig{
		MinFactors:     5,
		MaxFactors:     32,
		NumIterations:  15,
		Regularization: 0.1,
		Alpha:          1.0,
		MinItems:       5,
		Seed:           42,
	}
}

// FactorsFor returns the latent dimension for a sessions x items matrix.
func (c ALSConfig) FactorsFor(sessions, items int) int {
	if c.NumFactors > 0 {
		return c.NumFactors
	}
	return max(c.MinFactors, min(min(sessions, items)-1, c.MaxFactors))
}

// entry is one non-zero matrix cell seen from a row or a column.
type entry struct {
	idx   int
	value float64
}

// SessionMatrix is a sparse session x item implicit-feedback matrix.
// Sessions and Items are sorted.
type SessionMatrix struct {
	Sessions []string
	Items    []string

	bySession [][]entry
	byItem    [][]entry
}

// BuildSessionMatrix assembles cells into a matrix. Repeated cells are
// summed and non-positive cells are skipped.
func BuildSessionMatrix(cells []engagement.Cell) *SessionMatrix {
	sums := make(map[[2]string]float64, len(cells))
	sessionSet := make(map[string]struct{})
	itemSet := make(map[string]struct{})
	for _, c := range cells {
		if c.Value <= 0 {
			continue
		}
		sums[[2]string{c.Session, c.ItemID}] += c.Value
		sessionSet[c.Session] = struct{}{}
		itemSet[c.ItemID] = struct{}{}
	}

	m := &SessionMatrix{
		Sessions: sortedKeys(sessionSet),
		Items:    sortedKeys(itemSet),
	}
	sessionIndex := indexOf(m.Sessions)
	itemIndex := indexOf(m.Items)

	m.bySession = make([][]entry, len(m.Sessions))
	m.byItem = make([][]entry, len(m.Items))
	for key, v := range sums {
		s, i := sessionIndex[key[0]], itemIndex[key[1]]
		m.bySession[s] = append(m.bySession[s], entry{idx: i, value: v})
		m.byItem[i] = append(m.byItem[i], entry{idx: s, value: v})
	}
	// Map iteration order is random; sort so float sums are reproducible.
	for _, row := range m.bySession {
		sort.Slice(row, func(a, b int) bool { return row[a].idx < row[b].idx })
	}
	for _, col := range m.byItem {
		sort.Slice(col, func(a, b int) bool { return col[a].idx < col[b].idx })
	}
	return m
}

// NNZ returns the number of non-zero cells.
func (m *SessionMatrix) NNZ() int {
	n := 0
	for _, row := range m.bySession {
		n += len(row)
	}
	return n
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexOf(keys []string) map[string]int {
	m := make(map[string]int, len(keys))
	for i, k := range keys {
		m[k] = i
	}
	return m
}

// ALS implements the Alternating Least Squares algorithm for implicit feedback.
// Reference: "Collaborative Filtering for Implicit Feedback Datasets" (Hu, Koren, Volinsky, 2008)
//
// The algorithm factorizes the session-item matrix into session and item
// latent factor matrices. The objective function minimizes:
//
//	sum_{u,i} c_ui * (p_ui - x_u' * y_i)^2 + lambda * (||x_u||^2 + ||y_i||^2)
//
// where p_ui = 1 if session u touched item i, 0 otherwise,
// and c_ui = 1 + alpha * r_ui is the confidence.
type ALS struct {
	BaseAlgorithm
	config ALSConfig

	// X is the session factor matrix (numSessions x numFactors)
	X [][]float64

	// Y is the item factor matrix (numItems x numFactors)
	Y [][]float64

	sessions  []string
	items     []string
	itemIndex map[string]int
	factors   int
}

// NewALS creates a new ALS algorithm with the given configuration.
func NewALS(cfg ALSConfig) *ALS {
	def := DefaultALSConfig()
	if cfg.MinFactors <= 0 {
		cfg.MinFactors = def.MinFactors
	}
	if cfg.MaxFactors < cfg.MinFactors {
		cfg.MaxFactors = max(def.MaxFactors, cfg.MinFactors)
	}
	if cfg.NumIterations <= 0 {
		cfg.NumIterations = def.NumIterations
	}
	if cfg.Regularization <= 0 {
		cfg.Regularization = def.Regularization
	}
	if cfg.Alpha <= 0 {
		cfg.Alpha = def.Alpha
	}
	if cfg.MinItems <= 0 {
		cfg.MinItems = def.MinItems
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = runtime.NumCPU()
	}

	return &ALS{
		BaseAlgorithm: NewBaseAlgorithm("als"),
		config:        cfg,
		itemIndex:     make(map[string]int),
	}
}

// Train fits the ALS model using alternating optimization.
func (a *ALS) Train(ctx context.Context, m *SessionMatrix) error {
	a.acquireTrainLock()
	defer a.releaseTrainLock()

	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	numSessions, numItems := len(m.Sessions), len(m.Items)
	if numItems < a.config.MinItems || numSessions == 0 {
		return fmt.Errorf("%w: %d items with interactions, need %d", ErrInsufficientData, numItems, a.config.MinItems)
	}

	numFactors := a.config.FactorsFor(numSessions, numItems)

	// Small random initialization, fixed by the seed
	rng := rand.New(rand.NewSource(a.config.Seed)) //nolint:gosec // deterministic model init, not security sensitive
	X := randomFactors(rng, numSessions, numFactors)
	Y := randomFactors(rng, numItems, numFactors)

	lambda := a.config.Regularization

	for iter := 0; iter < a.config.NumIterations; iter++ {
		if ContextCancelled(ctx) {
			return ctx.Err()
		}

		// Update session factors (fix Y, solve for X)
		if err := a.updateFactors(X, Y, m.bySession, numFactors, lambda); err != nil {
			return fmt.Errorf("iteration %d session factors: %w", iter, err)
		}

		if ContextCancelled(ctx) {
			return ctx.Err()
		}

		// Update item factors (fix X, solve for Y)
		if err := a.updateFactors(Y, X, m.byItem, numFactors, lambda); err != nil {
			return fmt.Errorf("iteration %d item factors: %w", iter, err)
		}
	}

	a.X, a.Y = X, Y
	a.sessions = m.Sessions
	a.items = m.Items
	a.itemIndex = indexOf(m.Items)
	a.factors = numFactors
	a.markTrained()
	return nil
}

func randomFactors(rng *rand.Rand, rows, factors int) [][]float64 {
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, factors)
		for f := range out[r] {
			out[r][f] = 0.01 * rng.NormFloat64()
		}
	}
	return out
}

// updateFactors solves every row of target with other fixed. rows[r] lists
// the non-zero cells of row r, indexed into other.
func (a *ALS) updateFactors(target, other [][]float64, rows [][]entry, numFactors int, lambda float64) error {
	// Precompute O'O once per half-iteration
	OtO := gram(other, numFactors)

	workers := a.config.NumWorkers
	chunkSize := (len(target) + workers - 1) / workers
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, len(target))
		if start >= end {
			break
		}

		wg.Add(1)
		go func(w, rStart, rEnd int) {
			defer wg.Done()

			for r := rStart; r < rEnd; r++ {
				x, err := a.solveRow(rows[r], other, OtO, numFactors, lambda)
				if err != nil {
					errs[w] = err
					return
				}
				target[r] = x
			}
		}(w, start, end)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// solveRow computes one factor vector.
//
//nolint:gocritic // OtO follows standard linear algebra notation
func (a *ALS) solveRow(cells []entry, other, OtO [][]float64, numFactors int, lambda float64) ([]float64, error) {
	// A = O' * C * O + lambda * I
	// b = O' * C * p
	A := make([][]float64, numFactors)
	for f := range A {
		A[f] = make([]float64, numFactors)
		copy(A[f], OtO[f])
		A[f][f] += lambda
	}

	b := make([]float64, numFactors)
	for _, e := range cells {
		// A += (c - 1) * o * o'
		// b += c * o
		o := other[e.idx]
		conf := 1.0 + a.config.Alpha*e.value
		cMinus1 := conf - 1.0

		for f1 := 0; f1 < numFactors; f1++ {
			for f2 := f1; f2 < numFactors; f2++ {
				delta := cMinus1 * o[f1] * o[f2]
				A[f1][f2] += delta
				if f1 != f2 {
					A[f2][f1] += delta
				}
			}
			b[f1] += conf * o[f1]
		}
	}

	return solveSPD(A, b)
}

// ItemScores returns dot(item factor, sum of session factors) for every
// item in the training matrix. Scores are not normalized.
func (a *ALS) ItemScores() map[string]float64 {
	a.acquirePredictLock()
	defer a.releasePredictLock()

	if !a.trained {
		return nil
	}

	sessionSum := make([]float64, a.factors)
	for _, x := range a.X {
		for f, v := range x {
			sessionSum[f] += v
		}
	}

	scores := make(map[string]float64, len(a.items))
	for i, id := range a.items {
		scores[id] = dot(a.Y[i], sessionSum)
	}
	return scores
}

// Factors returns the latent dimension of the trained model.
func (a *ALS) Factors() int {
	a.acquirePredictLock()
	defer a.releasePredictLock()
	return a.factors
}

// Items returns the item IDs in factor row order.
func (a *ALS) Items() []string {
	a.acquirePredictLock()
	defer a.releasePredictLock()
	return append([]string(nil), a.items...)
}

// Sessions returns the session IDs in factor row order.
func (a *ALS) Sessions() []string {
	a.acquirePredictLock()
	defer a.releasePredictLock()
	return append([]string(nil), a.sessions...)
}

// GetUserFactors returns a copy of the session factors.
func (a *ALS) GetUserFactors() [][]float64 {
	a.acquirePredictLock()
	defer a.releasePredictLock()
	return copyMatrix(a.X)
}

// GetItemFactors returns a copy of the item factors.
func (a *ALS) GetItemFactors() [][]float64 {
	a.acquirePredictLock()
	defer a.releasePredictLock()
	return copyMatrix(a.Y)
}

// Config returns the effective configuration.
func (a *ALS) Config() ALSConfig {
	return a.config
}

func copyMatrix(m [][]float64) [][]float64 {
	if m == nil {
		return nil
	}
	result := make([][]float64, len(m))
	for i := range m {
		result[i] = append([]float64(nil), m[i]...)
	}
	return result
}
