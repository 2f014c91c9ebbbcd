// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package algorithms

import (
	"fmt"
	"math"
)

// cholesky factors the symmetric positive definite matrix A = L * L'.
// A is not modified.
//
//nolint:gocritic // A, L follow standard linear algebra notation
func cholesky(A [][]float64) ([][]float64, error) {
	n := len(A)
	L := make([][]float64, n)
	for i := range L {
		L[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := A[i][j]
			for k := 0; k < j; k++ {
				sum -= L[i][k] * L[j][k]
			}

			if i == j {
				if sum <= 0 || math.IsNaN(sum) {
					return nil, fmt.Errorf("%w: pivot %d is %g", ErrSingularMatrix, i, sum)
				}
				L[i][j] = math.Sqrt(sum)
			} else {
				L[i][j] = sum / L[j][j]
			}
		}
	}
	return L, nil
}

// choleskySolve solves L * L' * x = b.
//
//nolint:gocritic // L follows standard linear algebra notation
func choleskySolve(L [][]float64, b []float64) []float64 {
	n := len(b)

	// Solve L * z = b (forward substitution)
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for j := 0; j < i; j++ {
			sum -= L[i][j] * z[j]
		}
		z[i] = sum / L[i][i]
	}

	// Solve L' * x = z (back substitution)
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for j := i + 1; j < n; j++ {
			sum -= L[j][i] * x[j]
		}
		x[i] = sum / L[i][i]
	}
	return x
}

// solveSPD solves A * x = b for symmetric positive definite A.
//
//nolint:gocritic // A follows standard linear algebra notation
func solveSPD(A [][]float64, b []float64) ([]float64, error) {
	L, err := cholesky(A)
	if err != nil {
		return nil, err
	}
	return choleskySolve(L, b), nil
}

// gram returns M' * M (cols x cols) for rows of M.
func gram(rows [][]float64, cols int) [][]float64 {
	G := make([][]float64, cols)
	for f := range G {
		G[f] = make([]float64, cols)
	}
	for _, r := range rows {
		for f1 := 0; f1 < cols; f1++ {
			if r[f1] == 0 {
				continue
			}
			for f2 := f1; f2 < cols; f2++ {
				G[f1][f2] += r[f1] * r[f2]
			}
		}
	}
	for f1 := 0; f1 < cols; f1++ {
		for f2 := 0; f2 < f1; f2++ {
			G[f1][f2] = G[f2][f1]
		}
	}
	return G
}
