// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package features

import "math"

// Matrix holds one feature row per item. All rows have len(Columns) values.
type Matrix struct {
	IDs     []string
	Columns []string
	Rows    [][]float64
	Vocab   *Vocabulary

	byID map[string]int
}

func (m *Matrix) index() {
	m.byID = make(map[string]int, len(m.IDs))
	for i, id := range m.IDs {
		m.byID[id] = i
	}
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	return len(m.Rows)
}

// Width returns the number of columns.
func (m *Matrix) Width() int {
	return len(m.Columns)
}

// Row returns the row of id.
func (m *Matrix) Row(id string) ([]float64, bool) {
	i, ok := m.byID[id]
	if !ok {
		return nil, false
	}
	return m.Rows[i], true
}

// Select returns the rows at the given positions. Rows are shared, not copied.
func (m *Matrix) Select(idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = m.Rows[j]
	}
	return out
}

// Scaler holds per-column mean and standard deviation.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes column statistics over rows.
func FitScaler(rows [][]float64) Scaler {
	if len(rows) == 0 {
		return Scaler{}
	}
	width := len(rows[0])
	s := Scaler{Mean: make([]float64, width), Std: make([]float64, width)}
	n := float64(len(rows))

	for _, r := range rows {
		for j, x := range r {
			s.Mean[j] += x
		}
	}
	for j := range s.Mean {
		s.Mean[j] /= n
	}
	for _, r := range rows {
		for j, x := range r {
			d := x - s.Mean[j]
			s.Std[j] += d * d
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / n)
	}
	return s
}

// Transform returns z-scored copies of rows. Zero-variance columns become 0.
func (s Scaler) Transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		z := make([]float64, len(r))
		for j, x := range r {
			if s.Std[j] > 1e-12 {
				z[j] = (x - s.Mean[j]) / s.Std[j]
			}
		}
		out[i] = z
	}
	return out
}

// Standardize returns a copy of m with z-scored columns and the scaler used.
func Standardize(m *Matrix) (*Matrix, Scaler) {
	s := FitScaler(m.Rows)
	out := &Matrix{
		IDs:     m.IDs,
		Columns: m.Columns,
		Rows:    s.Transform(m.Rows),
		Vocab:   m.Vocab,
	}
	out.index()
	return out, s
}
