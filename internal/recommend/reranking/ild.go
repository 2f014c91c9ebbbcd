// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package reranking

import (
	"github.com/tomtom215/curator/internal/recommend/algorithms"
)

// Diversity audit flags.
const (
	FlagNone       = ""
	FlagRedundant  = "redundant"
	FlagIncoherent = "incoherent"
)

// ILD returns the intra-list diversity of ids: the mean pairwise cosine
// distance 1 - cos(a, b). Items without an embedding are ignored; fewer
// than two embedded items give 0.
func ILD(ids []string, vecs map[string][]float64) float64 {
	embedded := make([][]float64, 0, len(ids))
	for _, id := range ids {
		if v := vecs[id]; v != nil {
			embedded = append(embedded, v)
		}
	}
	n := len(embedded)
	if n < 2 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += 1 - algorithms.CosineSimilarity(embedded[i], embedded[j])
		}
	}
	return sum / float64(n*(n-1)/2)
}

// AuditILD flags an ILD below low as redundant and above high as incoherent.
// Lists with fewer than two items are never flagged.
func AuditILD(ild float64, size int, low, high float64) string {
	if size < 2 {
		return FlagNone
	}
	switch {
	case ild < low:
		return FlagRedundant
	case ild > high:
		return FlagIncoherent
	default:
		return FlagNone
	}
}
