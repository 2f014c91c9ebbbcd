// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package reranking

import (
	"math"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/recommend/algorithms"
)

// Vectors resolves item embeddings. A nil result means the item has none.
type Vectors interface {
	Vector(id string) []float64
}

// RelevanceWeights weights the cluster-local relevance composite.
type RelevanceWeights struct {
	Citation   float64 `json:"citations"`
	Difficulty float64 `json:"difficulty"`
	Centrality float64 `json:"centrality"`
}

// DefaultRelevanceWeights returns the 0.3 / 0.2 / 0.5 split.
func DefaultRelevanceWeights() RelevanceWeights {
	return RelevanceWeights{Citation: 0.3, Difficulty: 0.2, Centrality: 0.5}
}

var difficultyScores = map[string]float64{
	"beginner":     0.2,
	"intermediate": 0.5,
	"advanced":     0.8,
}

const (
	defaultCitationScore   = 0.5
	defaultDifficultyScore = 0.5
)

// Centroid returns the mean of the given vectors, skipping nil entries.
// It returns nil when no vector is present.
func Centroid(vecs [][]float64) []float64 {
	var centroid []float64
	n := 0
	for _, v := range vecs {
		if v == nil {
			continue
		}
		if centroid == nil {
			centroid = make([]float64, len(v))
		}
		if len(v) != len(centroid) {
			continue
		}
		for j, x := range v {
			centroid[j] += x
		}
		n++
	}
	for j := range centroid {
		centroid[j] /= float64(n)
	}
	return centroid
}

// Relevance scores cluster members by citation evidence, difficulty and
// closeness to the cluster centroid. vecs is parallel to members.
//
// Citations are log1p-normalized against the cluster maximum, floored at 1
// so a single lightly cited paper does not score 1. Members without a vector
// get a centrality of 0.5.
func Relevance(members []*catalog.Item, vecs [][]float64, w RelevanceWeights) map[string]float64 {
	maxLogCitations := 1.0
	for _, it := range members {
		if it.Type != catalog.TypePaper {
			continue
		}
		if c := it.Citations(); c > 0 {
			maxLogCitations = math.Max(maxLogCitations, math.Log1p(float64(c)))
		}
	}

	centroid := Centroid(vecs)
	scores := make(map[string]float64, len(members))
	for i, it := range members {
		citation := defaultCitationScore
		if it.Type == catalog.TypePaper {
			if c := it.Citations(); c > 0 {
				citation = math.Log1p(float64(c)) / maxLogCitations
			}
		}

		difficulty, ok := difficultyScores[it.Difficulty]
		if !ok {
			difficulty = defaultDifficultyScore
		}

		centrality := (algorithms.CosineSimilarity(vecs[i], centroid) + 1) / 2

		scores[it.ID] = w.Citation*citation + w.Difficulty*difficulty + w.Centrality*centrality
	}
	return scores
}

// blendGlobal mixes a global score into local relevance:
// (1-w)*local + w*global. Items without a global score count as 0.
func blendGlobal(local, global map[string]float64, w float64) {
	if w <= 0 || global == nil {
		return
	}
	for id, rel := range local {
		local[id] = (1-w)*rel + w*global[id]
	}
}
