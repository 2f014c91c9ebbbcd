// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package reranking

import (
	"context"
	"math"
	"sort"

	"github.com/tomtom215/curator/internal/recommend/algorithms"
)

// maxRerankSize limits slice allocations; k is also bounded by the
// candidate count.
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance selection.
// It balances relevance and diversity by iteratively selecting items
// that are both relevant and dissimilar to already selected items.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * rel(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// Where:
//   - lambda: balance parameter (1.0 = pure relevance, 0.0 = pure diversity)
//   - rel(i): relevance score for item i
//   - sim(i, s): cosine similarity of the embeddings of i and s
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	// Lambda balances relevance vs. diversity (0.0 to 1.0)
	lambda float64
}

// NewMMR creates a new MMR selector.
func NewMMR(lambda float64) *MMR {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MMR{lambda: lambda}
}

// Name returns the selector identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Lambda returns the clamped balance parameter.
func (m *MMR) Lambda() float64 {
	return m.lambda
}

// Select picks up to k candidates. seeds are items already placed (the
// hero and the type-coverage picks) and count toward max similarity but
// are never returned. Ties go to the smaller ID.
//
// vecs maps IDs to embeddings; an item without one has similarity 0 to
// everything.
func (m *MMR) Select(ctx context.Context, candidates []string, rel map[string]float64, vecs map[string][]float64, seeds []string, k int) []string {
	if len(candidates) == 0 || k <= 0 {
		return nil
	}
	if k > maxRerankSize {
		k = maxRerankSize
	}

	pool := make([]string, len(candidates))
	copy(pool, candidates)

	// Pure relevance needs no similarity work.
	if m.lambda >= 1.0 {
		byRelevance(pool, rel)
		if len(pool) > k {
			pool = pool[:k]
		}
		return pool
	}

	sort.Strings(pool)
	if k > len(pool) {
		k = len(pool)
	}

	// maxSim[i] tracks the highest similarity of pool[i] to anything placed
	// so far, floored at 0, updated once per pick.
	maxSim := make([]float64, len(pool))
	placed := func(id string) {
		v := vecs[id]
		for i, c := range pool {
			if s := algorithms.CosineSimilarity(vecs[c], v); s > maxSim[i] {
				maxSim[i] = s
			}
		}
	}
	for _, id := range seeds {
		placed(id)
	}

	selected := make([]string, 0, k)
	taken := make([]bool, len(pool))

	for len(selected) < k {
		if algorithms.ContextCancelled(ctx) {
			break
		}

		bestIdx := -1
		bestMMR := math.Inf(-1)

		for i, id := range pool {
			if taken[i] {
				continue
			}
			score := m.lambda*rel[id] - (1-m.lambda)*maxSim[i]
			if score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}

		taken[bestIdx] = true
		selected = append(selected, pool[bestIdx])
		placed(pool[bestIdx])
	}

	return selected
}
