// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package reranking

import (
	"math"
	"sort"

	"github.com/tomtom215/curator/internal/catalog"
)

// TypeCalibration measures how far a carousel's content-type mix drifts
// from the mix of its whole cluster, as KL(cluster || carousel).
// 0 means the carousel mirrors the cluster; type coverage quotas push the
// value up on clusters dominated by one type.
//
// Reference: "Calibrated Recommendations" (Steck, 2018)
func TypeCalibration(cluster []*catalog.Item, selected []string) float64 {
	target := make(map[string]float64)
	byID := make(map[string]string, len(cluster))
	for _, it := range cluster {
		target[string(it.Type)]++
		byID[it.ID] = string(it.Type)
	}
	actual := make(map[string]float64)
	for _, id := range selected {
		if t, ok := byID[id]; ok {
			actual[t]++
		}
	}
	normalizeDistribution(target)
	normalizeDistribution(actual)
	return klDivergence(target, actual)
}

// klDivergence computes KL divergence from p to q, summing in key order.
func klDivergence(p, q map[string]float64) float64 {
	const epsilon = 1e-10 // Smoothing to avoid log(0)

	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var kl float64
	for _, key := range keys {
		pVal := p[key]
		qVal := q[key]
		if qVal <= 0 {
			qVal = epsilon
		}
		if pVal > 0 {
			kl += pVal * math.Log(pVal/qVal)
		}
	}
	return kl
}

// normalizeDistribution normalizes a distribution to sum to 1.
func normalizeDistribution(dist map[string]float64) {
	var total float64
	for _, v := range dist {
		total += v
	}
	if total > 0 {
		for k := range dist {
			dist[k] /= total
		}
	}
}
