// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package reranking

import (
	"sort"

	"github.com/tomtom215/curator/internal/catalog"
)

// coverageOrder is the order in which type quotas are filled. Types with a
// quota that are not listed here follow in name order.
var coverageOrder = []catalog.ContentType{
	catalog.TypeTalk,
	catalog.TypeResource,
	catalog.TypeBook,
	catalog.TypePaper,
	catalog.TypePackage,
	catalog.TypeDataset,
	catalog.TypeCommunity,
	catalog.TypeCareer,
}

// DefaultMinPerType returns the per-type quotas used when none are configured.
func DefaultMinPerType() map[string]int {
	return map[string]int{
		"paper":    2,
		"talk":     1,
		"resource": 1,
		"package":  1,
		"book":     1,
	}
}

// byRelevance sorts IDs by relevance descending, then ID ascending.
func byRelevance(ids []string, rel map[string]float64) {
	sort.SliceStable(ids, func(i, j int) bool {
		ri, rj := rel[ids[i]], rel[ids[j]]
		if ri != rj {
			return ri > rj
		}
		return ids[i] < ids[j]
	})
}

// typeCoverage fills per-type quotas with the most relevant candidates of
// each type, taking at most limit items in total.
func typeCoverage(candidates []*catalog.Item, rel map[string]float64, quotas map[string]int, limit int) []string {
	if limit <= 0 || len(quotas) == 0 {
		return nil
	}

	byType := make(map[string][]string)
	for _, it := range candidates {
		t := string(it.Type)
		byType[t] = append(byType[t], it.ID)
	}

	order := make([]string, 0, len(quotas))
	listed := make(map[string]bool, len(coverageOrder))
	for _, t := range coverageOrder {
		order = append(order, string(t))
		listed[string(t)] = true
	}
	var extra []string
	for t := range quotas {
		if !listed[t] {
			extra = append(extra, t)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	var selected []string
	for _, t := range order {
		quota := quotas[t]
		ids := byType[t]
		if quota <= 0 || len(ids) == 0 {
			continue
		}
		byRelevance(ids, rel)
		for _, id := range ids[:min(quota, len(ids))] {
			if len(selected) == limit {
				return selected
			}
			selected = append(selected, id)
		}
	}
	return selected
}
