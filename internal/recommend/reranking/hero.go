// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package reranking

import (
	"math"

	"github.com/tomtom215/curator/internal/catalog"
)

// Hero score weights.
const (
	heroMediaWeight      = 0.20
	heroAuthorityWeight  = 0.25
	heroEngagementWeight = 0.30
	heroRecencyWeight    = 0.25

	// RecencyDecay is the per-year exponential decay rate.
	RecencyDecay = 0.15

	// DefaultYear stands in for items without a publication year.
	DefaultYear = 2020
)

// mediaRichness ranks video above mixed media above text above links.
var mediaRichness = map[catalog.ContentType]float64{
	catalog.TypeTalk:      1.0,
	catalog.TypeResource:  0.5,
	catalog.TypeBook:      0.4,
	catalog.TypePaper:     0.4,
	catalog.TypePackage:   0.3,
	catalog.TypeDataset:   0.3,
	catalog.TypeCommunity: 0.2,
	catalog.TypeCareer:    0.1,
}

// engagementDefaults stand in when an item has no interactions and no stars.
var engagementDefaults = map[catalog.ContentType]float64{
	catalog.TypeTalk:      0.8,
	catalog.TypeResource:  0.6,
	catalog.TypePaper:     0.5,
	catalog.TypeBook:      0.5,
	catalog.TypePackage:   0.4,
	catalog.TypeDataset:   0.3,
	catalog.TypeCommunity: 0.2,
	catalog.TypeCareer:    0.1,
}

var (
	citationScale = math.Log1p(1000)
	starScale     = math.Log1p(10000)
)

// HeroScorer computes the multi-signal hero score of an item.
type HeroScorer struct {
	refYear int

	// volume is the observed interaction volume per item; volumeScale is
	// log1p of its maximum.
	volume      map[string]float64
	volumeScale float64
}

// NewHeroScorer creates a scorer with recency measured from refYear.
// volume may be nil.
func NewHeroScorer(refYear int, volume map[string]float64) *HeroScorer {
	if refYear <= 0 {
		refYear = DefaultYear
	}
	maxVolume := 0.0
	for _, v := range volume {
		maxVolume = math.Max(maxVolume, v)
	}
	return &HeroScorer{
		refYear:     refYear,
		volume:      volume,
		volumeScale: math.Log1p(maxVolume),
	}
}

// Score returns the hero score of it in [0, 1].
func (h *HeroScorer) Score(it *catalog.Item) float64 {
	return heroMediaWeight*h.media(it) +
		heroAuthorityWeight*h.authority(it) +
		heroEngagementWeight*h.engagement(it) +
		heroRecencyWeight*h.recency(it)
}

func (h *HeroScorer) media(it *catalog.Item) float64 {
	if s, ok := mediaRichness[it.Type]; ok {
		return s
	}
	return 0.4
}

func (h *HeroScorer) authority(it *catalog.Item) float64 {
	switch it.Type {
	case catalog.TypePaper:
		if c := it.Citations(); c > 0 {
			return math.Min(1, math.Log1p(float64(c))/citationScale)
		}
	case catalog.TypeTalk:
		return 0.6
	case catalog.TypeBook:
		return 0.5
	}
	return 0.3
}

// engagement prefers observed interactions, then stars, then the type default.
func (h *HeroScorer) engagement(it *catalog.Item) float64 {
	if v := h.volume[it.ID]; v > 0 && h.volumeScale > 0 {
		return math.Min(1, math.Log1p(v)/h.volumeScale)
	}
	if s := it.Stars(); s > 0 {
		return math.Min(1, math.Log1p(float64(s))/starScale)
	}
	if s, ok := engagementDefaults[it.Type]; ok {
		return s
	}
	return 0.3
}

func (h *HeroScorer) recency(it *catalog.Item) float64 {
	year := it.Year
	if year <= 0 {
		year = DefaultYear
	}
	age := math.Max(0, float64(h.refYear-year))
	return math.Exp(-RecencyDecay * age)
}

// pickHero returns the index of the highest hero score. Ties keep the
// lowest ID, members must be sorted by ID. It returns -1 for no members.
func (h *HeroScorer) pickHero(members []*catalog.Item) (int, float64) {
	best, bestScore := -1, math.Inf(-1)
	for i, it := range members {
		if s := h.Score(it); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestScore
}
