// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"math"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/engagement"
	"github.com/tomtom215/curator/internal/recommend/algorithms"
)

// ScoreInput holds the per-item signals the hybrid scorer reconciles.
type ScoreInput struct {
	Items      []catalog.Item
	Engagement *engagement.Result

	// Observed is the raw collaborative (or weighted engagement) score of
	// observed items. Observed items absent from it get its minimum.
	Observed map[string]float64

	// Predicted is the content-based prediction of every item. Missing
	// items predict 0.
	Predicted map[string]float64
}

// Guarantee reports the cold-start discount check of one scoring pass.
type Guarantee struct {
	MaxCold     float64
	MinObserved float64
	Violation   bool
	Acceptable  bool
}

// ObservedMargin is the minimum gap between the discount and the floor of
// observed scores.
const ObservedMargin = 0.05

// HybridScorer merges observed and predicted scores into one ranking.
//
// Observed items keep their min-max normalized observed score, lifted into
// [floor, 1]. Cold-start items get their min-max normalized prediction
// times the discount. The floor is at least discount + ObservedMargin, so
// every cold-start item ranks below every observed item. The union is
// min-max scaled to [0, 1]; when every item has the same score, all map
// to 0.5.
type HybridScorer struct {
	discount    float64
	floor       float64
	minObserved int
}

// NewHybridScorer creates a scorer. minObserved is the observed cohort size
// from which a discount violation is no longer acceptable.
func NewHybridScorer(cfg ColdStartConfig, minObserved int) *HybridScorer {
	return &HybridScorer{
		discount:    cfg.Discount,
		floor:       EffectiveFloor(cfg),
		minObserved: minObserved,
	}
}

// EffectiveFloor is the observed floor the scorer applies: the configured
// floor, raised to discount + ObservedMargin and capped at 1.
func EffectiveFloor(cfg ColdStartConfig) float64 {
	return math.Max(cfg.ObservedFloor, math.Min(cfg.Discount+ObservedMargin, 1))
}

// Floor returns the observed floor in use.
func (s *HybridScorer) Floor() float64 {
	return s.floor
}

// Score builds the immutable score table.
func (s *HybridScorer) Score(in *ScoreInput) (*ScoreTable, Guarantee) {
	var observed, cold []string
	for i := range in.Items {
		id := in.Items[i].ID
		if in.Engagement != nil && in.Engagement.Observed(id) {
			observed = append(observed, id)
		} else {
			cold = append(cold, id)
		}
	}

	obsRaw := make(map[string]float64, len(observed))
	fill := minValue(in.Observed, observed)
	for _, id := range observed {
		if v, ok := in.Observed[id]; ok {
			obsRaw[id] = v
		} else {
			obsRaw[id] = fill
		}
	}
	coldRaw := make(map[string]float64, len(cold))
	for _, id := range cold {
		coldRaw[id] = in.Predicted[id]
	}

	combined := make(map[string]float64, len(in.Items))
	g := Guarantee{MinObserved: math.Inf(1), MaxCold: math.Inf(-1)}
	for id, v := range algorithms.NormalizeScores(obsRaw) {
		v = s.floor + (1-s.floor)*v
		combined[id] = v
		g.MinObserved = math.Min(g.MinObserved, v)
	}
	for id, v := range algorithms.NormalizeScores(coldRaw) {
		v *= s.discount
		combined[id] = v
		g.MaxCold = math.Max(g.MaxCold, v)
	}
	if len(observed) == 0 {
		g.MinObserved = 0
	}
	if len(cold) == 0 {
		g.MaxCold = 0
	}
	if len(observed) > 0 && len(cold) > 0 && g.MaxCold > g.MinObserved {
		g.Violation = true
		g.Acceptable = len(observed) < s.minObserved
	}

	final := algorithms.NormalizeScores(combined)

	entries := make([]ScoreEntry, len(in.Items))
	for i := range in.Items {
		it := &in.Items[i]
		e := ScoreEntry{
			ID:        it.ID,
			Name:      it.Name,
			Type:      it.Type.String(),
			Category:  it.Category,
			Score:     final[it.ID],
			ColdStart: true,
		}
		if in.Engagement != nil {
			if b, ok := in.Engagement.Breakdown(it.ID); ok {
				e.ColdStart = false
				e.Signals = b
				e.Engagement = in.Engagement.Score(it.ID)
			}
		}
		if it.Type == catalog.TypePaper {
			e.Citations = it.Citations()
		}
		entries[i] = e
	}
	return NewScoreTable(entries), g
}

// BlendALS adds blend * |click| times the min-max normalized ALS score to
// the net engagement score of every observed item. Items missing from als
// get no ALS term. With blend < 1 the ALS term spans less than one click, so
// an item with more clicks and otherwise equal signals always scores higher.
func BlendALS(net, als map[string]float64, click, blend float64) map[string]float64 {
	norm := algorithms.NormalizeScores(als)
	span := blend * math.Abs(click)
	out := make(map[string]float64, len(net))
	for id, v := range net {
		out[id] = v + span*norm[id]
	}
	return out
}

// minValue returns the smallest score among ids present in scores, or 0.
func minValue(scores map[string]float64, ids []string) float64 {
	lo, found := math.Inf(1), false
	for _, id := range ids {
		if v, ok := scores[id]; ok {
			lo = math.Min(lo, v)
			found = true
		}
	}
	if !found {
		return 0
	}
	return lo
}
