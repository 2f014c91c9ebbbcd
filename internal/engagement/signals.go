// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package engagement

import "math"

// Kind names a row family. It is the label of the consumed and dropped row
// counters.
type Kind string

const (
	KindClick        Kind = "click"
	KindImpression   Kind = "impression"
	KindDwell        Kind = "dwell"
	KindScroll       Kind = "scroll"
	KindSearchClick  Kind = "search_click"
	KindSession      Kind = "session"
	KindFrustration  Kind = "frustration"
	KindCoOccurrence Kind = "co_occurrence"
)

// AllKinds lists every row family in reporting order.
var AllKinds = []Kind{
	KindClick, KindImpression, KindDwell, KindScroll,
	KindSearchClick, KindSession, KindFrustration, KindCoOccurrence,
}

// Cell weights used when clicks and impressions become pseudo-session
// entries of the collaborative filtering matrix.
const (
	ClickCellWeight      = 10.0
	ImpressionCellWeight = 0.5
)

// Weights is the per-signal weight table of the engagement score.
type Weights struct {
	Click          float64 `json:"clicks"`
	Impression     float64 `json:"impressions"`
	DwellPerMinute float64 `json:"dwell_per_minute"`
	ViewableSecond float64 `json:"viewable_second"`
	Scroll50       float64 `json:"scroll_50"`
	Scroll75       float64 `json:"scroll_75"`
	Scroll90       float64 `json:"scroll_90"`
	SearchClick    float64 `json:"search_click"`
	DeepSession    float64 `json:"deep_session"`
	RageClick      float64 `json:"rage_click"`
	QuickBounce    float64 `json:"quick_bounce"`
	CoView         float64 `json:"co_view"`
	CoClick        float64 `json:"co_click"`
}

// DefaultWeights returns the production weight table.
func DefaultWeights() Weights {
	return Weights{
		Click:          5.0,
		Impression:     1.0,
		DwellPerMinute: 1.0,
		ViewableSecond: 0.1,
		Scroll50:       0.5,
		Scroll75:       1.0,
		Scroll90:       2.0,
		SearchClick:    3.0,
		DeepSession:    1.5,
		RageClick:      -2.0,
		QuickBounce:    -1.0,
		CoView:         0.1,
		CoClick:        0.3,
	}
}

// Breakdown holds the raw signal totals of one item.
type Breakdown struct {
	Clicks          int64   `json:"clicks"`
	Impressions     int64   `json:"impressions"`
	DwellMs         int64   `json:"dwell_ms"`
	ViewableSeconds float64 `json:"viewable_seconds,omitempty"`
	Scroll50        int64   `json:"scroll_50,omitempty"`
	Scroll75        int64   `json:"scroll_75,omitempty"`
	Scroll90        int64   `json:"scroll_90,omitempty"`
	SearchClicks    int64   `json:"search_clicks,omitempty"`
	DeepSessions    int64   `json:"deep_sessions,omitempty"`
	RageClicks      int64   `json:"rage_clicks,omitempty"`
	QuickBounces    int64   `json:"quick_bounces,omitempty"`
	CoViews         int64   `json:"co_views,omitempty"`
	CoClicks        int64   `json:"co_clicks,omitempty"`
}

// HasInteraction reports whether any signal was observed for the item,
// including frustration-only signals.
func (b *Breakdown) HasInteraction() bool {
	return b.Clicks != 0 || b.Impressions != 0 || b.DwellMs != 0 || b.ViewableSeconds != 0 ||
		b.Scroll50 != 0 || b.Scroll75 != 0 || b.Scroll90 != 0 ||
		b.SearchClicks != 0 || b.DeepSessions != 0 ||
		b.RageClicks != 0 || b.QuickBounces != 0 ||
		b.CoViews != 0 || b.CoClicks != 0
}

// Score is the weighted sum of all signals clamped to zero.
func (b *Breakdown) Score(w *Weights) float64 {
	return math.Max(0, b.Net(w))
}

// Net is the weighted sum of all signals, negative when frustration
// outweighs the positive signals.
func (b *Breakdown) Net(w *Weights) float64 {
	return b.positive(w) +
		float64(b.RageClicks)*w.RageClick +
		float64(b.QuickBounces)*w.QuickBounce
}

// Residual is the part of the score not carried by clicks, impressions or
// dwell. It seeds the extra pseudo-session of the interaction matrix.
func (b *Breakdown) Residual(w *Weights) float64 {
	return math.Max(0, b.secondary(w))
}

func (b *Breakdown) positive(w *Weights) float64 {
	return float64(b.Clicks)*w.Click +
		float64(b.Impressions)*w.Impression +
		float64(b.DwellMs)/60000.0*w.DwellPerMinute +
		b.secondary(w)
}

func (b *Breakdown) secondary(w *Weights) float64 {
	return b.ViewableSeconds*w.ViewableSecond +
		float64(b.Scroll50)*w.Scroll50 +
		float64(b.Scroll75)*w.Scroll75 +
		float64(b.Scroll90)*w.Scroll90 +
		float64(b.SearchClicks)*w.SearchClick +
		float64(b.DeepSessions)*w.DeepSession +
		float64(b.CoViews)*w.CoView +
		float64(b.CoClicks)*w.CoClick
}
