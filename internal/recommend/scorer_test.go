// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"math"
	"testing"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/engagement"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEffectiveFloor(t *testing.T) {
	tests := []struct {
		name     string
		discount float64
		floor    float64
		want     float64
	}{
		{"unset floor derives from discount", 0.3, 0, 0.35},
		{"low floor is raised", 0.3, 0.1, 0.35},
		{"higher floor is kept", 0.3, 0.6, 0.6},
		{"capped at one", 0.98, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectiveFloor(ColdStartConfig{Discount: tt.discount, ObservedFloor: tt.floor})
			if !approx(got, tt.want) {
				t.Errorf("EffectiveFloor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func scoreFixture(t *testing.T, cs ColdStartConfig, minObserved int, rows *engagement.Rows, observed, predicted map[string]float64) (*ScoreTable, Guarantee) {
	t.Helper()
	cat := fixtureCatalog(t)
	eng := engagement.Aggregate(cat, rows, engagement.DefaultWeights())
	return NewHybridScorer(cs, minObserved).Score(&ScoreInput{
		Items:      cat.Items(),
		Engagement: eng,
		Observed:   observed,
		Predicted:  predicted,
	})
}

func TestHybridScorer_ColdStartBelowObserved(t *testing.T) {
	cs := DefaultConfig().ColdStart
	table, g := scoreFixture(t, cs, 5,
		clickRows(map[string]int64{"Alpha": 100}),
		map[string]float64{idAlpha: 500},
		map[string]float64{idAlpha: 4.9, idBeta: 0.87, idGamma: 0.46},
	)

	// alpha sits at floor + (1-floor)*0.5, beta at the discount.
	alphaRaw := 0.35 + 0.65*0.5
	want := map[string]float64{idAlpha: 1, idBeta: 0.3 / alphaRaw, idGamma: 0}
	for id, w := range want {
		e, ok := table.Get(id)
		if !ok {
			t.Fatalf("Get(%s) not found", id)
		}
		if !approx(e.Score, w) {
			t.Errorf("score(%s) = %v, want %v", id, e.Score, w)
		}
	}

	alpha, _ := table.Get(idAlpha)
	if alpha.ColdStart {
		t.Error("alpha ColdStart = true, want false")
	}
	if alpha.Signals.Clicks != 100 {
		t.Errorf("alpha Signals.Clicks = %d, want 100", alpha.Signals.Clicks)
	}
	if alpha.Rank != 1 {
		t.Errorf("alpha Rank = %d, want 1", alpha.Rank)
	}
	for _, id := range []string{idBeta, idGamma} {
		e, _ := table.Get(id)
		if !e.ColdStart {
			t.Errorf("%s ColdStart = false, want true", id)
		}
		if e.Signals != (engagement.Breakdown{}) {
			t.Errorf("%s Signals = %+v, want empty", id, e.Signals)
		}
	}
	if g.Violation {
		t.Errorf("Violation = true, want false (max cold %v, min observed %v)", g.MaxCold, g.MinObserved)
	}
}

func TestHybridScorer_DefaultKeepsColdBelowObserved(t *testing.T) {
	cfg := DefaultConfig()
	cat := cohortCatalog(t, 12)
	items := cat.Items()

	// The first MinALSItems+2 items are observed with a steep spread, the
	// rest are cold with predictions far above every observed score.
	nObserved := cfg.MinALSItems + 2
	clicks := make(map[string]int64, nObserved)
	observed := make(map[string]float64, nObserved)
	predicted := make(map[string]float64, len(items))
	for i, it := range items {
		if i < nObserved {
			clicks[it.Name] = int64(1 + i*i*10)
			observed[it.ID] = float64(1 + i*i*10)
			continue
		}
		predicted[it.ID] = 1000 * float64(i)
	}
	eng := engagement.Aggregate(cat, clickRows(clicks), cfg.Weights)

	table, g := NewHybridScorer(cfg.ColdStart, cfg.MinALSItems).Score(&ScoreInput{
		Items:      items,
		Engagement: eng,
		Observed:   observed,
		Predicted:  predicted,
	})
	if g.Violation {
		t.Fatalf("Violation = true under defaults (max cold %v, min observed %v)", g.MaxCold, g.MinObserved)
	}
	if g.MaxCold >= g.MinObserved {
		t.Errorf("MaxCold = %v, want below MinObserved %v", g.MaxCold, g.MinObserved)
	}

	minObs, maxCold := math.Inf(1), math.Inf(-1)
	for _, e := range table.Entries() {
		if e.ColdStart {
			maxCold = math.Max(maxCold, e.Score)
		} else {
			minObs = math.Min(minObs, e.Score)
		}
	}
	if maxCold >= minObs {
		t.Errorf("best cold score %v, want below worst observed %v", maxCold, minObs)
	}
}

func TestHybridScorer_DiscountViolation(t *testing.T) {
	rows := clickRows(map[string]int64{"Alpha": 100, "Beta": 1})
	observed := map[string]float64{idAlpha: 10, idBeta: 1}
	predicted := map[string]float64{idGamma: 3}

	tests := []struct {
		name           string
		minObserved    int
		wantAcceptable bool
	}{
		{"small cohort is acceptable", 5, true},
		{"large cohort is not acceptable", 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := fixtureCatalog(t)
			eng := engagement.Aggregate(cat, rows, engagement.DefaultWeights())

			// A floor below the discount lets the cold item overtake beta.
			scorer := &HybridScorer{discount: 0.3, floor: 0.1, minObserved: tt.minObserved}
			_, g := scorer.Score(&ScoreInput{
				Items:      cat.Items(),
				Engagement: eng,
				Observed:   observed,
				Predicted:  predicted,
			})
			if !g.Violation {
				t.Fatalf("Violation = false, want true (max cold %v, min observed %v)", g.MaxCold, g.MinObserved)
			}
			if g.Acceptable != tt.wantAcceptable {
				t.Errorf("Acceptable = %v, want %v", g.Acceptable, tt.wantAcceptable)
			}
		})
	}
}

func TestHybridScorer_ObservedFloor(t *testing.T) {
	cs := DefaultConfig().ColdStart
	cs.ObservedFloor = 0.8

	table, g := scoreFixture(t, cs, 5,
		clickRows(map[string]int64{"Alpha": 100, "Beta": 1}),
		map[string]float64{idAlpha: 10, idBeta: 1},
		map[string]float64{idGamma: 3},
	)
	if g.Violation {
		t.Errorf("Violation = true with floor %v, want false", cs.ObservedFloor)
	}
	if !approx(g.MinObserved, 0.8) {
		t.Errorf("MinObserved = %v, want the configured floor 0.8", g.MinObserved)
	}

	beta, _ := table.Get(idBeta)
	gamma, _ := table.Get(idGamma)
	if gamma.Score > beta.Score {
		t.Errorf("cold gamma %v outscored observed beta %v", gamma.Score, beta.Score)
	}
}

func TestHybridScorer_FrustrationOnlyIsObserved(t *testing.T) {
	cat := fixtureCatalog(t)
	gamma, _ := cat.ByID(idGamma)
	rows := clickRows(map[string]int64{"Alpha": 10})
	rows.Frustration = []engagement.FrustrationRow{
		{Path: gamma.PagePath(), EventType: engagement.EventRageClick, Count: 4},
	}
	eng := engagement.Aggregate(cat, rows, engagement.DefaultWeights())

	table, _ := NewHybridScorer(DefaultConfig().ColdStart, 5).Score(&ScoreInput{
		Items:      cat.Items(),
		Engagement: eng,
		Observed:   eng.Scores(),
		Predicted:  map[string]float64{idBeta: 1},
	})

	e, _ := table.Get(idGamma)
	if e.ColdStart {
		t.Error("frustration-only item ColdStart = true, want false")
	}
	if e.Engagement != 0 {
		t.Errorf("frustration-only Engagement = %v, want 0", e.Engagement)
	}
	if e.Signals.RageClicks != 4 {
		t.Errorf("Signals.RageClicks = %d, want 4", e.Signals.RageClicks)
	}
}

func TestHybridScorer_NoEngagement(t *testing.T) {
	table, g := scoreFixture(t, DefaultConfig().ColdStart, 5,
		&engagement.Rows{},
		nil,
		map[string]float64{idAlpha: 2, idBeta: 1, idGamma: 0},
	)

	observed, cold := table.Counts()
	if observed != 0 || cold != 3 {
		t.Errorf("Counts() = (%d, %d), want (0, 3)", observed, cold)
	}
	if g.Violation {
		t.Error("Violation = true without observed items")
	}
	top := table.Top(1, nil)
	if len(top) != 1 || top[0].ID != idAlpha || !approx(top[0].Score, 1) {
		t.Errorf("Top(1) = %+v, want alpha with score 1", top)
	}
}

func TestHybridScorer_AllEqual(t *testing.T) {
	items := []catalog.Item{{ID: "solo", Name: "Solo", Type: catalog.TypeBook}}
	table, _ := NewHybridScorer(DefaultConfig().ColdStart, 5).Score(&ScoreInput{Items: items})

	e, ok := table.Get("solo")
	if !ok {
		t.Fatal("Get(solo) not found")
	}
	if e.Score != 0.5 {
		t.Errorf("single item score = %v, want 0.5", e.Score)
	}
	if !e.ColdStart {
		t.Error("ColdStart = false without engagement")
	}
}

func TestHybridScorer_ScoresBounded(t *testing.T) {
	table, _ := scoreFixture(t, DefaultConfig().ColdStart, 5,
		clickRows(map[string]int64{"Alpha": 3, "Gamma": 40}),
		map[string]float64{idAlpha: -2.5, idGamma: 8},
		map[string]float64{idBeta: 100},
	)
	for _, e := range table.Entries() {
		if e.Score < 0 || e.Score > 1 || math.IsNaN(e.Score) {
			t.Errorf("score(%s) = %v, want within [0, 1]", e.ID, e.Score)
		}
	}
}

func TestHybridScorer_PaperCitations(t *testing.T) {
	items := []catalog.Item{
		{ID: "paper-cited", Name: "Cited", Type: catalog.TypePaper, Extension: catalog.PaperExt{Citations: 120}},
		{ID: "talk-x", Name: "X", Type: catalog.TypeTalk},
	}
	table, _ := NewHybridScorer(DefaultConfig().ColdStart, 5).Score(&ScoreInput{Items: items})

	if e, _ := table.Get("paper-cited"); e.Citations != 120 {
		t.Errorf("Citations = %d, want 120", e.Citations)
	}
	if e, _ := table.Get("talk-x"); e.Citations != 0 {
		t.Errorf("talk Citations = %d, want 0", e.Citations)
	}
}

func TestBlendALS(t *testing.T) {
	net := map[string]float64{"a": 5, "b": 10, "c": -4}
	// ALS favors the item with fewer clicks as strongly as it can.
	als := map[string]float64{"a": 9, "b": -3, "c": 2}

	got := BlendALS(net, als, 5, 0.5)
	want := map[string]float64{"a": 5 + 2.5, "b": 10, "c": -4 + 2.5*5.0/12}
	for id, w := range want {
		if !approx(got[id], w) {
			t.Errorf("BlendALS()[%s] = %v, want %v", id, got[id], w)
		}
	}
	if got["b"] <= got["a"] {
		t.Errorf("one extra click %v, want above the ALS favorite %v", got["b"], got["a"])
	}

	t.Run("items without ALS score keep net", func(t *testing.T) {
		got := BlendALS(map[string]float64{"a": 3}, nil, 5, 0.5)
		if got["a"] != 3 {
			t.Errorf("BlendALS()[a] = %v, want 3", got["a"])
		}
	})

	t.Run("zero blend is the net score", func(t *testing.T) {
		got := BlendALS(net, als, 5, 0)
		for id, v := range net {
			if got[id] != v {
				t.Errorf("BlendALS()[%s] = %v, want %v", id, got[id], v)
			}
		}
	})
}
