// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package reranking

import (
	"fmt"
	"math"
	"testing"

	"github.com/tomtom215/curator/internal/catalog"
)

func paper(id string, citations, year int) *catalog.Item {
	return &catalog.Item{ID: id, Type: catalog.TypePaper, Year: year, Extension: catalog.PaperExt{Citations: citations}}
}

func item(id string, t catalog.ContentType) *catalog.Item {
	return &catalog.Item{ID: id, Type: t, Extension: catalog.GenericExt{}}
}

func TestRelevance(t *testing.T) {
	p1 := paper("p1", 100, 2020)
	p1.Difficulty = "advanced"
	p2 := paper("p2", 10, 2020)
	talk := item("t1", catalog.TypeTalk)
	talk.Difficulty = "beginner"

	members := []*catalog.Item{p1, p2, talk}
	got := Relevance(members, make([][]float64, 3), DefaultRelevanceWeights())

	// No vectors: centrality (0+1)/2.
	tests := []struct {
		id   string
		want float64
	}{
		{"p1", 0.3*1 + 0.2*0.8 + 0.5*0.5},
		{"p2", 0.3*math.Log1p(10)/math.Log1p(100) + 0.2*0.5 + 0.5*0.5},
		{"t1", 0.3*0.5 + 0.2*0.2 + 0.5*0.5},
	}
	for _, tt := range tests {
		if math.Abs(got[tt.id]-tt.want) > 1e-12 {
			t.Errorf("Relevance()[%s] = %v, want %v", tt.id, got[tt.id], tt.want)
		}
	}

	// The log-citation normalizer never drops below 1.
	single := Relevance([]*catalog.Item{paper("p", 1, 2020)}, [][]float64{nil}, RelevanceWeights{Citation: 1})
	if math.Abs(single["p"]-math.Log1p(1)) > 1e-12 {
		t.Errorf("lightly cited paper = %v, want %v", single["p"], math.Log1p(1))
	}
}

func TestRelevanceCentrality(t *testing.T) {
	members := []*catalog.Item{item("a", catalog.TypeResource), item("b", catalog.TypeResource), item("c", catalog.TypeResource)}
	vecs := [][]float64{{1, 0}, {1, 0.2}, {-1, 0.1}}
	got := Relevance(members, vecs, RelevanceWeights{Centrality: 1})
	if !(got["a"] > got["c"] && got["b"] > got["c"]) {
		t.Errorf("outlier should be least central: %v", got)
	}
	for id, s := range got {
		if s < 0 || s > 1 {
			t.Errorf("centrality[%s] = %v, want within [0, 1]", id, s)
		}
	}
}

func TestCentroid(t *testing.T) {
	c := Centroid([][]float64{{1, 2}, nil, {3, 4}})
	if fmt.Sprint(c) != "[2 3]" {
		t.Errorf("Centroid() = %v, want [2 3]", c)
	}
	if Centroid([][]float64{nil}) != nil {
		t.Error("Centroid() of no vectors should be nil")
	}
}

func TestHeroScorer(t *testing.T) {
	h := NewHeroScorer(2024, map[string]float64{"busy": 50, "quiet": 5})

	talk := item("talk", catalog.TypeTalk)
	talk.Year = 2024
	if got, want := h.Score(talk), 0.2*1.0+0.25*0.6+0.3*0.8+0.25*1; math.Abs(got-want) > 1e-12 {
		t.Errorf("Score(talk) = %v, want %v", got, want)
	}

	cited := paper("p", 1000, 2020)
	want := 0.2*0.4 + 0.25*1 + 0.3*0.5 + 0.25*math.Exp(-0.6)
	if got := h.Score(cited); math.Abs(got-want) > 1e-12 {
		t.Errorf("Score(paper) = %v, want %v", got, want)
	}

	noYear := item("r", catalog.TypeResource)
	withDefault := item("r2", catalog.TypeResource)
	withDefault.Year = DefaultYear
	if h.Score(noYear) != h.Score(withDefault) {
		t.Error("missing year should score as the default year")
	}

	future := item("f", catalog.TypeResource)
	future.Year = 2030
	if h.recency(future) != 1 {
		t.Errorf("recency of future item = %v, want 1", h.recency(future))
	}

	busy := item("busy", catalog.TypeCareer)
	quiet := item("quiet", catalog.TypeCareer)
	if h.engagement(busy) != 1 {
		t.Errorf("engagement at max volume = %v, want 1", h.engagement(busy))
	}
	if e := h.engagement(quiet); e <= 0.1 || e >= 1 {
		t.Errorf("engagement with some volume = %v, want between type default and 1", e)
	}

	pkg := &catalog.Item{ID: "pkg", Type: catalog.TypePackage, Extension: catalog.PackageExt{Stars: 10000}}
	if h.engagement(pkg) != 1 {
		t.Errorf("engagement at 10k stars = %v, want 1", h.engagement(pkg))
	}
}

func TestPickHeroTieKeepsFirst(t *testing.T) {
	h := NewHeroScorer(2024, nil)
	idx, _ := h.pickHero([]*catalog.Item{item("a", catalog.TypeBook), item("b", catalog.TypeBook)})
	if idx != 0 {
		t.Errorf("pickHero() = %d, want 0", idx)
	}
	if idx, _ := h.pickHero(nil); idx != -1 {
		t.Errorf("pickHero(nil) = %d, want -1", idx)
	}
}

func TestTypeCoverage(t *testing.T) {
	candidates := []*catalog.Item{
		paper("p1", 0, 0), paper("p2", 0, 0), paper("p3", 0, 0),
		item("t1", catalog.TypeTalk),
		item("k1", catalog.TypePackage),
		item("d1", catalog.TypeDataset),
	}
	rel := map[string]float64{"p1": 0.2, "p2": 0.9, "p3": 0.9, "t1": 0.1, "k1": 0.5, "d1": 1}

	tests := []struct {
		name   string
		quotas map[string]int
		limit  int
		want   string
	}{
		{"default quotas in type order", DefaultMinPerType(), 10, "[t1 p2 p3 k1]"},
		{"limit truncates", DefaultMinPerType(), 2, "[t1 p2]"},
		{"zero quota skipped", map[string]int{"dataset": 0, "paper": 1}, 10, "[p2]"},
		{"no quotas", nil, 10, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := typeCoverage(candidates, rel, tt.quotas, tt.limit)
			if s := fmt.Sprint(got); s != tt.want {
				t.Errorf("typeCoverage() = %s, want %s", s, tt.want)
			}
		})
	}
}

func TestILD(t *testing.T) {
	vecs := map[string][]float64{
		"x": {1, 0},
		"y": {0, 1},
		"z": {1, 0},
	}
	tests := []struct {
		name string
		ids  []string
		want float64
	}{
		{"orthogonal pair", []string{"x", "y"}, 1},
		{"identical pair", []string{"x", "z"}, 0},
		{"triple", []string{"x", "y", "z"}, 2.0 / 3},
		{"single", []string{"x"}, 0},
		{"missing vectors ignored", []string{"x", "nope", "y"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ILD(tt.ids, vecs); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("ILD() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuditILD(t *testing.T) {
	tests := []struct {
		ild  float64
		size int
		want string
	}{
		{0.1, 5, FlagRedundant},
		{0.5, 5, FlagNone},
		{0.3, 5, FlagNone},
		{0.7, 5, FlagNone},
		{0.9, 5, FlagIncoherent},
		{0, 1, FlagNone},
	}
	for _, tt := range tests {
		if got := AuditILD(tt.ild, tt.size, 0.3, 0.7); got != tt.want {
			t.Errorf("AuditILD(%v, %d) = %q, want %q", tt.ild, tt.size, got, tt.want)
		}
	}
}

func TestTypeCalibration(t *testing.T) {
	cluster := []*catalog.Item{
		paper("p1", 0, 0), paper("p2", 0, 0),
		item("t1", catalog.TypeTalk), item("t2", catalog.TypeTalk),
	}
	if got := TypeCalibration(cluster, []string{"p1", "t1"}); math.Abs(got) > 1e-12 {
		t.Errorf("mirrored mix = %v, want 0", got)
	}
	if got := TypeCalibration(cluster, []string{"p1", "p2"}); got <= 0 {
		t.Errorf("single-type carousel = %v, want > 0", got)
	}
}
