// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/cluster"
	"github.com/tomtom215/curator/internal/engagement"
	"github.com/tomtom215/curator/internal/recommend"
	"github.com/tomtom215/curator/internal/recommend/reranking"
)

func sampleRun() *recommend.RunResult {
	table := recommend.NewScoreTable([]recommend.ScoreEntry{
		{ID: "paper-a", Name: "A", Type: "paper", Score: 1, Engagement: 55.123456, Signals: engagement.Breakdown{Clicks: 11}},
		{ID: "talk-b", Name: "B", Type: "talk", Score: 0.612345678, ColdStart: true},
		{ID: "package-c", Name: "C", Type: "package", Score: 0.4, Engagement: 2, Signals: engagement.Breakdown{Impressions: 2}},
		{ID: "book-d", Name: "D", Type: "book", Score: 0, ColdStart: true},
	})
	factors := 5
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &recommend.RunResult{
		RunID:       "run-1",
		StartedAt:   start,
		CompletedAt: start.Add(time.Minute),
		Ranking: &recommend.Ranking{
			Table:   table,
			Scoring: recommend.Scoring{Method: recommend.MethodALS, ALSFactors: &factors, Discount: 0.3},
			Dropped: map[engagement.Kind]int{engagement.KindClick: 2},
		},
		Clusters: []cluster.Cluster{
			{ID: 0, Label: "Causal Inference", Members: []string{"package-c", "paper-a", "talk-b"}, TopTags: []string{"causal"}},
			{ID: 1, Label: "Reading", Members: []string{"book-d"}},
		},
		Carousels: []reranking.Carousel{
			{ClusterID: 0, Label: "Causal Inference", Size: 3, HeroID: "paper-a", HeroScore: 0.91234,
				Items: []string{"paper-a", "talk-b", "package-c"}, Types: []string{"package", "paper", "talk"},
				ILD: 0.456789, Flag: ""},
		},
		Diversity: reranking.DefaultConfig(),
	}
}

func TestNewRankings(t *testing.T) {
	r := NewRankings(sampleRun())

	if r.Algorithm != "hybrid_als_als" {
		t.Errorf("Algorithm = %q, want hybrid_als_als", r.Algorithm)
	}
	if r.TotalItems != 4 || r.ObservedItems != 2 || r.ColdStartItems != 2 {
		t.Errorf("counts = %d/%d/%d, want 4/2/2", r.TotalItems, r.ObservedItems, r.ColdStartItems)
	}
	if r.Rankings[1].ID != "talk-b" || r.Rankings[1].Score != 0.6123 {
		t.Errorf("Rankings[1] = %s %v, want talk-b 0.6123", r.Rankings[1].ID, r.Rankings[1].Score)
	}
	if r.Rankings[0].Engagement != 55.1235 {
		t.Errorf("Rankings[0].Engagement = %v, want 55.1235", r.Rankings[0].Engagement)
	}
	if r.Dropped[engagement.KindClick] != 2 {
		t.Errorf("Dropped[click] = %d, want 2", r.Dropped[engagement.KindClick])
	}
	if !r.Updated.Equal(sampleRun().CompletedAt) {
		t.Errorf("Updated = %v, want run completion time", r.Updated)
	}
}

func TestNewTrending(t *testing.T) {
	tr := NewTrending(sampleRun(), 12)
	if tr.Count != 2 {
		t.Fatalf("Count = %d, want 2", tr.Count)
	}
	for _, e := range tr.Items {
		if e.ColdStart {
			t.Errorf("trending item %s is cold-start", e.ID)
		}
	}

	tr = NewTrending(sampleRun(), 1)
	if tr.Count != 1 || tr.Items[0].ID != "paper-a" {
		t.Errorf("NewTrending(1) = %+v, want paper-a only", tr.Items)
	}
}

func TestNewCarousels(t *testing.T) {
	c := NewCarousels(sampleRun())

	if c.NumClusters != 2 || c.NumItems != 4 {
		t.Errorf("NumClusters = %d NumItems = %d, want 2 and 4", c.NumClusters, c.NumItems)
	}
	if c.MMRConfig.Lambda != reranking.DefaultConfig().Lambda {
		t.Errorf("MMRConfig.Lambda = %v, want %v", c.MMRConfig.Lambda, reranking.DefaultConfig().Lambda)
	}
	if c.MMRConfig.RelevanceWeights != reranking.DefaultRelevanceWeights() {
		t.Errorf("RelevanceWeights = %+v, want defaults", c.MMRConfig.RelevanceWeights)
	}

	first := c.Clusters[0]
	if first.HeroItem != "paper-a" || first.CarouselItems[0] != "paper-a" {
		t.Errorf("cluster 0 hero %q items %v, want paper-a first", first.HeroItem, first.CarouselItems)
	}
	if first.ILDScore != 0.457 {
		t.Errorf("ILDScore = %v, want 0.457", first.ILDScore)
	}
	if first.ItemCount != 3 {
		t.Errorf("ItemCount = %d, want 3", first.ItemCount)
	}

	second := c.Clusters[1]
	if second.HeroItem != "" || len(second.CarouselItems) != 0 || second.CarouselItems == nil {
		t.Errorf("cluster without carousel = %+v, want empty selection", second)
	}
	if c.ItemToCluster["book-d"] != 1 {
		t.Errorf("ItemToCluster[book-d] = %d, want 1", c.ItemToCluster["book-d"])
	}
}

func TestWriter_WriteAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := NewWriter(dir, 0, zerolog.Nop())

	paths, err := w.Write(context.Background(), sampleRun())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(paths) != 3 {
		t.Errorf("Write() paths = %v, want 3 files", paths)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, f := range files {
		if strings.HasPrefix(f.Name(), ".") {
			t.Errorf("temp file %s left behind", f.Name())
		}
	}

	snap, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Rankings.RunID != "run-1" {
		t.Errorf("Rankings.RunID = %q, want run-1", snap.Rankings.RunID)
	}
	if snap.Rankings.Scoring.ALSFactors == nil || *snap.Rankings.Scoring.ALSFactors != 5 {
		t.Errorf("Scoring.ALSFactors = %v, want 5", snap.Rankings.Scoring.ALSFactors)
	}
	if e, ok := snap.Entry("paper-a"); !ok || e.Signals.Clicks != 11 || e.Rank != 1 {
		t.Errorf("Entry(paper-a) = %+v, %v", e, ok)
	}
	if c, ok := snap.Cluster(0); !ok || c.HeroItem != "paper-a" {
		t.Errorf("Cluster(0) = %+v, %v", c, ok)
	}
	if id, ok := snap.ClusterOf("talk-b"); !ok || id != 0 {
		t.Errorf("ClusterOf(talk-b) = %d, %v, want 0", id, ok)
	}
	if snap.Trending == nil || snap.Trending.Count != 2 {
		t.Errorf("Trending = %+v, want 2 items", snap.Trending)
	}
	if snap.ETag == "" {
		t.Error("ETag empty")
	}
}

func TestWriter_KeepsCarouselsWithoutClusters(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 12, zerolog.Nop())

	if _, err := w.Write(context.Background(), sampleRun()); err != nil {
		t.Fatalf("first Write() error = %v", err)
	}
	before, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	res := sampleRun()
	res.RunID = "run-2"
	res.Clusters = nil
	res.Carousels = nil
	paths, err := w.Write(context.Background(), res)
	if err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("paths = %v, want rankings and trending only", paths)
	}

	after, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if after.Rankings.RunID != "run-2" {
		t.Errorf("Rankings.RunID = %q, want run-2", after.Rankings.RunID)
	}
	if after.Carousels == nil || after.Carousels.RunID != "run-1" {
		t.Error("carousels.json replaced by a run without clusters")
	}
	if after.ETag == before.ETag {
		t.Error("ETag unchanged after new rankings")
	}
}

func TestWriter_RejectsEmptyRun(t *testing.T) {
	w := NewWriter(t.TempDir(), 12, zerolog.Nop())
	if _, err := w.Write(context.Background(), &recommend.RunResult{}); err == nil {
		t.Error("Write() error = nil for a run without ranking")
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(t.TempDir()); !errors.Is(err, ErrNoRankings) {
		t.Errorf("Load() error = %v, want ErrNoRankings", err)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, RankingsFile), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if err == nil || errors.Is(err, ErrNoRankings) {
		t.Errorf("Load() error = %v, want decode error", err)
	}
}

func TestWriteJSON_ReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.json")
	if err := WriteJSON(path, map[string]int{"v": 1}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if err := WriteJSON(path, map[string]int{"v": 2}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"v": 2`) {
		t.Errorf("file = %s, want v 2", data)
	}
}
