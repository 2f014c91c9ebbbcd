// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/cluster"
	"github.com/tomtom215/curator/internal/engagement"
	"github.com/tomtom215/curator/internal/recommend/storage"
)

func newTestEngine(t *testing.T, cfg *Config, deps Dependencies) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, deps, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func fixtureDeps(t *testing.T, clicks map[string]int64) Dependencies {
	t.Helper()
	return Dependencies{
		Catalog: &staticCatalog{cat: fixtureCatalog(t)},
		Vectors: &staticVectors{store: fixtureVectors(t)},
		Events:  &staticEvents{rows: clickRows(clicks)},
	}
}

func TestNewEngine(t *testing.T) {
	t.Run("requires a catalog source", func(t *testing.T) {
		if _, err := NewEngine(nil, Dependencies{}, zerolog.Nop()); err == nil {
			t.Error("NewEngine() error = nil, want error")
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ColdStart.Discount = 2
		if _, err := NewEngine(cfg, fixtureDeps(t, nil), zerolog.Nop()); err == nil {
			t.Error("NewEngine() error = nil, want error")
		}
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		e := newTestEngine(t, nil, fixtureDeps(t, nil))
		if got := e.Config().ColdStart.Discount; got != 0.3 {
			t.Errorf("Config().ColdStart.Discount = %v, want 0.3", got)
		}
	})

	t.Run("config is copied", func(t *testing.T) {
		cfg := DefaultConfig()
		e := newTestEngine(t, cfg, fixtureDeps(t, nil))
		cfg.ColdStart.Discount = 0.9
		if got := e.Config().ColdStart.Discount; got != 0.3 {
			t.Errorf("Config().ColdStart.Discount = %v after mutating caller config, want 0.3", got)
		}
	})
}

func TestEngine_Run_EndToEnd(t *testing.T) {
	models, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("storage.NewStore() error = %v", err)
	}
	writer := &recordingWriter{}
	notifier := &recordingNotifier{}

	deps := fixtureDeps(t, map[string]int64{"Alpha": 100})
	deps.Clusters = &staticClusters{clusters: []cluster.Cluster{
		{ID: 4, Label: "Causal Machine Learning", Members: []string{idAlpha, idBeta, idGamma}},
	}}
	deps.Models = models
	deps.Artifacts = writer
	deps.Notifier = notifier

	e := newTestEngine(t, DefaultConfig(), deps)
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	t.Run("engaged item first, similar cold item above unrelated", func(t *testing.T) {
		// The lone observed item sits midway between floor 0.35 and 1.
		want := map[string]float64{idAlpha: 1, idBeta: 0.3 / (0.35 + 0.65*0.5), idGamma: 0}
		for id, w := range want {
			entry, ok := res.Ranking.Table.Get(id)
			if !ok {
				t.Fatalf("Get(%s) not found", id)
			}
			if !approx(entry.Score, w) {
				t.Errorf("score(%s) = %v, want %v", id, entry.Score, w)
			}
		}
	})

	t.Run("weighted fallback below the ALS threshold", func(t *testing.T) {
		s := res.Ranking.Scoring
		if s.Method != MethodWeighted {
			t.Errorf("Method = %q, want %q", s.Method, MethodWeighted)
		}
		if s.ALSFactors != nil {
			t.Errorf("ALSFactors = %v, want nil", *s.ALSFactors)
		}
		if s.FallbackWeights == nil {
			t.Error("FallbackWeights = nil, want weight table")
		}
		if s.ALSSkipReason == "" {
			t.Error("ALSSkipReason empty")
		}
		if got := res.Ranking.Algorithm(); got != "hybrid_als_weighted" {
			t.Errorf("Algorithm() = %q, want hybrid_als_weighted", got)
		}
		if s.DiscountViolation {
			t.Error("DiscountViolation = true, want false")
		}
		if !approx(s.ObservedFloor, 0.35) {
			t.Errorf("ObservedFloor = %v, want derived 0.35", s.ObservedFloor)
		}
	})

	t.Run("carousel built from the cluster", func(t *testing.T) {
		if len(res.Clusters) != 1 {
			t.Fatalf("Clusters len = %d, want 1", len(res.Clusters))
		}
		if res.Clusters[0].ID != 0 {
			t.Errorf("cluster ID = %d, want 0 after consolidation", res.Clusters[0].ID)
		}
		if len(res.Carousels) != 1 {
			t.Fatalf("Carousels len = %d, want 1", len(res.Carousels))
		}
		c := res.Carousels[0]
		if len(c.Items) == 0 || c.Items[0] != c.HeroID {
			t.Errorf("carousel Items = %v, want hero %q first", c.Items, c.HeroID)
		}
		if len(c.Items) != 3 {
			t.Errorf("carousel size = %d, want 3", len(c.Items))
		}
		if res.Diversity.Lambda != DefaultConfig().Diversity.Lambda {
			t.Errorf("Diversity.Lambda = %v, want %v", res.Diversity.Lambda, DefaultConfig().Diversity.Lambda)
		}
	})

	t.Run("outputs written and announced", func(t *testing.T) {
		if len(writer.results) != 1 || writer.results[0] != res {
			t.Errorf("writer got %d results, want the run result", len(writer.results))
		}
		if notifier.calls != 1 {
			t.Errorf("notifier calls = %d, want 1", notifier.calls)
		}
		if len(res.Artifacts) != 1 {
			t.Errorf("Artifacts = %v, want one path", res.Artifacts)
		}
		if res.CompletedAt.Before(res.StartedAt) {
			t.Error("CompletedAt before StartedAt")
		}
	})

	t.Run("ridge model stored", func(t *testing.T) {
		v, ok := models.LatestVersion(storage.ModelRidge)
		if !ok || v != 1 {
			t.Errorf("LatestVersion(ridge) = (%d, %v), want (1, true)", v, ok)
		}
		if _, ok := models.LatestVersion(storage.ModelALS); ok {
			t.Error("ALS model stored although ALS did not run")
		}
	})

	t.Run("status and last result", func(t *testing.T) {
		if e.Last() != res {
			t.Error("Last() is not the run result")
		}
		st := e.Status()
		if st.Running {
			t.Error("Status().Running = true after run")
		}
		if st.Runs != 1 || st.Items != 3 || st.Carousels != 1 {
			t.Errorf("Status() = %+v, want 1 run, 3 items, 1 carousel", st)
		}
		if st.LastRunID != res.RunID || st.LastError != "" {
			t.Errorf("Status() run %q error %q, want run %q without error", st.LastRunID, st.LastError, res.RunID)
		}
	})
}

func TestEngine_Run_Idempotent(t *testing.T) {
	deps := fixtureDeps(t, map[string]int64{"Alpha": 100, "Gamma": 7})
	e := newTestEngine(t, DefaultConfig(), deps)

	first, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if first.RunID == second.RunID {
		t.Error("runs share a run ID")
	}

	a, b := first.Ranking.Table.Entries(), second.Ranking.Table.Entries()
	if len(a) != len(b) {
		t.Fatalf("entries %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Score != b[i].Score || a[i].Rank != b[i].Rank {
			t.Errorf("entry %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestEngine_Run_MoreClicksNeverLowerScore(t *testing.T) {
	events := &staticEvents{rows: clickRows(map[string]int64{"Alpha": 100, "Beta": 1, "Gamma": 10})}
	deps := fixtureDeps(t, nil)
	deps.Events = events
	e := newTestEngine(t, DefaultConfig(), deps)

	before, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	events.set(clickRows(map[string]int64{"Alpha": 100, "Beta": 1, "Gamma": 50}))
	after, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	b, _ := before.Ranking.Table.Get(idGamma)
	a, _ := after.Ranking.Table.Get(idGamma)
	if a.Score <= b.Score {
		t.Errorf("gamma score %v -> %v after more clicks, want increase", b.Score, a.Score)
	}
	if a.Rank > b.Rank {
		t.Errorf("gamma rank %d -> %d after more clicks, want no drop", b.Rank, a.Rank)
	}
}

func TestEngine_Run_ALSMoreClicksNeverLowerScore(t *testing.T) {
	cat := cohortCatalog(t, 8)
	items := cat.Items()
	counts := []int64{1, 2, 3, 5, 8, 20, 50, 100}
	clicks := make(map[string]int64, len(items))
	for i, it := range items {
		clicks[it.Name] = counts[i]
	}
	events := &staticEvents{rows: clickRows(clicks)}
	e := newTestEngine(t, DefaultConfig(), Dependencies{
		Catalog: &staticCatalog{cat: cat},
		Events:  events,
	})

	before, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	s := before.Ranking.Scoring
	if s.Method != MethodALS {
		t.Fatalf("Method = %q (skip reason %q), want %q", s.Method, s.ALSSkipReason, MethodALS)
	}
	if got := before.Ranking.Algorithm(); got != "hybrid_als_als" {
		t.Errorf("Algorithm() = %q, want hybrid_als_als", got)
	}
	if s.ALSBlend == nil || *s.ALSBlend != 0.5 {
		t.Errorf("ALSBlend = %v, want 0.5", s.ALSBlend)
	}
	if s.DiscountViolation {
		t.Error("DiscountViolation = true, want false")
	}

	for i := 1; i < len(items); i++ {
		lo, _ := before.Ranking.Table.Get(items[i-1].ID)
		hi, _ := before.Ranking.Table.Get(items[i].ID)
		if hi.Score <= lo.Score {
			t.Errorf("%d clicks scored %v, want above %d clicks at %v", counts[i], hi.Score, counts[i-1], lo.Score)
		}
		if hi.Rank >= lo.Rank {
			t.Errorf("%d clicks ranked %d, want ahead of %d clicks at %d", counts[i], hi.Rank, counts[i-1], lo.Rank)
		}
	}

	clicks[items[0].Name] = 200
	events.set(clickRows(clicks))
	after, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if after.Ranking.Scoring.Method != MethodALS {
		t.Fatalf("rerun Method = %q, want %q", after.Ranking.Scoring.Method, MethodALS)
	}
	b, _ := before.Ranking.Table.Get(items[0].ID)
	a, _ := after.Ranking.Table.Get(items[0].ID)
	if a.Score < b.Score || a.Rank != 1 {
		t.Errorf("boosted item score %v rank %d, was %v rank %d; want top", a.Score, a.Rank, b.Score, b.Rank)
	}
}

func TestEngine_Run_ALS(t *testing.T) {
	models, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("storage.NewStore() error = %v", err)
	}
	cfg := DefaultConfig()
	cfg.MinALSItems = 3
	cfg.ALS.MinItems = 3
	cfg.ALS.NumIterations = 5

	deps := fixtureDeps(t, map[string]int64{"Alpha": 30, "Beta": 5, "Gamma": 1})
	deps.Models = models
	e := newTestEngine(t, cfg, deps)

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	s := res.Ranking.Scoring
	if s.Method != MethodALS {
		t.Fatalf("Method = %q (skip reason %q), want %q", s.Method, s.ALSSkipReason, MethodALS)
	}
	if s.ALSFactors == nil || *s.ALSFactors <= 0 {
		t.Errorf("ALSFactors = %v, want positive", s.ALSFactors)
	}
	if s.FallbackWeights != nil {
		t.Error("FallbackWeights set on the ALS path")
	}
	observed, cold := res.Ranking.Table.Counts()
	if observed != 3 || cold != 0 {
		t.Errorf("Counts() = (%d, %d), want (3, 0)", observed, cold)
	}
	for _, entry := range res.Ranking.Table.Entries() {
		if entry.Score < 0 || entry.Score > 1 {
			t.Errorf("score(%s) = %v, want within [0, 1]", entry.ID, entry.Score)
		}
	}

	var state storage.ALSModelState
	meta, err := models.Load(context.Background(), storage.ModelALS, 0, &state)
	if err != nil {
		t.Fatalf("Load(als) error = %v", err)
	}
	if meta.RunID != res.RunID {
		t.Errorf("model RunID = %q, want %q", meta.RunID, res.RunID)
	}
	if len(state.Items) != 3 || state.Factors != *s.ALSFactors {
		t.Errorf("ALS state items %d factors %d, want 3 and %d", len(state.Items), state.Factors, *s.ALSFactors)
	}
}

func TestEngine_Run_PrunesModels(t *testing.T) {
	dir := t.TempDir()
	models, err := storage.NewStore(dir)
	if err != nil {
		t.Fatalf("storage.NewStore() error = %v", err)
	}
	cfg := DefaultConfig()
	cfg.KeepModelVersions = 2

	deps := fixtureDeps(t, map[string]int64{"Alpha": 100})
	deps.Models = models
	e := newTestEngine(t, cfg, deps)

	for i := 0; i < 4; i++ {
		if _, err := e.Run(context.Background()); err != nil {
			t.Fatalf("Run() %d error = %v", i, err)
		}
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(files) != 2 {
		t.Errorf("stored model files = %d, want 2", len(files))
	}
	if v, _ := models.LatestVersion(storage.ModelRidge); v != 4 {
		t.Errorf("LatestVersion(ridge) = %d, want 4", v)
	}
}

func TestEngine_Run_InProgress(t *testing.T) {
	src := &staticCatalog{
		cat:     fixtureCatalog(t),
		gate:    make(chan struct{}),
		entered: make(chan struct{}),
	}
	deps := fixtureDeps(t, nil)
	deps.Catalog = src
	e := newTestEngine(t, DefaultConfig(), deps)

	done := make(chan error, 1)
	go func() {
		_, err := e.Run(context.Background())
		done <- err
	}()

	select {
	case <-src.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first run never reached the catalog stage")
	}

	if _, err := e.Run(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("concurrent Run() error = %v, want ErrRunInProgress", err)
	}
	if st := e.Status(); !st.Running || st.Stage != StageCatalog {
		t.Errorf("Status() = running %v stage %q, want running in %q", st.Running, st.Stage, StageCatalog)
	}

	close(src.gate)
	if err := <-done; err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if e.Status().Runs != 1 {
		t.Errorf("Status().Runs = %d, want 1", e.Status().Runs)
	}
}

func TestEngine_Run_CatalogFailure(t *testing.T) {
	deps := fixtureDeps(t, nil)
	deps.Catalog = &staticCatalog{err: errors.New("disk gone")}
	writer := &recordingWriter{}
	deps.Artifacts = writer
	e := newTestEngine(t, DefaultConfig(), deps)

	if _, err := e.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want catalog error")
	}
	if e.Last() != nil {
		t.Error("Last() set after a failed run")
	}
	if len(writer.results) != 0 {
		t.Error("artifacts written for a failed run")
	}
	if st := e.Status(); st.LastError == "" || st.Runs != 1 {
		t.Errorf("Status() = %+v, want recorded failure", st)
	}
}

func TestEngine_Run_DegradedInputs(t *testing.T) {
	deps := Dependencies{
		Catalog:  &staticCatalog{cat: fixtureCatalog(t)},
		Vectors:  &staticVectors{err: errors.New("no vectors")},
		Events:   &staticEvents{err: errors.New("event store offline")},
		Clusters: &staticClusters{err: errors.New("clusters.json missing")},
	}
	e := newTestEngine(t, DefaultConfig(), deps)

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v, want degraded success", err)
	}
	if got := res.Ranking.Scoring.ColdStartFallback; got != FallbackNoEngagement {
		t.Errorf("ColdStartFallback = %q, want %q", got, FallbackNoEngagement)
	}
	observed, cold := res.Ranking.Table.Counts()
	if observed != 0 || cold != 3 {
		t.Errorf("Counts() = (%d, %d), want (0, 3)", observed, cold)
	}
	if len(res.Carousels) != 0 {
		t.Errorf("Carousels = %d, want 0 without clusters", len(res.Carousels))
	}
	for _, entry := range res.Ranking.Table.Entries() {
		if entry.Score != 0.5 {
			t.Errorf("score(%s) = %v, want 0.5 when all scores tie", entry.ID, entry.Score)
		}
	}
}

func TestEngine_Run_ArtifactFailure(t *testing.T) {
	deps := fixtureDeps(t, map[string]int64{"Alpha": 3})
	deps.Artifacts = &recordingWriter{err: errors.New("read-only file system")}
	notifier := &recordingNotifier{}
	deps.Notifier = notifier
	e := newTestEngine(t, DefaultConfig(), deps)

	if _, err := e.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want artifact error")
	}
	if notifier.calls != 0 {
		t.Errorf("notifier called %d times for a failed run", notifier.calls)
	}
	if e.Last() != nil {
		t.Error("Last() set after a failed run")
	}
}

func TestEngine_Run_NotifierFailureIsNotFatal(t *testing.T) {
	deps := fixtureDeps(t, map[string]int64{"Alpha": 3})
	notifier := &recordingNotifier{err: errors.New("broker down")}
	deps.Notifier = notifier
	e := newTestEngine(t, DefaultConfig(), deps)

	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want success", err)
	}
	if notifier.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", notifier.calls)
	}
}

func TestEngine_Run_Cancelled(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), fixtureDeps(t, map[string]int64{"Alpha": 3}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestEngine_Run_EventsWithoutVectors(t *testing.T) {
	deps := Dependencies{
		Catalog: &staticCatalog{cat: fixtureCatalog(t)},
		Events:  &staticEvents{rows: &engagement.Rows{Clicks: []engagement.ClickRow{{Name: "Alpha", Count: 9}}}},
	}
	e := newTestEngine(t, DefaultConfig(), deps)

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	top := res.Ranking.Table.Top(1, nil)
	if len(top) != 1 || top[0].ID != idAlpha {
		t.Errorf("Top(1) = %+v, want alpha", top)
	}
}
