// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/cluster"
	"github.com/tomtom215/curator/internal/embed"
	"github.com/tomtom215/curator/internal/engagement"
)

// IDs of the three-item fixture. Alpha has engagement, Beta sits next to
// Alpha in embedding space, Gamma is unrelated.
const (
	idAlpha = "paper-alpha"
	idBeta  = "paper-beta"
	idGamma = "paper-gamma"
)

func fixtureItems() []catalog.Item {
	mk := func(id, name string) catalog.Item {
		return catalog.Item{
			ID:       id,
			Name:     name,
			Type:     catalog.TypePaper,
			Category: "ml",
			Year:     2024,
		}
	}
	return []catalog.Item{
		mk(idAlpha, "Alpha"),
		mk(idBeta, "Beta"),
		mk(idGamma, "Gamma"),
	}
}

func fixtureCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(fixtureItems())
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

// cohortCatalog builds n papers named "Item 0".."Item n-1".
func cohortCatalog(t *testing.T, n int) *catalog.Catalog {
	t.Helper()
	items := make([]catalog.Item, n)
	for i := range items {
		items[i] = catalog.Item{
			ID:       "paper-item-" + strconv.Itoa(i),
			Name:     "Item " + strconv.Itoa(i),
			Type:     catalog.TypePaper,
			Category: "ml",
			Year:     2024,
		}
	}
	cat, err := catalog.New(items)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

func fixtureVectors(t *testing.T) *embed.Store {
	t.Helper()
	store := embed.NewStore(3)
	for id, v := range map[string][]float64{
		idAlpha: {1, 0, 0},
		idBeta:  {0.95, 0.05, 0},
		idGamma: {0, 0, 1},
	} {
		if err := store.Put(id, v); err != nil {
			t.Fatalf("Put(%s) error = %v", id, err)
		}
	}
	return store
}

func clickRows(clicks map[string]int64) *engagement.Rows {
	rows := &engagement.Rows{}
	for name, n := range clicks {
		rows.Clicks = append(rows.Clicks, engagement.ClickRow{Name: name, Count: n})
	}
	return rows
}

// staticCatalog serves a fixed catalog.
type staticCatalog struct {
	cat *catalog.Catalog
	err error

	// gate, when set, blocks Load until it is closed.
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (s *staticCatalog) Load(ctx context.Context) (*catalog.Catalog, error) {
	if s.gate != nil {
		s.once.Do(func() { close(s.entered) })
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.cat, nil
}

// staticVectors serves a fixed embedding store.
type staticVectors struct {
	store *embed.Store
	err   error
}

func (s *staticVectors) Load(_ context.Context, _ []catalog.Item) (*embed.Store, error) {
	return s.store, s.err
}

// staticEvents serves fixed engagement rows.
type staticEvents struct {
	mu   sync.Mutex
	rows *engagement.Rows
	err  error
}

func (s *staticEvents) Name() string { return "static" }

func (s *staticEvents) Load(_ context.Context) (*engagement.Rows, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.err
}

func (s *staticEvents) set(rows *engagement.Rows) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
}

// staticClusters serves fixed clusters.
type staticClusters struct {
	clusters []cluster.Cluster
	err      error
}

func (s *staticClusters) Load(_ context.Context) ([]cluster.Cluster, error) {
	return s.clusters, s.err
}

// recordingWriter captures written results.
type recordingWriter struct {
	mu      sync.Mutex
	results []*RunResult
	err     error
}

func (w *recordingWriter) Write(_ context.Context, res *RunResult) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return nil, w.err
	}
	w.results = append(w.results, res)
	return []string{"rankings.json"}, nil
}

// recordingNotifier captures notifications.
type recordingNotifier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (n *recordingNotifier) NotifyRunCompleted(_ context.Context, _ *RunResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return n.err
}
