// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/recommend"
)

// ErrNoRankings is returned by Load when rankings.json does not exist.
var ErrNoRankings = errors.New("no rankings artifact")

// Snapshot is an immutable in-memory copy of one artifact directory.
type Snapshot struct {
	Rankings  *Rankings
	Trending  *Trending
	Carousels *Carousels

	// ETag changes whenever any artifact file changes.
	ETag     string
	LoadedAt time.Time

	entries  map[string]int
	clusters map[int]int
}

// Load reads the artifacts in dir. rankings.json is required; trending.json
// and carousels.json are optional.
func Load(dir string) (*Snapshot, error) {
	h := sha256.New()
	s := &Snapshot{LoadedAt: time.Now().UTC()}

	s.Rankings = &Rankings{}
	found, err := readJSON(filepath.Join(dir, RankingsFile), s.Rankings, h)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w in %s", ErrNoRankings, dir)
	}

	s.Trending = &Trending{}
	if found, err = readJSON(filepath.Join(dir, TrendingFile), s.Trending, h); err != nil {
		return nil, err
	}
	if !found {
		s.Trending = nil
	}

	s.Carousels = &Carousels{}
	if found, err = readJSON(filepath.Join(dir, CarouselsFile), s.Carousels, h); err != nil {
		return nil, err
	}
	if !found {
		s.Carousels = nil
	}

	s.ETag = `"` + hex.EncodeToString(h.Sum(nil))[:16] + `"`
	s.index()
	return s, nil
}

func readJSON(path string, v any, h hash.Hash) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from the configured output directory
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	_, _ = h.Write(data) //nolint:errcheck // hash writes never fail
	return true, nil
}

func (s *Snapshot) index() {
	s.entries = make(map[string]int, len(s.Rankings.Rankings))
	for i := range s.Rankings.Rankings {
		s.entries[s.Rankings.Rankings[i].ID] = i
	}
	if s.Carousels == nil {
		return
	}
	s.clusters = make(map[int]int, len(s.Carousels.Clusters))
	for i := range s.Carousels.Clusters {
		s.clusters[s.Carousels.Clusters[i].ID] = i
	}
}

// Entry returns the ranking entry of an item.
func (s *Snapshot) Entry(id string) (recommend.ScoreEntry, bool) {
	i, ok := s.entries[id]
	if !ok {
		return recommend.ScoreEntry{}, false
	}
	return s.Rankings.Rankings[i], true
}

// Cluster returns one carousel cluster.
func (s *Snapshot) Cluster(id int) (Cluster, bool) {
	i, ok := s.clusters[id]
	if !ok {
		return Cluster{}, false
	}
	return s.Carousels.Clusters[i], true
}

// ClusterOf returns the cluster ID of an item.
func (s *Snapshot) ClusterOf(id string) (int, bool) {
	if s.Carousels == nil {
		return 0, false
	}
	c, ok := s.Carousels.ItemToCluster[id]
	return c, ok
}
