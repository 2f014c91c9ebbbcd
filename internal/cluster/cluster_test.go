// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package cluster

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const clustersJSON = `{
  "generated_at": "2026-01-02T03:04:05",
  "clusters": [
    {"id": 1, "label": "Uplift Modeling", "item_count": 2, "top_tags": ["uplift"], "top_categories": ["Causal Inference"]},
    {"id": 0, "label": "Bandits", "item_count": 1}
  ],
  "item_to_cluster": {"paper-b": 1, "paper-a": 1, "talk-x": 0, "stray": 9, "Talk_Y": 0}
}`

func TestParse(t *testing.T) {
	clusters, stats, err := Parse([]byte(clustersJSON))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if stats.Clusters != 2 || stats.Items != 3 || stats.Orphans != 1 || stats.Invalid != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if clusters[0].ID != 0 || clusters[1].Label != "Uplift Modeling" {
		t.Errorf("clusters not ordered by ID: %+v", clusters)
	}
	if got := fmt.Sprint(clusters[1].Members); got != "[paper-a paper-b]" {
		t.Errorf("Members = %s, want [paper-a paper-b]", got)
	}
	if clusters[1].TopCategories[0] != "Causal Inference" {
		t.Errorf("TopCategories = %v", clusters[1].TopCategories)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		is   error
	}{
		{"malformed", `{"clusters": [`, nil},
		{"no clusters", `{"clusters": []}`, ErrNoClusters},
		{"duplicate id", `{"clusters": [{"id": 1}, {"id": 1}]}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("Parse() error = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.json")
	if err := os.WriteFile(path, []byte(clustersJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	clusters, _, err := Load(path)
	if err != nil || len(clusters) != 2 {
		t.Fatalf("Load() = %d clusters, %v", len(clusters), err)
	}
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Load(missing) error = nil")
	}
}

func TestCentroid(t *testing.T) {
	vecs := vecMap{"a": {1, 0}, "b": {0, 1}, "bad": {1, 2, 3}}
	if got := fmt.Sprint(Centroid([]string{"a", "b", "none", "bad"}, vecs)); got != "[0.5 0.5]" {
		t.Errorf("Centroid() = %s, want [0.5 0.5]", got)
	}
	if Centroid([]string{"none"}, vecs) != nil {
		t.Error("Centroid() without vectors should be nil")
	}
	if Centroid([]string{"a"}, nil) != nil {
		t.Error("Centroid() with nil source should be nil")
	}
}

func TestGroupString(t *testing.T) {
	if GroupCareer.String() != "career" || Group(42).String() != "group(42)" {
		t.Errorf("Group.String() = %s, %s", GroupCareer, Group(42))
	}
}
