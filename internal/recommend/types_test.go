// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"testing"
	"time"
)

func TestAlgorithmName(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{MethodALS, "hybrid_als_als"},
		{MethodWeighted, "hybrid_als_weighted"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			if got := AlgorithmName(tt.method); got != tt.want {
				t.Errorf("AlgorithmName(%q) = %q, want %q", tt.method, got, tt.want)
			}
		})
	}
}

func sampleTable() *ScoreTable {
	return NewScoreTable([]ScoreEntry{
		{ID: "paper-c", Score: 0.2, ColdStart: true},
		{ID: "paper-a", Score: 1.0},
		{ID: "talk-b", Score: 0.5},
		{ID: "paper-b", Score: 0.5, ColdStart: true},
		{ID: "book-z", Score: 0},
	})
}

func TestNewScoreTable_Order(t *testing.T) {
	table := sampleTable()

	want := []string{"paper-a", "paper-b", "talk-b", "paper-c", "book-z"}
	entries := table.Entries()
	if len(entries) != len(want) {
		t.Fatalf("Entries() len = %d, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.ID != want[i] {
			t.Errorf("Entries()[%d].ID = %q, want %q", i, e.ID, want[i])
		}
		if e.Rank != i+1 {
			t.Errorf("Entries()[%d].Rank = %d, want %d", i, e.Rank, i+1)
		}
	}
}

func TestNewScoreTable_CopiesInput(t *testing.T) {
	in := []ScoreEntry{{ID: "a", Score: 0.1}, {ID: "b", Score: 0.9}}
	table := NewScoreTable(in)

	in[0].Score = 5
	if e, _ := table.Get("a"); e.Score != 0.1 {
		t.Errorf("Get(a).Score = %v after mutating input, want 0.1", e.Score)
	}

	entries := table.Entries()
	entries[0].Score = -1
	if e, _ := table.Get(entries[0].ID); e.Score == -1 {
		t.Error("mutating Entries() result changed the table")
	}
}

func TestScoreTable_Get(t *testing.T) {
	table := sampleTable()

	e, ok := table.Get("talk-b")
	if !ok {
		t.Fatal("Get(talk-b) not found")
	}
	if e.Rank != 3 {
		t.Errorf("Get(talk-b).Rank = %d, want 3", e.Rank)
	}
	if _, ok := table.Get("missing"); ok {
		t.Error("Get(missing) found, want not found")
	}
}

func TestScoreTable_Top(t *testing.T) {
	table := sampleTable()

	tests := []struct {
		name string
		n    int
		keep func(*ScoreEntry) bool
		want []string
	}{
		{"first two", 2, nil, []string{"paper-a", "paper-b"}},
		{"no limit", 0, nil, []string{"paper-a", "paper-b", "talk-b", "paper-c", "book-z"}},
		{"limit above size", 10, nil, []string{"paper-a", "paper-b", "talk-b", "paper-c", "book-z"}},
		{"cold only", 0, func(e *ScoreEntry) bool { return e.ColdStart }, []string{"paper-b", "paper-c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Top(tt.n, tt.keep)
			if len(got) != len(tt.want) {
				t.Fatalf("Top() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("Top()[%d] = %q, want %q", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestScoreTable_Trending(t *testing.T) {
	table := sampleTable()

	got := table.Trending(2)
	want := []string{"paper-a", "talk-b"}
	if len(got) != len(want) {
		t.Fatalf("Trending(2) len = %d, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i].ID != want[i] {
			t.Errorf("Trending(2)[%d] = %q, want %q", i, got[i].ID, want[i])
		}
		if got[i].ColdStart {
			t.Errorf("Trending(2)[%d] is cold-start", i)
		}
	}
}

func TestScoreTable_Counts(t *testing.T) {
	observed, cold := sampleTable().Counts()
	if observed != 3 || cold != 2 {
		t.Errorf("Counts() = (%d, %d), want (3, 2)", observed, cold)
	}
}

func TestScoreTable_Scores(t *testing.T) {
	scores := sampleTable().Scores()
	if len(scores) != 5 {
		t.Fatalf("Scores() len = %d, want 5", len(scores))
	}
	if scores["paper-a"] != 1.0 {
		t.Errorf("Scores()[paper-a] = %v, want 1", scores["paper-a"])
	}
}

func TestRanking_Algorithm(t *testing.T) {
	r := &Ranking{Scoring: Scoring{Method: MethodWeighted}}
	if got := r.Algorithm(); got != "hybrid_als_weighted" {
		t.Errorf("Algorithm() = %q, want hybrid_als_weighted", got)
	}
}

func TestRunResult_Duration(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := &RunResult{StartedAt: start, CompletedAt: start.Add(90 * time.Second)}
	if got := r.Duration(); got != 90*time.Second {
		t.Errorf("Duration() = %v, want 1m30s", got)
	}
}
