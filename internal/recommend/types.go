// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"sort"
	"time"

	"github.com/tomtom215/curator/internal/cluster"
	"github.com/tomtom215/curator/internal/engagement"
	"github.com/tomtom215/curator/internal/recommend/algorithms"
	"github.com/tomtom215/curator/internal/recommend/reranking"
)

// Observed-score methods. The artifact algorithm is "hybrid_als_" + method.
const (
	MethodALS      = "als"
	MethodWeighted = "weighted"
)

// Cold-start methods.
const (
	ColdStartRidge = "ridge"
	ColdStartKNN   = "knn"
)

// AlgorithmName returns the artifact algorithm label for an observed-score
// method.
func AlgorithmName(method string) string {
	return "hybrid_als_" + method
}

// ScoreEntry is one ranked item.
type ScoreEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`

	// Score is the final normalized score in [0, 1].
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`

	// ColdStart is true when the item has no observed interaction.
	ColdStart bool `json:"cold_start"`

	// Engagement is the raw weighted engagement score.
	Engagement float64 `json:"engagement"`

	// Signals is the raw signal breakdown. Empty for cold-start items.
	Signals engagement.Breakdown `json:"signals"`

	// Citations is set for papers with a citation count.
	Citations int `json:"citations,omitempty"`
}

// ScoreTable is the immutable global ranking of one run. Entries are
// ordered by score descending, then ID ascending. It has no mutators;
// accessors return copies.
type ScoreTable struct {
	entries []ScoreEntry
	index   map[string]int
}

// NewScoreTable orders entries, assigns ranks from 1 and freezes the table.
// The slice is copied.
func NewScoreTable(entries []ScoreEntry) *ScoreTable {
	sorted := make([]ScoreEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID < sorted[j].ID
	})

	index := make(map[string]int, len(sorted))
	for i := range sorted {
		sorted[i].Rank = i + 1
		index[sorted[i].ID] = i
	}
	return &ScoreTable{entries: sorted, index: index}
}

// Len returns the number of ranked items.
func (t *ScoreTable) Len() int {
	return len(t.entries)
}

// Entries returns a copy of all entries in rank order.
func (t *ScoreTable) Entries() []ScoreEntry {
	out := make([]ScoreEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Get returns the entry for id.
func (t *ScoreTable) Get(id string) (ScoreEntry, bool) {
	i, ok := t.index[id]
	if !ok {
		return ScoreEntry{}, false
	}
	return t.entries[i], true
}

// Scores returns item ID to final score.
func (t *ScoreTable) Scores() map[string]float64 {
	out := make(map[string]float64, len(t.entries))
	for i := range t.entries {
		out[t.entries[i].ID] = t.entries[i].Score
	}
	return out
}

// Top returns up to n entries in rank order that satisfy keep. A nil keep
// accepts every entry; n <= 0 means no limit.
func (t *ScoreTable) Top(n int, keep func(*ScoreEntry) bool) []ScoreEntry {
	var out []ScoreEntry
	for i := range t.entries {
		if n > 0 && len(out) == n {
			break
		}
		if keep == nil || keep(&t.entries[i]) {
			out = append(out, t.entries[i])
		}
	}
	return out
}

// Trending returns the top n entries with observed engagement.
func (t *ScoreTable) Trending(n int) []ScoreEntry {
	return t.Top(n, func(e *ScoreEntry) bool { return !e.ColdStart })
}

// Counts returns the number of observed and cold-start entries.
func (t *ScoreTable) Counts() (observed, cold int) {
	for i := range t.entries {
		if t.entries[i].ColdStart {
			cold++
		} else {
			observed++
		}
	}
	return observed, cold
}

// Scoring describes how the observed and cold-start scores were produced.
type Scoring struct {
	// Method is als or weighted.
	Method string `json:"method"`

	// ALSFactors is the latent dimension, nil when ALS did not run.
	ALSFactors *int `json:"als_factors"`

	// FallbackWeights is the weight table, set when Method is weighted.
	FallbackWeights *engagement.Weights `json:"fallback_weights"`

	// ALSBlend is the weight of the normalized ALS score in click units,
	// nil when ALS did not run.
	ALSBlend *float64 `json:"als_blend,omitempty"`

	// ALSSkipReason explains why the weighted method was used.
	ALSSkipReason string `json:"als_skip_reason,omitempty"`

	ColdStartMethod   string  `json:"cold_start_method"`
	ColdStartFallback string  `json:"cold_start_fallback,omitempty"`
	Discount          float64 `json:"cold_start_discount"`
	ObservedFloor     float64 `json:"observed_floor"`

	// MaxColdScore and MinObservedScore are measured before the final
	// min-max scaling.
	MaxColdScore     float64 `json:"max_cold_score"`
	MinObservedScore float64 `json:"min_observed_score"`

	// DiscountViolation is set when a cold-start item outscored an observed
	// one. DiscountViolationAcceptable marks violations on corpora with too
	// few observed items for the guarantee to apply.
	DiscountViolation           bool `json:"discount_violation"`
	DiscountViolationAcceptable bool `json:"discount_violation_acceptable"`
}

// Ranking is the global ranking of a run with its provenance.
type Ranking struct {
	Table      *ScoreTable
	Scoring    Scoring
	Evaluation algorithms.Evaluation
	Coverage   engagement.Coverage
	Dropped    map[engagement.Kind]int
}

// Algorithm returns the artifact algorithm label.
func (r *Ranking) Algorithm() string {
	return AlgorithmName(r.Scoring.Method)
}

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time

	Ranking   *Ranking
	Clusters  []cluster.Cluster
	Carousels []reranking.Carousel

	ClusterStats cluster.Stats

	// Diversity is the effective carousel configuration.
	Diversity reranking.Config

	// Artifacts lists the files written, empty when no output is configured.
	Artifacts []string
}

// Duration returns the wall time of the run.
func (r *RunResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// RunStatus is a snapshot of the engine state for health reporting.
type RunStatus struct {
	Running       bool      `json:"running"`
	Runs          int       `json:"runs"`
	LastRunID     string    `json:"last_run_id,omitempty"`
	LastStartedAt time.Time `json:"last_started_at,omitempty"`
	LastSuccessAt time.Time `json:"last_success_at,omitempty"`
	LastDuration  string    `json:"last_duration,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	Stage         string    `json:"stage,omitempty"`
	Algorithm     string    `json:"algorithm,omitempty"`
	Items         int       `json:"items"`
	Carousels     int       `json:"carousels"`
}
