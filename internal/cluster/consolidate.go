// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package cluster

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/recommend/algorithms"
)

// Config controls consolidation.
type Config struct {
	// MergeThreshold is the centroid cosine a small cluster must exceed to
	// join a large one.
	MergeThreshold float64

	// SmallClusterMax is the largest size still treated as small.
	SmallClusterMax int

	// HomogeneityThreshold is the share of the dominant type at which a
	// cluster counts as homogeneous.
	HomogeneityThreshold float64
}

// DefaultConfig returns the default consolidation settings.
func DefaultConfig() Config {
	return Config{
		MergeThreshold:       0.75,
		SmallClusterMax:      2,
		HomogeneityThreshold: 0.8,
	}
}

// Stats summarizes a consolidation.
type Stats struct {
	Input          int            `json:"input"`
	Output         int            `json:"output"`
	CareerClusters int            `json:"career_clusters"`
	CareerGroups   int            `json:"career_groups"`
	Merged         int            `json:"merged"`
	Relabeled      int            `json:"relabeled"`
	LabelFailures  int            `json:"label_failures"`
	Dropped        int            `json:"dropped"`
	Homogeneous    int            `json:"homogeneous"`
	Groups         map[string]int `json:"groups"`
}

// Consolidator revises cluster membership and labels before carousel
// selection.
type Consolidator struct {
	cfg     Config
	items   ItemLookup
	vectors Vectors
	labeler Labeler
	logger  zerolog.Logger
}

// NewConsolidator creates a consolidator. labeler may be nil, in which case
// generic labels are kept and career groups take the industry name.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewConsolidator(cfg Config, items ItemLookup, vectors Vectors, labeler Labeler, logger zerolog.Logger) *Consolidator {
	def := DefaultConfig()
	if cfg.MergeThreshold == 0 {
		cfg.MergeThreshold = def.MergeThreshold
	}
	if cfg.SmallClusterMax <= 0 {
		cfg.SmallClusterMax = def.SmallClusterMax
	}
	if cfg.HomogeneityThreshold <= 0 {
		cfg.HomogeneityThreshold = def.HomogeneityThreshold
	}
	return &Consolidator{
		cfg:     cfg,
		items:   items,
		vectors: vectors,
		labeler: labeler,
		logger:  logger.With().Str("component", "cluster").Logger(),
	}
}

// Consolidate groups career clusters by industry, merges small clusters
// into similar large ones, relabels generic labels, then orders the result
// and assigns IDs 0..n-1. The input is not modified.
func (c *Consolidator) Consolidate(ctx context.Context, in []Cluster) ([]Cluster, Stats, error) {
	stats := Stats{Input: len(in), Groups: make(map[string]int)}

	working := make([]Cluster, len(in))
	for i := range in {
		working[i] = in[i]
		working[i].Members = append([]string(nil), in[i].Members...)
	}
	sort.SliceStable(working, func(i, j int) bool { return working[i].ID < working[j].ID })

	var topics, careers []Cluster
	for i := range working {
		if IsCareerLabel(working[i].Label) {
			careers = append(careers, working[i])
		} else {
			topics = append(topics, working[i])
		}
	}
	stats.CareerClusters = len(careers)

	grouped, err := c.groupCareers(ctx, careers, &stats)
	if err != nil {
		return nil, stats, err
	}
	topics = c.mergeSmall(topics, &stats)
	if err := c.relabelGeneric(ctx, topics, &stats); err != nil {
		return nil, stats, err
	}

	out := c.finalize(append(topics, grouped...), &stats)

	for g, n := range stats.Groups {
		metrics.Clusters.WithLabelValues(g).Set(float64(n))
	}
	c.logger.Info().
		Int("input", stats.Input).
		Int("output", stats.Output).
		Int("career_groups", stats.CareerGroups).
		Int("merged", stats.Merged).
		Int("relabeled", stats.Relabeled).
		Int("homogeneous", stats.Homogeneous).
		Msg("Clusters consolidated")

	return out, stats, nil
}

// groupCareers merges career clusters into one cluster per industry.
func (c *Consolidator) groupCareers(ctx context.Context, careers []Cluster, stats *Stats) ([]Cluster, error) {
	byIndustry := make(map[string][]Cluster)
	for i := range careers {
		ind := IndustryOf(careers[i].Label, careers[i].TopTags)
		byIndustry[ind] = append(byIndustry[ind], careers[i])
	}

	var out []Cluster
	for _, ind := range Industries() {
		group := byIndustry[ind]
		if len(group) == 0 {
			continue
		}
		var tags, cats []string
		var members []string
		for i := range group {
			tags = append(tags, group[i].TopTags...)
			cats = append(cats, group[i].TopCategories...)
			members = append(members, group[i].Members...)
		}
		merged := Cluster{
			ID:            group[0].ID,
			Label:         ind,
			TopTags:       mostCommon(tags, 5),
			TopCategories: mostCommon(cats, 3),
			Members:       dedupeSorted(members),
			Career:        true,
		}
		if c.labeler != nil {
			label, err := c.label(ctx, &merged, true)
			if err != nil {
				return nil, err
			}
			if label != "" {
				merged.Label = label
				stats.Relabeled++
			} else {
				stats.LabelFailures++
			}
		}
		out = append(out, merged)
		c.logger.Debug().Str("industry", ind).Int("clusters", len(group)).Int("items", len(merged.Members)).Msg("Grouped career clusters")
	}
	stats.CareerGroups = len(out)
	return out, nil
}

// mergeSmall moves each small cluster into the large cluster with the most
// similar centroid, when that similarity exceeds the threshold.
func (c *Consolidator) mergeSmall(topics []Cluster, stats *Stats) []Cluster {
	var large, small []int
	for i := range topics {
		if topics[i].Size() > c.cfg.SmallClusterMax {
			large = append(large, i)
		} else {
			small = append(small, i)
		}
	}

	centroids := make([][]float64, len(topics))
	for i := range topics {
		centroids[i] = Centroid(topics[i].Members, c.vectors)
	}

	absorbed := make(map[int]bool)
	for _, si := range small {
		if centroids[si] == nil {
			continue
		}
		best, bestSim := -1, c.cfg.MergeThreshold
		for _, li := range large {
			if centroids[li] == nil {
				continue
			}
			if sim := algorithms.CosineSimilarity(centroids[si], centroids[li]); sim > bestSim {
				best, bestSim = li, sim
			}
		}
		if best < 0 {
			continue
		}
		c.logger.Debug().
			Str("from", topics[si].Label).
			Str("into", topics[best].Label).
			Float64("similarity", bestSim).
			Msg("Merging small cluster")
		topics[best].Members = append(topics[best].Members, topics[si].Members...)
		absorbed[si] = true
		stats.Merged++
	}

	out := make([]Cluster, 0, len(topics)-len(absorbed))
	for i := range topics {
		if absorbed[i] {
			continue
		}
		topics[i].Members = dedupeSorted(topics[i].Members)
		out = append(out, topics[i])
	}
	return out
}

// relabelGeneric replaces labels made of generic terms. A model label that
// is still generic is rejected in favour of one built from the top tags.
// Without a labeler the top-tag label is used directly.
func (c *Consolidator) relabelGeneric(ctx context.Context, topics []Cluster, stats *Stats) error {
	for i := range topics {
		if !IsGenericLabel(topics[i].Label) {
			continue
		}
		var label string
		if c.labeler != nil {
			var err error
			if label, err = c.label(ctx, &topics[i], false); err != nil {
				return err
			}
			if label == "" || IsGenericLabel(label) {
				stats.LabelFailures++
			}
		}
		if label == "" || IsGenericLabel(label) {
			label = FallbackLabel(topics[i].TopTags)
		}
		if label == "" || IsGenericLabel(label) {
			continue
		}
		c.logger.Debug().Str("from", topics[i].Label).Str("to", label).Msg("Relabeled cluster")
		topics[i].Label = label
		stats.Relabeled++
	}
	return nil
}

// label asks the labeler and returns "" on provider failure. Only context
// cancellation is returned as an error.
func (c *Consolidator) label(ctx context.Context, cl *Cluster, career bool) (string, error) {
	req := &LabelRequest{
		Career:        career,
		TopTags:       cl.TopTags,
		TopCategories: cl.TopCategories,
	}
	for _, id := range cl.Members {
		it, ok := c.lookup(id)
		if !ok {
			continue
		}
		if len(req.Names) < 6 {
			req.Names = append(req.Names, truncate(it.Name, 40))
		}
		if len(req.Descriptions) < 4 && it.Description != "" {
			req.Descriptions = append(req.Descriptions, truncate(it.Description, 80))
		}
	}

	label, err := c.labeler.Label(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Warn().Err(err).Str("label", cl.Label).Msg("Cluster labeling failed")
		return "", nil
	}
	return label, nil
}

// finalize classifies clusters, drops empty ones, orders them by group,
// size and label, and assigns sequential IDs.
func (c *Consolidator) finalize(clusters []Cluster, stats *Stats) []Cluster {
	out := make([]Cluster, 0, len(clusters))
	for i := range clusters {
		cl := clusters[i]
		if cl.Size() == 0 {
			stats.Dropped++
			continue
		}
		c.classify(&cl)
		if cl.Homogeneous {
			stats.Homogeneous++
		}
		out = append(out, cl)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		if out[i].Size() != out[j].Size() {
			return out[i].Size() > out[j].Size()
		}
		return out[i].Label < out[j].Label
	})
	for i := range out {
		out[i].ID = i
		stats.Groups[out[i].Group.String()]++
	}
	stats.Output = len(out)
	return out
}

// classify sets the dominant type, homogeneity, career flag and group.
// A cluster made only of career items is a career cluster whatever its label.
func (c *Consolidator) classify(cl *Cluster) {
	counts := make(map[string]int)
	known := 0
	for _, id := range cl.Members {
		if it, ok := c.lookup(id); ok {
			counts[string(it.Type)]++
			known++
		}
	}

	dominant, top := "", 0
	for t, n := range counts {
		if n > top || (n == top && t < dominant) {
			dominant, top = t, n
		}
	}
	cl.DominantType = dominant
	cl.Homogeneous = known > 0 && float64(top)/float64(known) >= c.cfg.HomogeneityThreshold
	if known > 0 && counts[string(catalog.TypeCareer)] == known {
		cl.Career = true
	}
	if strings.Contains(strings.ToLower(cl.Label), "career") {
		cl.Career = true
	}

	technical := IsTechnicalLabel(cl.Label)
	switch {
	case cl.Career:
		cl.Group = GroupCareer
	case cl.Homogeneous && technical:
		cl.Group = GroupHomogeneousTechnical
	case cl.Homogeneous:
		cl.Group = GroupHomogeneousOther
	case technical:
		cl.Group = GroupDiverseTechnical
	default:
		cl.Group = GroupDiverseOther
	}
}

func (c *Consolidator) lookup(id string) (*catalog.Item, bool) {
	if c.items == nil {
		return nil, false
	}
	return c.items.ByID(id)
}

// mostCommon returns up to n values by frequency, ties in first-seen order.
func mostCommon(values []string, n int) []string {
	counts := make(map[string]int)
	first := make(map[string]int)
	var keys []string
	for i, v := range values {
		if _, ok := counts[v]; !ok {
			first[v] = i
			keys = append(keys, v)
		}
		counts[v]++
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return first[keys[i]] < first[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func dedupeSorted(ids []string) []string {
	sort.Strings(ids)
	out := ids[:0]
	for _, id := range ids {
		if len(out) > 0 && out[len(out)-1] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
