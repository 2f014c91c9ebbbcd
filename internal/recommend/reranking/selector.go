// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package reranking

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/metrics"
)

// Config controls carousel selection.
type Config struct {
	Lambda            float64
	MaxItems          int
	MinPerType        map[string]int
	ILDLow            float64
	ILDHigh           float64
	GlobalScoreWeight float64
	Weights           RelevanceWeights
	ReferenceYear     int
	Workers           int
}

// DefaultConfig returns the default selection settings.
func DefaultConfig() Config {
	return Config{
		Lambda:     0.6,
		MaxItems:   15,
		MinPerType: DefaultMinPerType(),
		ILDLow:     0.3,
		ILDHigh:    0.7,
		Weights:    DefaultRelevanceWeights(),
	}
}

// ItemLookup resolves catalog items by ID. *catalog.Catalog satisfies it.
type ItemLookup interface {
	ByID(id string) (*catalog.Item, bool)
}

// Signals are optional per-item inputs from the ranking stage.
type Signals struct {
	// Volume is observed interaction volume, used by the hero engagement signal.
	Volume map[string]float64
	// Global is the normalized hybrid score, blended into relevance by
	// GlobalScoreWeight.
	Global map[string]float64
}

// Cluster is a group of items to build one carousel from.
type Cluster struct {
	ID      int
	Label   string
	Members []string
}

// Carousel is the selection for one cluster. Items starts with the hero.
type Carousel struct {
	ClusterID      int
	Label          string
	Size           int
	HeroID         string
	HeroScore      float64
	Items          []string
	Types          []string
	ILD            float64
	Flag           string
	TypeDivergence float64
}

// Selector builds carousels: hero, type coverage, then MMR fill.
// It is safe for concurrent use.
type Selector struct {
	cfg     Config
	items   ItemLookup
	vectors Vectors
	hero    *HeroScorer
	mmr     *MMR
	global  map[string]float64
	logger  zerolog.Logger
}

// NewSelector creates a selector. Zero config fields take defaults.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSelector(cfg Config, items ItemLookup, vectors Vectors, signals Signals, logger zerolog.Logger) *Selector {
	def := DefaultConfig()
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = def.MaxItems
	}
	if cfg.MinPerType == nil {
		cfg.MinPerType = def.MinPerType
	}
	if cfg.ILDLow == 0 && cfg.ILDHigh == 0 {
		cfg.ILDLow, cfg.ILDHigh = def.ILDLow, def.ILDHigh
	}
	if cfg.Weights == (RelevanceWeights{}) {
		cfg.Weights = def.Weights
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Selector{
		cfg:     cfg,
		items:   items,
		vectors: vectors,
		hero:    NewHeroScorer(cfg.ReferenceYear, signals.Volume),
		mmr:     NewMMR(cfg.Lambda),
		global:  signals.Global,
		logger:  logger.With().Str("component", "selector").Logger(),
	}
}

// Config returns the effective configuration.
func (s *Selector) Config() Config {
	return s.cfg
}

// Select builds the carousel for one cluster. Members missing from the
// catalog are skipped; duplicates count once.
func (s *Selector) Select(ctx context.Context, c Cluster) Carousel {
	out := Carousel{ClusterID: c.ID, Label: c.Label, Size: len(c.Members)}

	members := s.resolve(c.Members)
	if len(members) == 0 {
		return out
	}

	vecList := make([][]float64, len(members))
	vecs := make(map[string][]float64, len(members))
	for i, it := range members {
		if s.vectors == nil {
			break
		}
		if v := s.vectors.Vector(it.ID); v != nil {
			vecList[i] = v
			vecs[it.ID] = v
		}
	}

	rel := Relevance(members, vecList, s.cfg.Weights)
	blendGlobal(rel, s.global, s.cfg.GlobalScoreWeight)

	heroIdx, heroScore := s.hero.pickHero(members)
	hero := members[heroIdx]
	rest := make([]*catalog.Item, 0, len(members)-1)
	for i, it := range members {
		if i != heroIdx {
			rest = append(rest, it)
		}
	}

	slots := s.cfg.MaxItems - 1
	covered := typeCoverage(rest, rel, s.cfg.MinPerType, slots)

	placed := make(map[string]bool, len(covered)+1)
	placed[hero.ID] = true
	seeds := append([]string{hero.ID}, covered...)
	for _, id := range covered {
		placed[id] = true
	}
	var candidates []string
	for _, it := range rest {
		if !placed[it.ID] {
			candidates = append(candidates, it.ID)
		}
	}
	filled := s.mmr.Select(ctx, candidates, rel, vecs, seeds, slots-len(covered))

	ordered := make([]string, 0, 1+len(covered)+len(filled))
	ordered = append(ordered, seeds...)
	ordered = append(ordered, filled...)

	out.HeroID = hero.ID
	out.HeroScore = heroScore
	out.Items = ordered
	out.Types = typesOf(members, ordered)
	out.ILD = ILD(ordered, vecs)
	out.Flag = AuditILD(out.ILD, len(ordered), s.cfg.ILDLow, s.cfg.ILDHigh)
	out.TypeDivergence = TypeCalibration(members, ordered)
	return out
}

// SelectAll builds carousels for every cluster on a bounded worker pool.
// The result is ordered by cluster ID.
func (s *Selector) SelectAll(ctx context.Context, clusters []Cluster) ([]Carousel, error) {
	results := make([]Carousel, len(clusters))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := min(s.cfg.Workers, len(clusters))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.Select(ctx, clusters[i])
			}
		}()
	}

dispatch:
	for i := range clusters {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ClusterID < results[j].ClusterID
	})

	flagged := 0
	for i := range results {
		c := &results[i]
		metrics.CarouselILD.Observe(c.ILD)
		if c.Flag != FlagNone {
			flagged++
			metrics.CarouselFlags.WithLabelValues(c.Flag).Inc()
			s.logger.Debug().
				Int("cluster_id", c.ClusterID).
				Str("label", c.Label).
				Float64("ild", c.ILD).
				Str("flag", c.Flag).
				Msg("Carousel outside diversity band")
		}
	}
	s.logger.Info().
		Int("carousels", len(results)).
		Int("flagged", flagged).
		Float64("lambda", s.mmr.Lambda()).
		Msg("Carousel selection complete")

	return results, nil
}

// resolve looks up members, dropping unknown and duplicate IDs, sorted by ID.
func (s *Selector) resolve(ids []string) []*catalog.Item {
	seen := make(map[string]bool, len(ids))
	members := make([]*catalog.Item, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if it, ok := s.items.ByID(id); ok {
			members = append(members, it)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members
}

// typesOf returns the sorted set of content types among ids.
func typesOf(members []*catalog.Item, ids []string) []string {
	typeOf := make(map[string]string, len(members))
	for _, it := range members {
		typeOf[it.ID] = string(it.Type)
	}
	set := make(map[string]bool)
	for _, id := range ids {
		set[typeOf[id]] = true
	}
	types := make([]string, 0, len(set))
	for t := range set {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
