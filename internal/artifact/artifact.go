// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package artifact

import (
	"math"
	"time"

	"github.com/tomtom215/curator/internal/cluster"
	"github.com/tomtom215/curator/internal/engagement"
	"github.com/tomtom215/curator/internal/recommend"
	"github.com/tomtom215/curator/internal/recommend/algorithms"
	"github.com/tomtom215/curator/internal/recommend/reranking"
)

// Artifact file names.
const (
	RankingsFile  = "rankings.json"
	CarouselsFile = "carousels.json"
	TrendingFile  = "trending.json"
)

// sampleItems is the number of member IDs listed per cluster.
const sampleItems = 10

// Rankings is the content of rankings.json.
type Rankings struct {
	Updated        time.Time               `json:"updated"`
	RunID          string                  `json:"run_id"`
	Algorithm      string                  `json:"algorithm"`
	TotalItems     int                     `json:"total_items"`
	ObservedItems  int                     `json:"observed_items"`
	ColdStartItems int                     `json:"cold_start_items"`
	Coverage       engagement.Coverage     `json:"coverage"`
	Scoring        recommend.Scoring       `json:"scoring"`
	Evaluation     algorithms.Evaluation   `json:"evaluation"`
	Dropped        map[engagement.Kind]int `json:"dropped"`
	Rankings       []recommend.ScoreEntry  `json:"rankings"`
}

// Trending is the content of trending.json: the top entries with
// observed engagement.
type Trending struct {
	Updated time.Time              `json:"updated"`
	Count   int                    `json:"count"`
	Items   []recommend.ScoreEntry `json:"items"`
}

// MMRConfig records the selection parameters of carousels.json.
type MMRConfig struct {
	Lambda             float64                    `json:"lambda"`
	MaxItemsPerCluster int                        `json:"max_items_per_cluster"`
	RelevanceWeights   reranking.RelevanceWeights `json:"relevance_weights"`
	MinPerType         map[string]int             `json:"min_per_type,omitempty"`
	GlobalScoreWeight  float64                    `json:"global_score_weight"`
}

// Cluster is one cluster of carousels.json with its carousel.
type Cluster struct {
	ID             int      `json:"id"`
	Label          string   `json:"label"`
	ItemCount      int      `json:"item_count"`
	TopTags        []string `json:"top_tags,omitempty"`
	TopCategories  []string `json:"top_categories,omitempty"`
	SampleItems    []string `json:"sample_items"`
	Group          string   `json:"group"`
	Career         bool     `json:"career"`
	Homogeneous    bool     `json:"homogeneous"`
	DominantType   string   `json:"dominant_type,omitempty"`
	HeroItem       string   `json:"hero_item"`
	HeroScore      float64  `json:"hero_score"`
	CarouselItems  []string `json:"carousel_items"`
	TypeCoverage   []string `json:"type_coverage"`
	ILDScore       float64  `json:"ild_score"`
	ILDFlag        string   `json:"ild_flag,omitempty"`
	TypeDivergence float64  `json:"type_divergence"`
}

// Carousels is the content of carousels.json.
type Carousels struct {
	GeneratedAt   time.Time      `json:"generated_at"`
	RunID         string         `json:"run_id"`
	MMRConfig     MMRConfig      `json:"mmr_config"`
	NumClusters   int            `json:"num_clusters"`
	NumItems      int            `json:"num_items"`
	Stats         cluster.Stats  `json:"consolidation"`
	Clusters      []Cluster      `json:"clusters"`
	ItemToCluster map[string]int `json:"item_to_cluster"`
}

// NewRankings builds rankings.json from a run. Scores are rounded to four
// decimals.
func NewRankings(res *recommend.RunResult) *Rankings {
	r := res.Ranking
	entries := r.Table.Entries()
	for i := range entries {
		entries[i].Score = round(entries[i].Score, 4)
		entries[i].Engagement = round(entries[i].Engagement, 4)
	}
	observed, cold := r.Table.Counts()

	dropped := make(map[engagement.Kind]int, len(r.Dropped))
	for k, n := range r.Dropped {
		dropped[k] = n
	}

	return &Rankings{
		Updated:        res.CompletedAt,
		RunID:          res.RunID,
		Algorithm:      r.Algorithm(),
		TotalItems:     len(entries),
		ObservedItems:  observed,
		ColdStartItems: cold,
		Coverage:       r.Coverage,
		Scoring:        r.Scoring,
		Evaluation:     r.Evaluation,
		Dropped:        dropped,
		Rankings:       entries,
	}
}

// NewTrending builds trending.json from a run.
func NewTrending(res *recommend.RunResult, n int) *Trending {
	items := res.Ranking.Table.Trending(n)
	for i := range items {
		items[i].Score = round(items[i].Score, 4)
		items[i].Engagement = round(items[i].Engagement, 4)
	}
	if items == nil {
		items = []recommend.ScoreEntry{}
	}
	return &Trending{
		Updated: res.CompletedAt,
		Count:   len(items),
		Items:   items,
	}
}

// NewCarousels builds carousels.json from a run. ILD scores are rounded to
// three decimals.
func NewCarousels(res *recommend.RunResult) *Carousels {
	byCluster := make(map[int]*reranking.Carousel, len(res.Carousels))
	for i := range res.Carousels {
		byCluster[res.Carousels[i].ClusterID] = &res.Carousels[i]
	}

	clusters := make([]Cluster, 0, len(res.Clusters))
	for i := range res.Clusters {
		cl := &res.Clusters[i]
		out := Cluster{
			ID:            cl.ID,
			Label:         cl.Label,
			ItemCount:     cl.Size(),
			TopTags:       cl.TopTags,
			TopCategories: cl.TopCategories,
			SampleItems:   head(cl.Members, sampleItems),
			Group:         cl.Group.String(),
			Career:        cl.Career,
			Homogeneous:   cl.Homogeneous,
			DominantType:  cl.DominantType,
			CarouselItems: []string{},
			TypeCoverage:  []string{},
		}
		if c, ok := byCluster[cl.ID]; ok {
			out.HeroItem = c.HeroID
			out.HeroScore = round(c.HeroScore, 4)
			out.CarouselItems = c.Items
			out.TypeCoverage = c.Types
			out.ILDScore = round(c.ILD, 3)
			out.ILDFlag = c.Flag
			out.TypeDivergence = round(c.TypeDivergence, 4)
		}
		clusters = append(clusters, out)
	}

	itemToCluster := cluster.ItemToCluster(res.Clusters)
	d := res.Diversity
	return &Carousels{
		GeneratedAt: res.CompletedAt,
		RunID:       res.RunID,
		MMRConfig: MMRConfig{
			Lambda:             d.Lambda,
			MaxItemsPerCluster: d.MaxItems,
			RelevanceWeights:   d.Weights,
			MinPerType:         copyCounts(d.MinPerType),
			GlobalScoreWeight:  d.GlobalScoreWeight,
		},
		NumClusters:   len(clusters),
		NumItems:      len(itemToCluster),
		Stats:         res.ClusterStats,
		Clusters:      clusters,
		ItemToCluster: itemToCluster,
	}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

func head(ids []string, n int) []string {
	if len(ids) <= n {
		return append([]string{}, ids...)
	}
	return append([]string{}, ids[:n]...)
}

func copyCounts(m map[string]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
