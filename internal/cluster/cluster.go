// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package cluster

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/validation"
)

// ErrNoClusters is returned when a clusters file holds no clusters.
var ErrNoClusters = errors.New("no clusters")

// ItemLookup resolves catalog items by ID. *catalog.Catalog satisfies it.
type ItemLookup interface {
	ByID(id string) (*catalog.Item, bool)
}

// Vectors resolves item embeddings. A nil result means the item has none.
type Vectors interface {
	Vector(id string) []float64
}

// Group orders consolidated clusters: diverse technical topics first,
// careers last.
type Group int

const (
	GroupDiverseTechnical Group = iota
	GroupDiverseOther
	GroupHomogeneousTechnical
	GroupHomogeneousOther
	GroupCareer
)

// String returns the metrics label of the group.
func (g Group) String() string {
	switch g {
	case GroupDiverseTechnical:
		return "technical"
	case GroupDiverseOther:
		return "other"
	case GroupHomogeneousTechnical:
		return "homogeneous_technical"
	case GroupHomogeneousOther:
		return "homogeneous_other"
	case GroupCareer:
		return "career"
	default:
		return fmt.Sprintf("group(%d)", int(g))
	}
}

// Cluster is a topic cluster with its member item IDs in ID order.
type Cluster struct {
	ID            int
	Label         string
	TopTags       []string
	TopCategories []string
	Members       []string

	// Set by Consolidate.
	Career       bool
	Homogeneous  bool
	DominantType string
	Group        Group
}

// Size returns the member count.
func (c *Cluster) Size() int {
	return len(c.Members)
}

// fileCluster is one entry of the clusters file.
type fileCluster struct {
	ID            int      `json:"id"`
	Label         string   `json:"label"`
	ItemCount     int      `json:"item_count"`
	TopTags       []string `json:"top_tags"`
	TopCategories []string `json:"top_categories"`
}

type clustersFile struct {
	GeneratedAt   string         `json:"generated_at"`
	Clusters      []fileCluster  `json:"clusters"`
	ItemToCluster map[string]int `json:"item_to_cluster"`
}

// LoadStats reports what Load kept and skipped.
type LoadStats struct {
	Clusters int
	Items    int
	Orphans  int

	// Invalid counts assignments whose key is not a well-formed item ID.
	Invalid int
}

// Load reads a clusters file. Membership comes from item_to_cluster;
// items assigned to an unknown cluster ID are counted as orphans and keys
// that are not item IDs as invalid.
func Load(path string) ([]Cluster, LoadStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("read clusters: %w", err)
	}
	return Parse(data)
}

// Parse decodes clusters file content. See Load.
func Parse(data []byte) ([]Cluster, LoadStats, error) {
	var f clustersFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, LoadStats{}, fmt.Errorf("decode clusters: %w", err)
	}
	if len(f.Clusters) == 0 {
		return nil, LoadStats{}, ErrNoClusters
	}

	index := make(map[int]int, len(f.Clusters))
	clusters := make([]Cluster, 0, len(f.Clusters))
	for _, fc := range f.Clusters {
		if _, dup := index[fc.ID]; dup {
			return nil, LoadStats{}, fmt.Errorf("duplicate cluster id %d", fc.ID)
		}
		index[fc.ID] = len(clusters)
		clusters = append(clusters, Cluster{
			ID:            fc.ID,
			Label:         fc.Label,
			TopTags:       fc.TopTags,
			TopCategories: fc.TopCategories,
		})
	}

	stats := LoadStats{Clusters: len(clusters)}
	for itemID, cid := range f.ItemToCluster {
		i, ok := index[cid]
		if !ok {
			stats.Orphans++
			continue
		}
		if validation.ValidateVar(itemID, "item_id") != nil {
			stats.Invalid++
			continue
		}
		clusters[i].Members = append(clusters[i].Members, itemID)
		stats.Items++
	}
	for i := range clusters {
		sort.Strings(clusters[i].Members)
	}
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].ID < clusters[j].ID })
	return clusters, stats, nil
}

// Centroid returns the mean embedding of the members that have one, or nil.
func Centroid(members []string, vecs Vectors) []float64 {
	if vecs == nil {
		return nil
	}
	var centroid []float64
	n := 0
	for _, id := range members {
		v := vecs.Vector(id)
		if v == nil {
			continue
		}
		if centroid == nil {
			centroid = make([]float64, len(v))
		}
		if len(v) != len(centroid) {
			continue
		}
		for j, x := range v {
			centroid[j] += x
		}
		n++
	}
	for j := range centroid {
		centroid[j] /= float64(n)
	}
	return centroid
}

// ItemToCluster maps every member to its cluster ID.
func ItemToCluster(clusters []Cluster) map[string]int {
	m := make(map[string]int)
	for i := range clusters {
		for _, id := range clusters[i].Members {
			m[id] = clusters[i].ID
		}
	}
	return m
}
