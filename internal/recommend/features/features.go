// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package features

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/tomtom215/curator/internal/catalog"
)

// ErrWidthMismatch is returned when an item's vector does not have the
// run's fixed width.
var ErrWidthMismatch = errors.New("feature width mismatch")

// DefaultYear is assumed for items without a publication year.
const DefaultYear = 2020

// VectorSource supplies the dense text embedding of an item. Vector must
// return a slice of length Dim for every ID, zeros when unknown.
type VectorSource interface {
	Dim() int
	Vector(id string) []float64
}

// Config contains configuration for the feature builder.
type Config struct {
	// TopDomainTags is the number of most frequent domain tags one-hot encoded.
	TopDomainTags int

	// TopHosts is the number of most frequent URL hosts one-hot encoded.
	TopHosts int

	// ReferenceYear anchors the recency scalar. 0 uses the catalog's latest year.
	ReferenceYear int

	// NumWorkers is the number of parallel row builders.
	// If <= 0, defaults to runtime.NumCPU().
	NumWorkers int
}

// DefaultConfig returns the default builder configuration.
func DefaultConfig() Config {
	return Config{
		TopDomainTags: 20,
		TopHosts:      30,
	}
}

// scalarColumns name the numeric features in row order.
var scalarColumns = []string{
	"tag_count",
	"topic_tag_count",
	"audience_count",
	"log_description_len",
	"log_citations",
	"log_stars",
	"has_url",
	"age_years",
}

// Vocabulary fixes the categorical columns for one run. It is fitted on the
// whole catalog so every item is encoded against the same columns.
type Vocabulary struct {
	Types        []string
	Categories   []string
	Difficulties []string
	DomainTags   []string
	Hosts        []string

	refYear int
	offsets map[string]map[string]int
	width   int
}

// FitVocabulary collects the categorical values present in items.
func FitVocabulary(items []catalog.Item, cfg Config) *Vocabulary {
	if cfg.TopDomainTags <= 0 {
		cfg.TopDomainTags = DefaultConfig().TopDomainTags
	}
	if cfg.TopHosts <= 0 {
		cfg.TopHosts = DefaultConfig().TopHosts
	}

	types := make(map[string]int)
	categories := make(map[string]int)
	difficulties := make(map[string]int)
	domains := make(map[string]int)
	hosts := make(map[string]int)
	refYear := cfg.ReferenceYear

	for i := range items {
		it := &items[i]
		types[string(it.Type)]++
		if c := strings.TrimSpace(it.Category); c != "" {
			categories[c]++
		}
		if it.Difficulty != "" {
			difficulties[it.Difficulty]++
		}
		for _, tag := range it.DomainTags {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				domains[tag]++
			}
		}
		if h := it.Host(); h != "" {
			hosts[h]++
		}
		if cfg.ReferenceYear == 0 && it.Year > refYear {
			refYear = it.Year
		}
	}
	if refYear == 0 {
		refYear = DefaultYear
	}

	v := &Vocabulary{
		Types:        topKeys(types, 0),
		Categories:   topKeys(categories, 0),
		Difficulties: topKeys(difficulties, 0),
		DomainTags:   topKeys(domains, cfg.TopDomainTags),
		Hosts:        topKeys(hosts, cfg.TopHosts),
		refYear:      refYear,
	}
	v.index()
	return v
}

// topKeys returns the n most frequent keys (all when n <= 0), most frequent
// first with ties broken by key, then re-sorted by key for stable columns.
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	sort.Strings(keys)
	return keys
}

func (v *Vocabulary) index() {
	v.offsets = make(map[string]map[string]int, 5)
	offset := 0
	for _, group := range []struct {
		name   string
		values []string
	}{
		{"type", v.Types},
		{"category", v.Categories},
		{"difficulty", v.Difficulties},
		{"domain", v.DomainTags},
		{"host", v.Hosts},
	} {
		m := make(map[string]int, len(group.values))
		for _, val := range group.values {
			m[val] = offset
			offset++
		}
		v.offsets[group.name] = m
	}
	v.width = offset
}

// CategoricalWidth is the number of one-hot columns.
func (v *Vocabulary) CategoricalWidth() int {
	return v.width
}

// Columns returns the column names of the categorical and scalar features.
func (v *Vocabulary) Columns() []string {
	cols := make([]string, 0, v.width+len(scalarColumns))
	for _, g := range []struct {
		prefix string
		values []string
	}{
		{"type=", v.Types},
		{"category=", v.Categories},
		{"difficulty=", v.Difficulties},
		{"domain=", v.DomainTags},
		{"host=", v.Hosts},
	} {
		for _, val := range g.values {
			cols = append(cols, g.prefix+val)
		}
	}
	return append(cols, scalarColumns...)
}

// encode writes the categorical and scalar features of it into row.
func (v *Vocabulary) encode(it *catalog.Item, row []float64) {
	set := func(group, value string) {
		if off, ok := v.offsets[group][value]; ok {
			row[off] = 1
		}
	}
	set("type", string(it.Type))
	set("category", strings.TrimSpace(it.Category))
	set("difficulty", it.Difficulty)
	for _, tag := range it.DomainTags {
		set("domain", strings.ToLower(strings.TrimSpace(tag)))
	}
	set("host", it.Host())

	year := it.Year
	if year <= 0 {
		year = DefaultYear
	}
	hasURL := 0.0
	if it.URL != "" {
		hasURL = 1
	}

	s := row[v.width:]
	s[0] = float64(len(it.Tags))
	s[1] = float64(len(it.TopicTags))
	s[2] = float64(len(it.Audience))
	s[3] = math.Log1p(float64(len(it.Description)))
	s[4] = math.Log1p(float64(it.Citations()))
	s[5] = math.Log1p(float64(it.Stars()))
	s[6] = hasURL
	s[7] = math.Max(0, float64(v.refYear-year))
}

// Build encodes every item into one row of a Matrix. Rows are built
// concurrently in contiguous chunks; the result is identical to a
// sequential build.
func Build(ctx context.Context, items []catalog.Item, vecs VectorSource, cfg Config) (*Matrix, error) {
	vocab := FitVocabulary(items, cfg)

	dim := 0
	if vecs != nil {
		dim = vecs.Dim()
	}
	width := vocab.width + len(scalarColumns) + dim

	columns := vocab.Columns()
	for d := 0; d < dim; d++ {
		columns = append(columns, fmt.Sprintf("emb_%d", d))
	}

	m := &Matrix{
		IDs:     make([]string, len(items)),
		Columns: columns,
		Rows:    make([][]float64, len(items)),
		Vocab:   vocab,
	}
	for i := range items {
		m.IDs[i] = items[i].ID
	}

	workers := cfg.NumWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	chunkSize := (len(items) + workers - 1) / workers

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, len(items))
		if start >= end {
			break
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()

			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					errs[w] = ctx.Err()
					return
				}
				row := make([]float64, width)
				vocab.encode(&items[i], row)
				if dim > 0 {
					emb := vecs.Vector(items[i].ID)
					if len(emb) != dim {
						errs[w] = fmt.Errorf("%w: %s embedding has %d values, want %d",
							ErrWidthMismatch, items[i].ID, len(emb), dim)
						return
					}
					copy(row[width-dim:], emb)
				}
				m.Rows[i] = row
			}
		}(w, start, end)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	m.index()
	return m, nil
}
