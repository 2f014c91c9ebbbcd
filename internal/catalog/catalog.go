// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package catalog

import (
	"errors"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// ErrEmptyCatalog is returned when no valid items could be loaded. It is the
// only condition that aborts a ranking run.
var ErrEmptyCatalog = errors.New("catalog: no items")

// Catalog is an immutable, ID-sorted set of items with lookup indexes.
type Catalog struct {
	items  []Item
	byID   map[string]int
	byName map[string]int
	byPath map[string]int
}

// New builds a Catalog from items. Items are deduplicated by normalized
// name (first occurrence wins), IDs are made unique with a numeric suffix,
// and the result is sorted by ID.
func New(items []Item) (*Catalog, error) {
	seenName := make(map[string]struct{}, len(items))
	seenID := make(map[string]int, len(items))
	kept := make([]Item, 0, len(items))

	for _, it := range items {
		if it.NormalizedName == "" {
			it.NormalizedName = NormalizeName(it.Name)
		}
		if it.NormalizedName == "" {
			continue
		}
		if _, dup := seenName[it.NormalizedName]; dup {
			continue
		}
		seenName[it.NormalizedName] = struct{}{}

		if it.ID == "" {
			it.ID = MakeID(it.Type, it.Name)
		}
		if n, dup := seenID[it.ID]; dup {
			seenID[it.ID] = n + 1
			it.ID = it.ID + "-" + strconv.Itoa(n+1)
		} else {
			seenID[it.ID] = 0
		}
		if it.Extension == nil {
			it.Extension = GenericExt{}
		}
		kept = append(kept, it)
	}

	if len(kept) == 0 {
		return nil, ErrEmptyCatalog
	}

	slices.SortFunc(kept, func(a, b Item) int { return strings.Compare(a.ID, b.ID) })

	c := &Catalog{
		items:  kept,
		byID:   make(map[string]int, len(kept)),
		byName: make(map[string]int, len(kept)),
		byPath: make(map[string]int, len(kept)),
	}
	for i := range kept {
		it := &kept[i]
		c.byID[it.ID] = i
		c.byName[it.NormalizedName] = i
		c.byPath[it.PagePath()] = i
		if p := urlPath(it.URL); p != "" {
			if _, taken := c.byPath[p]; !taken {
				c.byPath[p] = i
			}
		}
	}
	return c, nil
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns a copy of the ID-sorted items.
func (c *Catalog) Items() []Item {
	return slices.Clone(c.items)
}

// At returns the item at position i of the ID-sorted order.
func (c *Catalog) At(i int) *Item {
	return &c.items[i]
}

// Index returns the position of id in the ID-sorted order.
func (c *Catalog) Index(id string) (int, bool) {
	i, ok := c.byID[id]
	return i, ok
}

// ByID looks up an item by ID.
func (c *Catalog) ByID(id string) (*Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.items[i], true
}

// ByName looks up an item by name using NormalizeName.
func (c *Catalog) ByName(name string) (*Item, bool) {
	i, ok := c.byName[NormalizeName(name)]
	if !ok {
		return nil, false
	}
	return &c.items[i], true
}

// ByURLPath looks up an item by page path or by the path of its URL.
func (c *Catalog) ByURLPath(path string) (*Item, bool) {
	p := strings.TrimRight(strings.TrimSpace(path), "/")
	if i, ok := c.byPath[p]; ok {
		return &c.items[i], true
	}
	if u, err := url.Parse(p); err == nil && u.Path != p {
		if i, ok := c.byPath[strings.TrimRight(u.Path, "/")]; ok {
			return &c.items[i], true
		}
	}
	return nil, false
}

// Resolve maps an engagement key to an item. The key may be an item ID,
// an item name or a page path.
func (c *Catalog) Resolve(key string) (*Item, bool) {
	if it, ok := c.ByID(key); ok {
		return it, true
	}
	if it, ok := c.ByName(key); ok {
		return it, true
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "://") {
		return c.ByURLPath(key)
	}
	return nil, false
}

// TypeCounts returns the number of items per content type.
func (c *Catalog) TypeCounts() map[string]int {
	out := make(map[string]int)
	for i := range c.items {
		out[string(c.items[i].Type)]++
	}
	return out
}

// MaxYear returns the most recent publication year, or 0 when none is known.
func (c *Catalog) MaxYear() int {
	maxYear := 0
	for i := range c.items {
		if c.items[i].Year > maxYear {
			maxYear = c.items[i].Year
		}
	}
	return maxYear
}

func urlPath(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	p := strings.TrimRight(u.Path, "/")
	if p == "" || u.Host != "" {
		// External links carry no site path.
		return ""
	}
	return p
}
