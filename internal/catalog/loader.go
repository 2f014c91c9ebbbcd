// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/validation"
)

// LoadStats summarizes a catalog load.
type LoadStats struct {
	Files      int            `json:"files"`
	Records    int            `json:"records"`
	Invalid    int            `json:"invalid"`
	Duplicates int            `json:"duplicates"`
	ByType     map[string]int `json:"by_type"`
}

// Load reads every *.json array in dir. Files are processed in name order
// and the content type is inferred from the file stem, falling back to the
// record's own "type" field. Invalid records are skipped with a warning.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Load(dir string, logger zerolog.Logger) (*Catalog, LoadStats, error) {
	stats := LoadStats{ByType: make(map[string]int)}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, stats, fmt.Errorf("list catalog files: %w", err)
	}
	sort.Strings(paths)

	var items []Item
	for _, path := range paths {
		fileItems, invalid, err := loadFile(path, logger)
		if err != nil {
			logger.Warn().Err(err).Str("file", filepath.Base(path)).Msg("Skipping unreadable catalog file")
			continue
		}
		stats.Files++
		stats.Records += len(fileItems) + invalid
		stats.Invalid += invalid
		items = append(items, fileItems...)
	}

	cat, err := New(items)
	if err != nil {
		return nil, stats, fmt.Errorf("load catalog from %s: %w", dir, err)
	}
	stats.Duplicates = len(items) - cat.Len()
	stats.ByType = cat.TypeCounts()

	logger.Info().
		Int("files", stats.Files).
		Int("items", cat.Len()).
		Int("invalid", stats.Invalid).
		Int("duplicates", stats.Duplicates).
		Msg("Catalog loaded")

	return cat, stats, nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func loadFile(path string, logger zerolog.Logger) (items []Item, invalid int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	var records []rawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	fileType, fileTyped := TypeFromFileStem(stem)

	items = make([]Item, 0, len(records))
	for i := range records {
		rec := &records[i]
		t := fileType
		if !fileTyped {
			var ok bool
			if t, ok = ParseContentType(rec.Type); !ok {
				invalid++
				continue
			}
		}

		item := rec.toItem(t)
		if item.Name != "" {
			item.ID = MakeID(t, item.Name)
		}
		if verr := validation.ValidateStruct(&item); verr != nil {
			invalid++
			logger.Debug().
				Str("file", filepath.Base(path)).
				Str("name", item.Name).
				Str("reason", verr.Error()).
				Msg("Rejected catalog record")
			continue
		}
		items = append(items, item)
	}

	if invalid > 0 {
		logger.Warn().
			Str("file", filepath.Base(path)).
			Int("invalid", invalid).
			Msg("Catalog records failed validation")
	}
	return items, invalid, nil
}
