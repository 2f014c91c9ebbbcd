// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package engagement

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/resilience"
)

// Source loads the full engagement history for one ranking run.
type Source interface {
	// Name identifies the source in logs and breaker metrics.
	Name() string

	// Load returns every row. A missing table is treated as empty.
	Load(ctx context.Context) (*Rows, error)
}

// JSONSource reads exported tables from a directory, one <table>.json array
// per table.
type JSONSource struct {
	dir string
}

// NewJSONSource creates a source over dir.
func NewJSONSource(dir string) *JSONSource {
	return &JSONSource{dir: dir}
}

// Name implements Source.
func (s *JSONSource) Name() string {
	return "json:" + s.dir
}

// Load implements Source.
func (s *JSONSource) Load(ctx context.Context) (*Rows, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("events directory: %w", err)
	}
	if !info.IsDir() {
		return nil, resilience.Permanent(fmt.Errorf("events path %s is not a directory", s.dir))
	}

	rows := &Rows{}
	tables := []struct {
		name string
		dst  interface{}
	}{
		{TableClicks, &rows.Clicks},
		{TableImpressions, &rows.Impressions},
		{TableDwell, &rows.Dwell},
		{TableScroll, &rows.Scroll},
		{TableSearchClicks, &rows.SearchClicks},
		{TableSessions, &rows.Sessions},
		{TableFrustration, &rows.Frustration},
		{TableCoOccurrence, &rows.CoOccurrence},
	}
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := readTable(filepath.Join(s.dir, t.name+".json"), t.dst); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func readTable(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return resilience.Permanent(fmt.Errorf("decode %s: %w", filepath.Base(path), err))
	}
	return nil
}
