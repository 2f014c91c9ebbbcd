// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/recommend"
)

// DefaultTrendingSize is the trending list length when none is configured.
const DefaultTrendingSize = 12

// Writer writes the artifacts of a run into one directory. Each file is
// replaced atomically, so readers see either the previous or the new
// version, never a partial file.
type Writer struct {
	dir          string
	trendingSize int
	logger       zerolog.Logger
}

// NewWriter creates a writer for dir.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWriter(dir string, trendingSize int, logger zerolog.Logger) *Writer {
	if trendingSize <= 0 {
		trendingSize = DefaultTrendingSize
	}
	return &Writer{
		dir:          dir,
		trendingSize: trendingSize,
		logger:       logger.With().Str("component", "artifact").Logger(),
	}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

type document struct {
	name string
	v    any
}

// Write implements recommend.ArtifactWriter. carousels.json is left
// untouched when the run produced no clusters.
func (w *Writer) Write(ctx context.Context, res *recommend.RunResult) ([]string, error) {
	if res == nil || res.Ranking == nil {
		return nil, errors.New("run has no ranking")
	}
	if err := os.MkdirAll(w.dir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for artifact output
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	docs := []document{
		{RankingsFile, NewRankings(res)},
		{TrendingFile, NewTrending(res, w.trendingSize)},
	}
	if len(res.Clusters) > 0 {
		docs = append(docs, document{CarouselsFile, NewCarousels(res)})
	} else {
		w.logger.Warn().Msg("No clusters in this run, keeping the previous carousels")
	}

	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		path := filepath.Join(w.dir, d.name)
		if err := WriteJSON(path, d.v); err != nil {
			return paths, fmt.Errorf("write %s: %w", d.name, err)
		}
		paths = append(paths, path)
	}

	w.logger.Info().Str("dir", w.dir).Strs("files", paths).Msg("Artifacts written")
	return paths, nil
}

// WriteJSON encodes v as indented JSON and atomically replaces path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // artifacts are public read-only data
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
