// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Model names used by the pipeline.
const (
	ModelALS   = "als"
	ModelRidge = "ridge"
)

const fileSuffix = ".gob.gz"

// ErrNoModel is returned when no version of a model has been saved.
var ErrNoModel = errors.New("no stored model")

// ModelMetadata describes a stored model version.
type ModelMetadata struct {
	Name    string `json:"name"`
	Version int    `json:"version"`

	// RunID is the pipeline run that trained the model.
	RunID string `json:"run_id"`

	TrainedAt time.Time `json:"trained_at"`
	SavedAt   time.Time `json:"saved_at"`

	// Sessions and Items describe the training data size.
	Sessions int `json:"sessions"`
	Items    int `json:"items"`

	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`

	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// Store keeps versioned model snapshots in a directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per model name
	versions map[string]int
}

// NewStore opens (creating if needed) a model store at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}
	all, err := s.scan()
	if err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}
	for name, vs := range all {
		s.versions[name] = vs[0]
	}
	return s, nil
}

// scan returns every stored version per model, newest first.
func (s *Store) scan() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseModelFilename(entry.Name())
		if !ok {
			continue
		}
		out[name] = append(out[name], version)
	}
	for _, vs := range out {
		sort.Sort(sort.Reverse(sort.IntSlice(vs)))
	}
	return out, nil
}

// parseModelFilename splits "als_v12.gob.gz" into ("als", 12).
func parseModelFilename(file string) (name string, version int, ok bool) {
	base, found := strings.CutSuffix(file, fileSuffix)
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version <= 0 {
		return "", 0, false
	}
	return base[:idx], version, true
}

// storedFile is the on-disk format for model files.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// NextVersion returns the version a new save of name should use.
func (s *Store) NextVersion(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[name] + 1
}

// Save writes data as version of name. The file appears atomically.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, version int, data any, meta ModelMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if version <= 0 {
		return fmt.Errorf("invalid model version %d", version)
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(data); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	hash := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	meta.Name = name
	meta.Version = version
	meta.Checksum = hex.EncodeToString(hash[:])
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.modelPath(name, version)
	tmp, err := os.CreateTemp(s.baseDir, ".model-*")
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() //nolint:errcheck // no-op after a successful rename

	if err := gob.NewEncoder(tmp).Encode(storedFile{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publish model file: %w", err)
	}

	if version > s.versions[name] {
		s.versions[name] = version
	}
	return nil
}

// Load decodes version of name into target. Version 0 loads the latest.
func (s *Store) Load(ctx context.Context, name string, version int, target any) (*ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		if version, ok = s.versions[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoModel, name)
		}
	}

	sf, err := readStoredFile(s.modelPath(name, version))
	if err != nil {
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	return &sf.Metadata, nil
}

func readStoredFile(path string) (*storedFile, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from the store directory and model name
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	return &sf, nil
}

// LatestVersion returns the newest stored version of name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[name]
	return v, ok
}

// ListModels returns metadata for the latest version of every model,
// ordered by name. Unreadable files are skipped.
func (s *Store) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.versions))
	for name := range s.versions {
		names = append(names, name)
	}
	sort.Strings(names)

	models := make([]ModelMetadata, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sf, err := readStoredFile(s.modelPath(name, s.versions[name]))
		if err != nil {
			continue
		}
		models = append(models, sf.Metadata)
	}
	return models, nil
}

// Delete removes one version of name.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.modelPath(name, version)); err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	if s.versions[name] != version {
		return nil
	}

	all, err := s.scan()
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}
	if vs := all[name]; len(vs) > 0 {
		s.versions[name] = vs[0]
	} else {
		delete(s.versions, name)
	}
	return nil
}

// Prune keeps the newest keepVersions versions of name and removes the rest.
func (s *Store) Prune(ctx context.Context, name string, keepVersions int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}
	all, err := s.scan()
	if err != nil {
		return 0, fmt.Errorf("read directory: %w", err)
	}
	removed := 0
	for _, v := range all[name][min(keepVersions, len(all[name])):] {
		if err := os.Remove(s.modelPath(name, v)); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (s *Store) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, fileSuffix))
}

// ALSModelState is the serializable state of a trained ALS model.
type ALSModelState struct {
	Sessions []string
	Items    []string

	// SessionFactors and ItemFactors are row-aligned with Sessions and Items.
	SessionFactors [][]float64
	ItemFactors    [][]float64

	Factors        int
	Iterations     int
	Regularization float64
	Alpha          float64
}

// RidgeModelState is the serializable state of the cold-start regressor.
type RidgeModelState struct {
	// Columns names each feature, aligned with Weights, Mean and Std.
	Columns   []string
	Weights   []float64
	Intercept float64
	Lambda    float64
	Dual      bool

	// Mean and Std are the standardization parameters of the training rows.
	Mean []float64
	Std  []float64
}

//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(ALSModelState{})
	gob.Register(RidgeModelState{})
	gob.Register(storedFile{})
}
