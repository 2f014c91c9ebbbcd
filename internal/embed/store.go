// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package embed

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
)

// File names written by the embedding generator.
const (
	MetadataFile = "search-metadata.json"
	BinaryFile   = "search-embeddings.bin"
	LegacyFile   = "search-embeddings.json"
	MapFile      = "embeddings.json"
)

var (
	// ErrDimensionMismatch is returned when a vector does not match the
	// store's dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrNoEmbeddings is returned when a directory holds no known format.
	ErrNoEmbeddings = errors.New("no embeddings found")
)

// Store maps item IDs to fixed-dimension vectors. It is filled once per run
// and read concurrently afterwards.
type Store struct {
	dim   int
	model string
	vecs  map[string][]float64
}

// NewStore creates an empty store. A zero dim is fixed by the first Put.
func NewStore(dim int) *Store {
	return &Store{dim: dim, vecs: make(map[string][]float64)}
}

// Dim returns the vector dimension, 0 while the store is empty and unsized.
func (s *Store) Dim() int {
	return s.dim
}

// Model returns the name of the model that produced the vectors, if known.
func (s *Store) Model() string {
	return s.model
}

// Len returns the number of vectors.
func (s *Store) Len() int {
	return len(s.vecs)
}

// Has reports whether id has a vector.
func (s *Store) Has(id string) bool {
	_, ok := s.vecs[id]
	return ok
}

// Get returns the vector of id.
func (s *Store) Get(id string) ([]float64, bool) {
	v, ok := s.vecs[id]
	return v, ok
}

// Vector returns the vector of id or the zero vector when it has none.
func (s *Store) Vector(id string) []float64 {
	if v, ok := s.vecs[id]; ok {
		return v
	}
	return make([]float64, s.dim)
}

// Put stores vec under id.
func (s *Store) Put(id string, vec []float64) error {
	if len(vec) == 0 {
		return fmt.Errorf("%w: empty vector for %s", ErrDimensionMismatch, id)
	}
	if s.dim == 0 {
		s.dim = len(vec)
	}
	if len(vec) != s.dim {
		return fmt.Errorf("%w: %s has %d, want %d", ErrDimensionMismatch, id, len(vec), s.dim)
	}
	s.vecs[id] = vec
	return nil
}

// IDs returns the stored IDs in sorted order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.vecs))
	for id := range s.vecs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// metadataDoc is search-metadata.json. Only the fields needed to align the
// binary vectors are decoded.
type metadataDoc struct {
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	Count      int    `json:"count"`
	Items      []struct {
		ID string `json:"id"`
	} `json:"items"`
}

// legacyDoc is search-embeddings.json.
type legacyDoc struct {
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	Items      []struct {
		ID        string    `json:"id"`
		Embedding []float64 `json:"embedding"`
	} `json:"items"`
}

// Load reads the embeddings in dir, preferring the metadata + binary pair,
// then the legacy JSON document, then a plain {"id": [..]} map.
func Load(dir string) (*Store, error) {
	switch {
	case exists(filepath.Join(dir, MetadataFile)) && exists(filepath.Join(dir, BinaryFile)):
		return loadBinary(dir)
	case exists(filepath.Join(dir, LegacyFile)):
		return loadLegacy(filepath.Join(dir, LegacyFile))
	case exists(filepath.Join(dir, MapFile)):
		return loadMap(filepath.Join(dir, MapFile))
	}
	return nil, fmt.Errorf("%w in %s", ErrNoEmbeddings, dir)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func loadBinary(dir string) (*Store, error) {
	raw, err := os.ReadFile(filepath.Join(dir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta metadataDoc
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if meta.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: metadata declares %d dimensions", ErrDimensionMismatch, meta.Dimensions)
	}
	if meta.Count != 0 && meta.Count != len(meta.Items) {
		return nil, fmt.Errorf("metadata count %d does not match %d items", meta.Count, len(meta.Items))
	}

	data, err := os.ReadFile(filepath.Join(dir, BinaryFile))
	if err != nil {
		return nil, fmt.Errorf("read vectors: %w", err)
	}
	vecs, err := DecodeFloat32(data, meta.Dimensions)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(meta.Items) {
		return nil, fmt.Errorf("%w: %d vectors for %d items", ErrDimensionMismatch, len(vecs), len(meta.Items))
	}

	s := NewStore(meta.Dimensions)
	s.model = meta.Model
	for i, it := range meta.Items {
		if err := s.Put(it.ID, vecs[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func loadLegacy(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read embeddings: %w", err)
	}
	var doc legacyDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode embeddings: %w", err)
	}

	s := NewStore(doc.Dimensions)
	s.model = doc.Model
	for _, it := range doc.Items {
		if err := s.Put(it.ID, it.Embedding); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func loadMap(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read embeddings: %w", err)
	}
	var m map[string][]float64
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode embeddings: %w", err)
	}

	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	s := NewStore(0)
	for _, id := range ids {
		if err := s.Put(id, m[id]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DecodeFloat32 splits little-endian float32 data into vectors of dim.
func DecodeFloat32(data []byte, dim int) ([][]float64, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", ErrDimensionMismatch, dim)
	}
	stride := dim * 4
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrDimensionMismatch, len(data), stride)
	}
	n := len(data) / stride
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		vec := make([]float64, dim)
		base := i * stride
		for j := 0; j < dim; j++ {
			bits := binary.LittleEndian.Uint32(data[base+j*4:])
			vec[j] = float64(math.Float32frombits(bits))
		}
		out[i] = vec
	}
	return out, nil
}

// EncodeFloat32 is the inverse of DecodeFloat32.
func EncodeFloat32(vecs [][]float64) []byte {
	size := 0
	for _, v := range vecs {
		size += len(v) * 4
	}
	out := make([]byte, 0, size)
	for _, v := range vecs {
		for _, x := range v {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(float32(x)))
		}
	}
	return out
}

// KnownVectors is a view of a Store whose Vector returns nil for items
// without a vector.
type KnownVectors struct {
	s *Store
}

// Known returns the nil-for-missing view of the store.
func (s *Store) Known() KnownVectors {
	return KnownVectors{s: s}
}

// Vector returns the vector of id, or nil.
func (k KnownVectors) Vector(id string) []float64 {
	if k.s == nil {
		return nil
	}
	v, _ := k.s.Get(id)
	return v
}
