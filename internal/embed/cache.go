// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package embed

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Key prefix for BadgerDB storage
const vectorKeyPrefix = "vec:"

// Cache stores fetched vectors keyed by CacheKey.
type Cache interface {
	Get(key string) ([]float64, bool, error)
	Put(key string, vec []float64) error
}

// BadgerCache is a durable Cache backed by BadgerDB. Vectors are stored as
// little-endian float32.
type BadgerCache struct {
	db *badger.DB
}

// OpenBadgerCache opens (or creates) a cache in dir. An empty dir opens an
// in-memory cache.
func OpenBadgerCache(dir string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger embedding cache: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

// Get implements Cache.
func (c *BadgerCache) Get(key string) ([]float64, bool, error) {
	var vec []float64
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(vectorKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 0 {
				return nil
			}
			decoded, err := DecodeFloat32(val, len(val)/4)
			if err != nil {
				return err
			}
			vec = decoded[0]
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached vector: %w", err)
	}
	return vec, vec != nil, nil
}

// Put implements Cache.
func (c *BadgerCache) Put(key string, vec []float64) error {
	data := EncodeFloat32([][]float64{vec})
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(vectorKeyPrefix+key), data)
	})
}

// Close closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
