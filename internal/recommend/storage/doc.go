// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package storage persists trained models between pipeline runs.
//
// Each run saves the ALS factors and the cold-start regressor as a new
// version. The files are not read back by the pipeline, which retrains from
// scratch every run; they exist for inspection and for comparing runs.
//
// # Storage Format
//
//	filename: {model}_v{version}.gob.gz
//
//	structure:
//	  - Metadata (ModelMetadata, including a SHA-256 of the payload)
//	  - CompressedData (gzip-compressed gob-encoded model state)
//
// Files are written to a temporary name and renamed into place, so readers
// never observe a partial model. Load verifies the checksum before decoding.
//
// # Usage Example
//
//	store, err := storage.NewStore("/data/models")
//	if err != nil {
//	    return err
//	}
//	version := store.NextVersion(storage.ModelALS)
//	err = store.Save(ctx, storage.ModelALS, version, state, storage.ModelMetadata{RunID: runID})
//	...
//	removed, err := store.Prune(ctx, storage.ModelALS, 5)
//
// # Thread Safety
//
// A Store is safe for concurrent use within one process.
package storage
