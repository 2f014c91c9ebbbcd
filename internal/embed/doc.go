// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package embed holds the precomputed item embeddings used for content
// features, cluster centroids and carousel diversity.
//
// Vectors are produced outside the pipeline and treated as opaque. Load reads
// any of the generator's outputs:
//
//   - search-metadata.json + search-embeddings.bin (little-endian float32,
//     row i belongs to items[i])
//   - search-embeddings.json ({model, dimensions, items[{id, embedding}]})
//   - embeddings.json ({"item-id": [..]})
//
// When enabled, Fill asks an OpenAI-compatible endpoint for items that have
// no vector yet. Results are cached in BadgerDB under the SHA-256 of the
// model name and embedded text. Items that still lack a vector use the zero
// vector, whose cosine similarity with anything is 0.
package embed
