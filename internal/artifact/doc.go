// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package artifact writes and reads the JSON outputs of a ranking run.
//
// A run produces three files in the output directory:
//
//   - rankings.json: every catalog item with score, rank, cold-start flag
//     and raw signals, plus the scoring provenance and evaluation metrics
//   - trending.json: the top items with observed engagement
//   - carousels.json: consolidated clusters with their hero, ordered
//     carousel items, type coverage and ILD score
//
// Files are replaced with a rename, so a failed run leaves the previous
// artifacts readable. Snapshot loads a directory for the HTTP API.
package artifact
