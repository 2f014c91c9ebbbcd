// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package catalog loads and indexes the content items being ranked.
//
// Each catalog file is a JSON array named after its content type
// (papers_flat.json, packages.json, talks.json, ...). Records are converted
// into Item values with a type-specific Extension and validated once at
// ingestion; downstream stages only ever see validated items.
//
// Identity is the normalized name: duplicates across files keep the first
// occurrence in file-name order. IDs have the form "type-slug(name)".
package catalog
