// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package engagement turns pre-aggregated interaction rows into one
// non-negative engagement score per catalog item.
//
// Rows come from a Source: a directory of JSON table exports, or the same
// tables in SQLite or DuckDB (a database file, or a directory of parquet/csv
// files exposed as views). ResilientSource adds retries and a circuit
// breaker around any of them.
//
// Aggregate joins rows to items by ID, normalized name or page path. Rows
// that match nothing are dropped and counted per kind; they never fail a
// run. The score is
//
//	max(0, clicks*5 + impressions*1 + dwell_minutes*1 + viewable_seconds*0.1
//	       + scroll50*0.5 + scroll75*1 + scroll90*2 + search_clicks*3
//	       + deep_sessions*1.5 + co_views*0.1 + co_clicks*0.3
//	       - rage_clicks*2 - quick_bounces*1)
//
// with the weights configurable through Weights. Result.Cells builds the
// session x item matrix consumed by the collaborative filtering model.
package engagement
