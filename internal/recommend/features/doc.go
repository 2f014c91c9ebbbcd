// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package features turns catalog items into fixed-width numeric vectors for
// the cold-start regression.
//
// A row is laid out as:
//
//	[one-hot type | category | difficulty | top domain tags | top URL hosts]
//	[tag_count, topic_tag_count, audience_count, log_description_len,
//	 log_citations, log_stars, has_url, age_years]
//	[dense text embedding]
//
// The categorical vocabulary is fitted on the whole catalog once per run,
// so the width is the same for every item in that run. Values unseen by the
// vocabulary encode as all zeros.
package features
