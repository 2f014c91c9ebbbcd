// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package validation provides struct validation using go-playground/validator v10.
// It provides a thread-safe singleton validator instance with custom tags
// for catalog records and API query parameters.
//
// Custom tags:
//   - content_type: one of ContentTypes (case-insensitive)
//   - difficulty: beginner, intermediate, advanced or empty
//   - item_id: type-prefixed slug, e.g. paper-attention-is-all-you-need
//
// Example usage:
//
//	type RankingsQuery struct {
//	    Limit int    `validate:"min=1,max=1000"`
//	    Type  string `validate:"omitempty,content_type"`
//	}
//
//	if err := validation.ValidateStruct(&q); err != nil {
//	    apiErr := err.ToAPIError()
//	    writeError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message)
//	    return
//	}
package validation
