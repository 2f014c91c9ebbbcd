// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/curator/internal/validation"
)

// Default and maximum page sizes of list endpoints.
const (
	defaultLimit = 100
	maxLimit     = 1000
)

// RankingsRequest represents the validated query parameters of
// GET /api/v1/rankings.
//
// Fields:
//   - Type: Optional content type filter (paper, package, dataset, ...)
//   - Limit: Maximum entries to return (1-1000, default 100)
//   - ColdStart: Optional filter, "true" for cold-start items only and
//     "false" for observed items only
type RankingsRequest struct {
	Type      string `validate:"omitempty,content_type"`
	Limit     int    `validate:"min=1,max=1000"`
	ColdStart string `validate:"omitempty,oneof=true false"`
}

// ItemRequest represents the {id} path parameter of item endpoints.
type ItemRequest struct {
	ID string `validate:"required,item_id"`
}

// LimitRequest represents the limit query parameter of GET /api/v1/trending.
type LimitRequest struct {
	Limit int `validate:"min=1,max=1000"`
}

// validateRequest validates v and writes a 400 response on failure.
func validateRequest(rw *ResponseWriter, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	rw.ValidationError(apiErr.Code, apiErr.Message, apiErr.Details)
	return false
}

// getIntParam extracts an integer query parameter with a default value.
// Unparseable values become -1 so that validation rejects them.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}
	return n
}
