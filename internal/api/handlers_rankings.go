// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/curator/internal/artifact"
	"github.com/tomtom215/curator/internal/recommend"
)

// RankingsPage is the data of GET /api/v1/rankings.
type RankingsPage struct {
	Algorithm string                 `json:"algorithm"`
	Items     []recommend.ScoreEntry `json:"items"`
}

// RankingDetail is the data of GET /api/v1/rankings/{id}.
type RankingDetail struct {
	recommend.ScoreEntry
	ClusterID *int `json:"cluster_id,omitempty"`
}

// Rankings handles GET /api/v1/rankings.
func (s *Server) Rankings(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	q := r.URL.Query()
	req := RankingsRequest{
		Type:      strings.ToLower(strings.TrimSpace(q.Get("type"))),
		Limit:     getIntParam(r, "limit", defaultLimit),
		ColdStart: strings.ToLower(q.Get("cold_start")),
	}
	if !validateRequest(rw, &req) {
		return
	}

	snap := snapshotFrom(r.Context())
	items, total := filterRankings(snap.Rankings.Rankings, &req)

	meta := runMeta(snap)
	meta.Pagination = &PaginationMeta{
		Total:   total,
		Count:   len(items),
		Limit:   req.Limit,
		HasMore: total > len(items),
	}
	rw.SuccessWithMeta(RankingsPage{Algorithm: snap.Rankings.Algorithm, Items: items}, meta)
}

// filterRankings returns up to req.Limit matching entries in rank order
// and the total number of matches.
func filterRankings(entries []recommend.ScoreEntry, req *RankingsRequest) ([]recommend.ScoreEntry, int) {
	items := make([]recommend.ScoreEntry, 0, min(req.Limit, len(entries)))
	total := 0
	for i := range entries {
		e := &entries[i]
		if req.Type != "" && e.Type != req.Type {
			continue
		}
		if req.ColdStart != "" && e.ColdStart != (req.ColdStart == "true") {
			continue
		}
		total++
		if len(items) < req.Limit {
			items = append(items, *e)
		}
	}
	return items, total
}

// Ranking handles GET /api/v1/rankings/{id}.
func (s *Server) Ranking(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := ItemRequest{ID: chi.URLParam(r, "id")}
	if !validateRequest(rw, &req) {
		return
	}

	snap := snapshotFrom(r.Context())
	entry, ok := snap.Entry(req.ID)
	if !ok {
		rw.NotFound("Item not found: " + req.ID)
		return
	}

	detail := RankingDetail{ScoreEntry: entry}
	if id, ok := snap.ClusterOf(req.ID); ok {
		detail.ClusterID = &id
	}
	rw.SuccessWithMeta(detail, runMeta(snap))
}

// Trending handles GET /api/v1/trending. Without trending.json the list is
// derived from the rankings.
func (s *Server) Trending(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := LimitRequest{Limit: getIntParam(r, "limit", artifact.DefaultTrendingSize)}
	if !validateRequest(rw, &req) {
		return
	}

	snap := snapshotFrom(r.Context())
	var items []recommend.ScoreEntry
	if snap.Trending != nil {
		items = snap.Trending.Items
	} else {
		items, _ = filterRankings(snap.Rankings.Rankings, &RankingsRequest{Limit: req.Limit, ColdStart: "false"})
	}
	if len(items) > req.Limit {
		items = items[:req.Limit]
	}
	rw.SuccessWithMeta(items, runMeta(snap))
}
