// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/curator/internal/artifact"
)

type snapshotKey struct{}

// requireSnapshot pins the current snapshot for the request, answers 503
// before the first load and handles conditional requests.
func (s *Server) requireSnapshot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := s.Snapshot()
		if snap == nil {
			NewResponseWriter(w, r).ServiceUnavailable(ErrNoSnapshot.Error())
			return
		}

		etag := "W/" + snap.ETag
		w.Header().Set("ETag", etag)
		if etagMatch(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		ctx := context.WithValue(r.Context(), snapshotKey{}, snap)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// snapshotFrom returns the snapshot pinned by requireSnapshot.
func snapshotFrom(ctx context.Context) *artifact.Snapshot {
	snap, _ := ctx.Value(snapshotKey{}).(*artifact.Snapshot) //nolint:errcheck // nil when not pinned
	return snap
}

// etagMatch implements the weak comparison of If-None-Match.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}

// runMeta returns the response metadata identifying the snapshot's run.
func runMeta(snap *artifact.Snapshot) *APIMeta {
	updated := snap.Rankings.Updated
	return &APIMeta{
		RunID:   snap.Rankings.RunID,
		Updated: &updated,
	}
}
