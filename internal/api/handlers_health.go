// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/curator/internal/recommend"
)

// Health states.
const (
	StatusHealthy     = "healthy"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
)

// HealthStatus is the data of GET /healthz.
type HealthStatus struct {
	Status    string               `json:"status"`
	Uptime    float64              `json:"uptime_seconds"`
	Artifacts ArtifactStatus       `json:"artifacts"`
	Engine    *recommend.RunStatus `json:"engine,omitempty"`
}

// ArtifactStatus describes the loaded snapshot.
type ArtifactStatus struct {
	Loaded    bool       `json:"loaded"`
	RunID     string     `json:"run_id,omitempty"`
	Algorithm string     `json:"algorithm,omitempty"`
	Items     int        `json:"items"`
	Clusters  int        `json:"clusters"`
	Updated   *time.Time `json:"updated,omitempty"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`
	ETag      string     `json:"etag,omitempty"`
}

// Health handles GET /healthz. It answers 503 until artifacts are loaded and
// reports degraded when the last pipeline run failed.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	health := HealthStatus{
		Status: StatusHealthy,
		Uptime: time.Since(s.startTime).Seconds(),
	}

	if snap := s.Snapshot(); snap != nil {
		updated, loaded := snap.Rankings.Updated, snap.LoadedAt
		health.Artifacts = ArtifactStatus{
			Loaded:    true,
			RunID:     snap.Rankings.RunID,
			Algorithm: snap.Rankings.Algorithm,
			Items:     len(snap.Rankings.Rankings),
			Updated:   &updated,
			LoadedAt:  &loaded,
			ETag:      snap.ETag,
		}
		if snap.Carousels != nil {
			health.Artifacts.Clusters = len(snap.Carousels.Clusters)
		}
	}

	if s.status != nil {
		st := s.status()
		health.Engine = &st
		if st.LastError != "" {
			health.Status = StatusDegraded
		}
	}

	if !health.Artifacts.Loaded {
		health.Status = StatusUnavailable
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, ErrNoSnapshot.Error(), health)
		return
	}
	rw.Success(health)
}
