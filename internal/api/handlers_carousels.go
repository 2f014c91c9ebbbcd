// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/curator/internal/artifact"
	"github.com/tomtom215/curator/internal/recommend"
)

// CarouselsPage is the data of GET /api/v1/carousels.
type CarouselsPage struct {
	GeneratedAt time.Time          `json:"generated_at"`
	MMRConfig   artifact.MMRConfig `json:"mmr_config"`
	Clusters    []artifact.Cluster `json:"clusters"`
}

// CarouselDetail is the data of GET /api/v1/carousels/{id}: the cluster and
// its carousel items resolved to ranking entries, in carousel order.
type CarouselDetail struct {
	artifact.Cluster
	Items []recommend.ScoreEntry `json:"items"`
}

// Carousels handles GET /api/v1/carousels.
func (s *Server) Carousels(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := snapshotFrom(r.Context())
	if snap.Carousels == nil {
		rw.NotFound("No carousels have been generated")
		return
	}

	c := snap.Carousels
	rw.SuccessWithMeta(CarouselsPage{
		GeneratedAt: c.GeneratedAt,
		MMRConfig:   c.MMRConfig,
		Clusters:    c.Clusters,
	}, runMeta(snap))
}

// Carousel handles GET /api/v1/carousels/{id}.
func (s *Server) Carousel(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		rw.BadRequest("Cluster ID must be a non-negative integer")
		return
	}

	snap := snapshotFrom(r.Context())
	cl, ok := snap.Cluster(id)
	if !ok {
		rw.NotFound("Cluster not found: " + strconv.Itoa(id))
		return
	}

	detail := CarouselDetail{Cluster: cl, Items: make([]recommend.ScoreEntry, 0, len(cl.CarouselItems))}
	for _, itemID := range cl.CarouselItems {
		if e, ok := snap.Entry(itemID); ok {
			detail.Items = append(detail.Items, e)
		}
	}
	rw.SuccessWithMeta(detail, runMeta(snap))
}
