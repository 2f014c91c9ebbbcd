// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package reranking selects the items shown in each cluster carousel.
//
// Selection runs per cluster, in order:
//
//	Relevance -> Hero -> Type Coverage -> MMR Fill -> Diversity Audit
//
// # Relevance
//
// A cluster-local composite in [0, 1]:
//
//	rel = 0.3 * citations + 0.2 * difficulty + 0.5 * centrality
//
// Citations are log1p-normalized against the most cited paper in the
// cluster (0.5 for everything else). Difficulty maps beginner, intermediate
// and advanced to 0.2, 0.5 and 0.8. Centrality is the cosine similarity to
// the cluster centroid rescaled from [-1, 1]. With GlobalScoreWeight > 0
// the hybrid ranking score is blended in.
//
// # Hero
//
// The lead item maximizes media richness (0.20), authority (0.25),
// engagement (0.30) and recency (0.25). Engagement uses observed
// interaction volume when present, then repository stars, then a per-type
// default. Recency decays by exp(-0.15 * years) from the newest catalog
// year. The hero is removed from later phases and placed first.
//
// # Type Coverage
//
// Per-type quotas (default: 2 papers, 1 each of talk, resource, package,
// book) are filled with the most relevant items of each type, in the order
// talk, resource, book, paper, package, dataset, community, career.
//
// # MMR Algorithm
//
// Remaining slots are filled greedily:
//
//	MMR = argmax[lambda * rel(i) - (1-lambda) * max_similarity(i, placed)]
//
// Similarity is embedding cosine, and the hero and coverage picks count as
// placed. Lambda 1 reduces to top-k by relevance.
//
// # Diversity Audit
//
// ILD is the mean pairwise cosine distance of the final list. Values below
// ILDLow are flagged redundant and above ILDHigh incoherent. The carousel
// also reports TypeCalibration, the KL divergence of its type mix from
// the cluster's.
//
// # Determinism
//
// Members are sorted by ID before scoring and every argmax keeps the first
// (smallest ID) candidate on ties, so a cluster always yields the same
// carousel regardless of member order or worker count.
//
// # Usage Example
//
//	sel := reranking.NewSelector(cfg, cat, store, reranking.Signals{
//	    Volume: engagementVolume,
//	    Global: table.Scores(),
//	}, logger)
//	carousels, err := sel.SelectAll(ctx, clusters)
//
// # Thread Safety
//
// Selector holds no mutable state after construction and is safe for
// concurrent use. SelectAll runs clusters on a bounded worker pool.
//
// # See Also
//
//   - Carbonell & Goldstein (1998): "The Use of MMR" SIGIR paper
//   - Steck (2018): "Calibrated Recommendations"
package reranking
