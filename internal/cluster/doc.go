// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package cluster loads topic clusters and consolidates them before carousel
selection.

Clusters arrive as clusters.json (labels, top tags and an item_to_cluster
map) produced by an upstream clustering job. Consolidate revises them in
four steps:

 1. Career clusters (label mentions careers, portals, jobs, hiring,
    opportunities or internships) are grouped by an industry keyword table
    into one super-cluster per industry, with "Other Industry Careers" as
    the fallback.
 2. Clusters with at most SmallClusterMax members join the large cluster
    whose centroid is most similar, when the cosine exceeds MergeThreshold.
 3. Labels built from generic terms are replaced by a Labeler (an OpenAI
    chat model), falling back to a label made from the top tags.
 4. Empty clusters are dropped and the rest ordered: diverse technical,
    diverse other, homogeneous technical, homogeneous other, careers.
    Within a group, larger clusters come first. IDs are reassigned 0..n-1.

A cluster is homogeneous when one content type makes up at least
HomogeneityThreshold of its members, and a career cluster when every member
is a career listing.

Membership therefore changes between runs; consumers should key on the
returned IDs of the current run only.
*/
package cluster
