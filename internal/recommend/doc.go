// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package recommend runs the hybrid ranking pipeline over a content catalog.
//
// # Pipeline
//
// A run executes the following stages in order:
//
//  1. Catalog: load and validate items (the only fatal input)
//  2. Embeddings: load precomputed vectors, fill gaps through the embedder
//  3. Events: load engagement rows from JSON exports or an event store
//  4. Aggregate: resolve rows to items and compute weighted scores
//  5. Features: build the content feature matrix
//  6. ALS: factorize the session x item matrix, or fall back to the
//     weighted engagement score when too few items have interactions
//  7. Cold start: predict engagement from content features (ridge or knn)
//  8. Score: merge observed and predicted scores into one ranking
//  9. Clusters and carousels: consolidate clusters, select diverse carousels
//  10. Models, artifacts and notification
//
// Every run recomputes all state from its inputs. Runs are serialized;
// a second Run while one is active returns ErrRunInProgress.
//
// # Scoring
//
// Observed items are ranked by their normalized collaborative score.
// Cold-start items get their normalized content prediction multiplied by
// the discount, so they enter the ranking below established items. The
// union is min-max scaled to [0, 1]. When a cold-start item still
// outscores an observed one, the run records a discount violation; on
// small observed cohorts the violation is marked acceptable.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), recommend.Dependencies{
//	    Catalog: &recommend.CatalogDir{Dir: "data/catalog", Logger: logger},
//	    Events:  engagement.NewJSONSource("data/events"),
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	res, err := engine.Run(ctx)
//
// # Thread Safety
//
// Engine is safe for concurrent use. Status and Last never block on a run.
// ScoreTable is immutable once built.
package recommend
