// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

// Package algorithms implements the models behind the hybrid ranking.
//
// # Models
//
// Collaborative Filtering:
//   - ALS: implicit Alternating Least Squares over a session x item matrix.
//     Item score = dot(item factor, sum of session factors).
//
// Cold-start regression (Regressor interface):
//   - Ridge: L2-regularized linear regression on standardized features,
//     solved in the primal or the dual (kernel) form by Cholesky.
//   - KNNRegressor: similarity-weighted mean of the k most similar rows.
//
// Fallback:
//   - TypeAverage: per-type mean of observed scores, global mean otherwise.
//
// # Session Matrix
//
// BuildSessionMatrix takes engagement cells. Real sessions come from dwell
// rows; click, impression and secondary-signal aggregates arrive as
// synthetic single-item sessions so every interacted item gets a row.
//
//	m := algorithms.BuildSessionMatrix(result.Cells())
//	als := algorithms.NewALS(algorithms.DefaultALSConfig())
//	if err := als.Train(ctx, m); errors.Is(err, algorithms.ErrInsufficientData) {
//	    // fall back to weighted engagement scores
//	}
//	scores := als.ItemScores()
//
// The latent dimension is clamp(min(sessions, items) - 1, 5, 32) unless set
// explicitly. Factor initialization uses a seeded generator, and sparse rows
// are sorted, so training on the same matrix twice gives identical factors.
//
// # Evaluation
//
// Evaluate fits a fresh Regressor on a stratified hold-out split (strata:
// has engagement or not) and reports RMSE, MAE, R² and the rank AUC of
// engaged vs. non-engaged items. When either stratum has fewer than two
// members the evaluation is skipped with a reason.
//
// # Thread Safety
//
// Models embed BaseAlgorithm: training takes an exclusive lock and
// prediction a shared lock, so a trained model may be read concurrently.
package algorithms
