// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/engagement"
	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/recommend/algorithms"
	"github.com/tomtom215/curator/internal/recommend/features"
	"github.com/tomtom215/curator/internal/recommend/storage"
)

// Cold-start fallback reasons.
const (
	FallbackNoEngagement = "no_engagement"
	FallbackNoFeatures   = "no_features"
	FallbackTraining     = "training_failed"
	FallbackPrediction   = "prediction_failed"
)

// Prediction is the output of the cold-start stage.
type Prediction struct {
	// Scores holds a prediction for every catalog item.
	Scores map[string]float64

	Evaluation algorithms.Evaluation

	// Fallback names the reason the type-average fallback was used.
	Fallback string

	// Model is the fitted ridge state, nil for knn or on fallback.
	Model *storage.RidgeModelState
}

// ColdStartPredictor predicts engagement from content features. The target
// is log1p of the engagement score; the model is evaluated on a stratified
// hold-out split, then refit on every item.
type ColdStartPredictor struct {
	cfg    ColdStartConfig
	ridge  algorithms.RidgeConfig
	seed   int64
	logger zerolog.Logger
}

// NewColdStartPredictor creates a predictor from the run configuration.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewColdStartPredictor(cfg *Config, logger zerolog.Logger) *ColdStartPredictor {
	return &ColdStartPredictor{
		cfg:    cfg.ColdStart,
		ridge:  cfg.Ridge,
		seed:   cfg.Seed,
		logger: logger.With().Str("component", "cold_start").Logger(),
	}
}

func (p *ColdStartPredictor) newModel() algorithms.Regressor {
	if p.cfg.Method == ColdStartKNN {
		return algorithms.NewKNNRegressor(algorithms.KNNConfig{K: p.cfg.Neighbors})
	}
	return algorithms.NewRidge(p.ridge)
}

// Predict scores every item. Model failures fall back to the per-type
// average of observed engagement; only context errors are returned.
// m may be nil when the feature stage failed.
func (p *ColdStartPredictor) Predict(ctx context.Context, m *features.Matrix, items []catalog.Item, eng *engagement.Result) (*Prediction, error) {
	observed := eng.Scores()

	if m == nil || m.Len() == 0 {
		return p.fallback(items, observed, FallbackNoFeatures), nil
	}

	std, scaler := features.Standardize(m)
	y := make([]float64, std.Len())
	labels := make([]bool, std.Len())
	positives := 0
	for i, id := range std.IDs {
		s := eng.Score(id)
		y[i] = math.Log1p(s)
		labels[i] = s > 0
		if labels[i] {
			positives++
		}
	}
	if positives == 0 {
		return p.fallback(items, observed, FallbackNoEngagement), nil
	}

	ev, err := algorithms.Evaluate(ctx, p.newModel, std.Rows, y, labels, p.cfg.HoldoutFraction, p.seed)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn().Err(err).Msg("Cold-start evaluation failed")
		ev = algorithms.Evaluation{Reason: err.Error()}
	}
	if ev.Evaluated {
		metrics.SetRegressionEval(ev.RMSE, ev.MAE, ev.R2, ev.AUC)
		p.logger.Info().
			Str("method", p.cfg.Method).
			Int("train", ev.TrainSize).
			Int("test", ev.TestSize).
			Float64("rmse", ev.RMSE).
			Float64("mae", ev.MAE).
			Float64("r2", ev.R2).
			Float64("auc", ev.AUC).
			Msg("Cold-start model evaluated")
	} else {
		p.logger.Info().Str("reason", ev.Reason).Msg("Cold-start evaluation skipped")
	}

	// kNN averages over items with engagement only; ridge fits every item.
	X, target := std.Rows, y
	if p.cfg.Method == ColdStartKNN {
		X, target = nil, nil
		for i := range labels {
			if labels[i] {
				X = append(X, std.Rows[i])
				target = append(target, y[i])
			}
		}
	}

	model := p.newModel()
	if err := model.Fit(ctx, X, target); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn().Err(err).Str("method", p.cfg.Method).Msg("Cold-start model training failed")
		pred := p.fallback(items, observed, FallbackTraining)
		pred.Evaluation = ev
		return pred, nil
	}

	out, err := model.Predict(std.Rows)
	if err != nil {
		p.logger.Warn().Err(err).Str("method", p.cfg.Method).Msg("Cold-start prediction failed")
		pred := p.fallback(items, observed, FallbackPrediction)
		pred.Evaluation = ev
		return pred, nil
	}

	pred := &Prediction{
		Scores:     make(map[string]float64, len(out)),
		Evaluation: ev,
	}
	for i, id := range std.IDs {
		pred.Scores[id] = out[i]
	}
	if r, ok := model.(*algorithms.Ridge); ok {
		w, b := r.Weights()
		pred.Model = &storage.RidgeModelState{
			Columns:   std.Columns,
			Weights:   w,
			Intercept: b,
			Lambda:    r.Lambda(),
			Dual:      r.Dual(),
			Mean:      scaler.Mean,
			Std:       scaler.Std,
		}
	}
	return pred, nil
}

func (p *ColdStartPredictor) fallback(items []catalog.Item, observed map[string]float64, reason string) *Prediction {
	metrics.RecordColdStartFallback(reason)
	p.logger.Warn().Str("reason", reason).Msg("Cold-start scores use the per-type average")

	itemType := make(map[string]string, len(items))
	ids := make([]string, len(items))
	for i := range items {
		itemType[items[i].ID] = items[i].Type.String()
		ids[i] = items[i].ID
	}
	return &Prediction{
		Scores:     algorithms.TypeAverage(itemType, observed, ids),
		Evaluation: algorithms.Evaluation{Reason: reason},
		Fallback:   reason,
	}
}
