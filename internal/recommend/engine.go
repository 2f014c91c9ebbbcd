// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/cluster"
	"github.com/tomtom215/curator/internal/embed"
	"github.com/tomtom215/curator/internal/engagement"
	"github.com/tomtom215/curator/internal/logging"
	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/recommend/algorithms"
	"github.com/tomtom215/curator/internal/recommend/features"
	"github.com/tomtom215/curator/internal/recommend/reranking"
	"github.com/tomtom215/curator/internal/recommend/storage"
)

// ErrRunInProgress is returned by Run while another run holds the engine.
var ErrRunInProgress = errors.New("run already in progress")

// Pipeline stage names, used as metric labels and in RunStatus.
const (
	StageCatalog    = "catalog"
	StageEmbeddings = "embeddings"
	StageEvents     = "events"
	StageAggregate  = "aggregate"
	StageFeatures   = "features"
	StageALS        = "als"
	StageColdStart  = "cold_start"
	StageScore      = "score"
	StageClusters   = "clusters"
	StageCarousels  = "carousels"
	StageModels     = "models"
	StageArtifacts  = "artifacts"
	StageNotify     = "notify"
)

// Dependencies are the collaborators of an Engine. Only Catalog is required.
type Dependencies struct {
	Catalog   CatalogSource
	Vectors   VectorSource
	Events    engagement.Source
	Clusters  ClusterSource
	Labeler   cluster.Labeler
	Models    *storage.Store
	Artifacts ArtifactWriter
	Notifier  Notifier
}

// Engine runs the ranking pipeline. Runs are serialized; every run
// recomputes all state from its inputs. It is safe for concurrent use.
type Engine struct {
	config *Config
	deps   Dependencies
	logger zerolog.Logger

	runMu sync.Mutex

	statusMu sync.RWMutex
	status   RunStatus

	last atomic.Pointer[RunResult]
}

// NewEngine creates a pipeline engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Catalog == nil {
		return nil, errors.New("catalog source not set")
	}

	return &Engine{
		config: cfg.Clone(),
		deps:   deps,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() RunStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

// Last returns the most recent successful run, or nil.
func (e *Engine) Last() *RunResult {
	return e.last.Load()
}

// Run executes one full pipeline run. It returns ErrRunInProgress
// immediately when another run is active. A failed run publishes nothing.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	if !e.runMu.TryLock() {
		metrics.RecordPipelineSkipped()
		return nil, ErrRunInProgress
	}
	defer e.runMu.Unlock()

	runID := logging.GenerateRunID()
	logger := e.logger.With().Str("run_id", runID).Logger()
	ctx = logging.ContextWithRunID(ctx, runID)
	ctx = logging.ContextWithLogger(ctx, logger)

	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	e.beginRun(runID, start)
	logger.Info().Msg("Starting ranking run")

	res, err := e.run(ctx, runID, start, logger)

	metrics.RecordPipelineRun(time.Since(start), err)
	e.finishRun(res, err, start)

	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Ranking run failed")
		return nil, err
	}
	e.last.Store(res)

	observed, cold := res.Ranking.Table.Counts()
	logger.Info().
		Str("algorithm", res.Ranking.Algorithm()).
		Int("observed", observed).
		Int("cold_start", cold).
		Int("carousels", len(res.Carousels)).
		Dur("duration", res.Duration()).
		Msg("Ranking run complete")
	return res, nil
}

func (e *Engine) beginRun(runID string, start time.Time) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.Running = true
	e.status.LastRunID = runID
	e.status.LastStartedAt = start
	e.status.LastError = ""
	e.status.Stage = ""
}

func (e *Engine) finishRun(res *RunResult, err error, start time.Time) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.Running = false
	e.status.Runs++
	e.status.Stage = ""
	e.status.LastDuration = time.Since(start).Round(time.Millisecond).String()
	if err != nil {
		e.status.LastError = err.Error()
		return
	}
	e.status.LastSuccessAt = res.CompletedAt
	e.status.Algorithm = res.Ranking.Algorithm()
	e.status.Items = res.Ranking.Table.Len()
	e.status.Carousels = len(res.Carousels)
}

// stage runs fn as a named stage and records its duration.
func (e *Engine) stage(name string, fn func() error) error {
	e.statusMu.Lock()
	e.status.Stage = name
	e.statusMu.Unlock()

	start := time.Now()
	err := fn()
	metrics.RecordStage(name, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// pipeline carries the intermediate state of one run.
type pipeline struct {
	cat     *catalog.Catalog
	items   []catalog.Item
	vecs    *embed.Store
	rows    *engagement.Rows
	eng     *engagement.Result
	matrix  *features.Matrix
	als     *algorithms.ALS
	scoring Scoring
	obs     map[string]float64
	pred    *Prediction
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (e *Engine) run(ctx context.Context, runID string, start time.Time, logger zerolog.Logger) (*RunResult, error) {
	cfg := e.config
	p := &pipeline{}
	res := &RunResult{RunID: runID, StartedAt: start}

	if err := e.stage(StageCatalog, func() error {
		cat, err := e.deps.Catalog.Load(ctx)
		if err != nil {
			return err
		}
		p.cat, p.items = cat, cat.Items()
		metrics.SetCatalogSize(cat.TypeCounts())
		return nil
	}); err != nil {
		return nil, err
	}

	if err := e.stage(StageEmbeddings, func() error {
		p.vecs = embed.NewStore(0)
		if e.deps.Vectors == nil {
			return nil
		}
		vecs, err := e.deps.Vectors.Load(ctx, p.items)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Msg("Embeddings unavailable, continuing without vectors")
			return nil
		}
		p.vecs = vecs
		return nil
	}); err != nil {
		return nil, err
	}

	if err := e.stage(StageEvents, func() error {
		p.rows = &engagement.Rows{}
		if e.deps.Events == nil {
			return nil
		}
		rows, err := e.deps.Events.Load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Str("source", e.deps.Events.Name()).Msg("Engagement events unavailable, ranking from content only")
			return nil
		}
		p.rows = rows
		return nil
	}); err != nil {
		return nil, err
	}

	_ = e.stage(StageAggregate, func() error { //nolint:errcheck // aggregation cannot fail
		p.eng = engagement.Aggregate(p.cat, p.rows, cfg.Weights)
		p.eng.Report(logger)
		return nil
	})

	if err := e.stage(StageFeatures, func() error {
		fcfg := cfg.Features
		if fcfg.ReferenceYear == 0 {
			fcfg.ReferenceYear = p.cat.MaxYear()
		}
		m, err := features.Build(ctx, p.items, p.vecs, fcfg)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Msg("Feature build failed")
			return nil
		}
		p.matrix = m
		logger.Debug().Int("rows", m.Len()).Int("width", m.Width()).Msg("Features built")
		return nil
	}); err != nil {
		return nil, err
	}

	if err := e.stage(StageALS, func() error { return e.observedScores(ctx, p, logger) }); err != nil {
		return nil, err
	}

	if err := e.stage(StageColdStart, func() error {
		pred, err := NewColdStartPredictor(cfg, logger).Predict(ctx, p.matrix, p.items, p.eng)
		if err != nil {
			return err
		}
		p.pred = pred
		return nil
	}); err != nil {
		return nil, err
	}

	_ = e.stage(StageScore, func() error { //nolint:errcheck // scoring cannot fail
		res.Ranking = e.score(p, logger)
		return nil
	})

	if err := e.stage(StageClusters, func() error { return e.consolidate(ctx, p, res, logger) }); err != nil {
		return nil, err
	}

	if err := e.stage(StageCarousels, func() error { return e.carousels(ctx, p, res, logger) }); err != nil {
		return nil, err
	}

	_ = e.stage(StageModels, func() error { //nolint:errcheck // model persistence is best effort
		e.saveModels(ctx, p, res, logger)
		return nil
	})

	res.CompletedAt = time.Now().UTC()

	if e.deps.Artifacts != nil {
		if err := e.stage(StageArtifacts, func() error {
			paths, err := e.deps.Artifacts.Write(ctx, res)
			res.Artifacts = paths
			return err
		}); err != nil {
			return nil, err
		}
	}

	if e.deps.Notifier != nil {
		_ = e.stage(StageNotify, func() error { //nolint:errcheck // notification failures are logged
			err := e.deps.Notifier.NotifyRunCompleted(ctx, res)
			metrics.RecordNotification(err)
			if err != nil {
				logger.Warn().Err(err).Msg("Run notification failed")
			}
			return err
		})
	}

	return res, nil
}

// observedScores trains ALS on the interaction matrix and blends its item
// scores into the net engagement score, or falls back to the weighted
// engagement score when too few items have interactions.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (e *Engine) observedScores(ctx context.Context, p *pipeline, logger zerolog.Logger) error {
	interacted := len(p.eng.Interacted())
	weighted := func(reason string) {
		w := p.eng.Weights()
		p.obs = p.eng.Scores()
		p.scoring.Method = MethodWeighted
		p.scoring.FallbackWeights = &w
		p.scoring.ALSSkipReason = reason
		metrics.RecordALS(true, 0)
		logger.Info().Str("reason", reason).Int("interacted", interacted).Msg("Using weighted engagement scores")
	}

	if interacted < e.config.MinALSItems {
		weighted(fmt.Sprintf("%d items with interactions, need %d", interacted, e.config.MinALSItems))
		return nil
	}

	m := algorithms.BuildSessionMatrix(p.eng.Cells())
	als := algorithms.NewALS(e.config.ALS)
	if err := als.Train(ctx, m); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn().Err(err).Msg("ALS training failed")
		weighted(err.Error())
		return nil
	}

	factors := als.Factors()
	blend := e.config.ALSBlend
	p.als = als
	p.obs = BlendALS(p.eng.NetScores(), als.ItemScores(), p.eng.Weights().Click, blend)
	p.scoring.Method = MethodALS
	p.scoring.ALSFactors = &factors
	p.scoring.ALSBlend = &blend
	metrics.RecordALS(false, factors)
	logger.Info().
		Int("sessions", len(m.Sessions)).
		Int("items", len(m.Items)).
		Int("nnz", m.NNZ()).
		Int("factors", factors).
		Msg("ALS trained")
	return nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (e *Engine) score(p *pipeline, logger zerolog.Logger) *Ranking {
	cs := e.config.ColdStart
	scorer := NewHybridScorer(cs, e.config.MinALSItems)
	table, g := scorer.Score(&ScoreInput{
		Items:      p.items,
		Engagement: p.eng,
		Observed:   p.obs,
		Predicted:  p.pred.Scores,
	})

	p.scoring.ColdStartMethod = cs.Method
	p.scoring.ColdStartFallback = p.pred.Fallback
	p.scoring.Discount = cs.Discount
	p.scoring.ObservedFloor = scorer.Floor()
	p.scoring.MaxColdScore = g.MaxCold
	p.scoring.MinObservedScore = g.MinObserved
	p.scoring.DiscountViolation = g.Violation
	p.scoring.DiscountViolationAcceptable = g.Acceptable

	metrics.SetColdDiscountViolation(g.Violation && !g.Acceptable)
	if g.Violation {
		ev := logger.Warn()
		if g.Acceptable {
			ev = logger.Info()
		}
		ev.Float64("max_cold", g.MaxCold).
			Float64("min_observed", g.MinObserved).
			Bool("acceptable", g.Acceptable).
			Msg("Cold-start item outscores an observed item")
	}

	observed, cold := table.Counts()
	metrics.SetRankedItems(observed, cold)

	return &Ranking{
		Table:      table,
		Scoring:    p.scoring,
		Evaluation: p.pred.Evaluation,
		Coverage:   p.eng.Coverage,
		Dropped:    p.eng.Dropped,
	}
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (e *Engine) consolidate(ctx context.Context, p *pipeline, res *RunResult, logger zerolog.Logger) error {
	if e.deps.Clusters == nil {
		return nil
	}
	raw, err := e.deps.Clusters.Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn().Err(err).Msg("Clusters unavailable, skipping carousels")
		return nil
	}

	c := cluster.NewConsolidator(e.config.Consolidation, p.cat, p.vecs.Known(), e.deps.Labeler, logger)
	clusters, stats, err := c.Consolidate(ctx, raw)
	if err != nil {
		return err
	}
	res.Clusters = clusters
	res.ClusterStats = stats
	return nil
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (e *Engine) carousels(ctx context.Context, p *pipeline, res *RunResult, logger zerolog.Logger) error {
	dcfg := e.config.Diversity
	if dcfg.ReferenceYear == 0 {
		dcfg.ReferenceYear = p.cat.MaxYear()
	}
	sel := reranking.NewSelector(dcfg, p.cat, p.vecs.Known(), reranking.Signals{
		Volume: p.eng.Scores(),
		Global: res.Ranking.Table.Scores(),
	}, logger)
	res.Diversity = sel.Config()

	if len(res.Clusters) == 0 {
		return nil
	}
	in := make([]reranking.Cluster, len(res.Clusters))
	for i := range res.Clusters {
		in[i] = reranking.Cluster{
			ID:      res.Clusters[i].ID,
			Label:   res.Clusters[i].Label,
			Members: res.Clusters[i].Members,
		}
	}
	carousels, err := sel.SelectAll(ctx, in)
	if err != nil {
		return err
	}
	res.Carousels = carousels
	return nil
}

// saveModels stores the trained models as a new version and prunes old ones.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (e *Engine) saveModels(ctx context.Context, p *pipeline, res *RunResult, logger zerolog.Logger) {
	store := e.deps.Models
	if store == nil {
		return
	}

	save := func(name string, state any, meta storage.ModelMetadata) {
		meta.RunID = res.RunID
		meta.TrainedAt = res.StartedAt
		meta.TrainingDurationMS = time.Since(res.StartedAt).Milliseconds()
		version := store.NextVersion(name)
		if err := store.Save(ctx, name, version, state, meta); err != nil {
			logger.Warn().Err(err).Str("model", name).Msg("Saving model failed")
			return
		}
		removed, err := store.Prune(ctx, name, e.config.KeepModelVersions)
		if err != nil {
			logger.Warn().Err(err).Str("model", name).Msg("Pruning models failed")
		}
		logger.Debug().Str("model", name).Int("version", version).Int("pruned", removed).Msg("Model saved")
	}

	if p.als != nil {
		cfg := p.als.Config()
		save(storage.ModelALS, storage.ALSModelState{
			Sessions:       p.als.Sessions(),
			Items:          p.als.Items(),
			SessionFactors: p.als.GetUserFactors(),
			ItemFactors:    p.als.GetItemFactors(),
			Factors:        p.als.Factors(),
			Iterations:     cfg.NumIterations,
			Regularization: cfg.Regularization,
			Alpha:          cfg.Alpha,
		}, storage.ModelMetadata{Sessions: len(p.als.Sessions()), Items: len(p.als.Items())})
	}
	if p.pred != nil && p.pred.Model != nil {
		save(storage.ModelRidge, *p.pred.Model, storage.ModelMetadata{Items: len(p.items)})
	}
}
