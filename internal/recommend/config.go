// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package recommend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/cluster"
	"github.com/tomtom215/curator/internal/config"
	"github.com/tomtom215/curator/internal/engagement"
	"github.com/tomtom215/curator/internal/recommend/algorithms"
	"github.com/tomtom215/curator/internal/recommend/features"
	"github.com/tomtom215/curator/internal/recommend/reranking"
)

// Config contains all configuration for a ranking run.
type Config struct {
	// Weights is the engagement signal weight table.
	Weights engagement.Weights `json:"weights"`

	// ALS contains parameters for the collaborative filtering model.
	ALS algorithms.ALSConfig `json:"als"`

	// Ridge contains parameters for the cold-start regressor.
	Ridge algorithms.RidgeConfig `json:"ridge"`

	// ColdStart controls how cold-start items are scored.
	ColdStart ColdStartConfig `json:"cold_start"`

	// Features configures the content feature builder.
	Features features.Config `json:"features"`

	// Diversity configures carousel selection.
	Diversity reranking.Config `json:"diversity"`

	// Consolidation configures cluster post-processing.
	Consolidation cluster.Config `json:"consolidation"`

	// MinALSItems is the number of interacted items ALS needs. Below it the
	// weighted engagement score is used.
	MinALSItems int `json:"min_als_items"`

	// ALSBlend scales the normalized ALS score added to the net engagement
	// score, in units of the click weight. Below 1, one more click always
	// outweighs any ALS difference.
	ALSBlend float64 `json:"als_blend"`

	// TrendingSize is the length of the trending list.
	TrendingSize int `json:"trending_size"`

	// Seed fixes ALS initialization and the evaluation split.
	Seed int64 `json:"seed"`

	// Timeout bounds one run. Zero means no limit.
	Timeout time.Duration `json:"timeout"`

	// KeepModelVersions is how many stored model versions survive a run.
	KeepModelVersions int `json:"keep_model_versions"`
}

// ColdStartConfig controls cold-start scoring.
type ColdStartConfig struct {
	// Method is ridge or knn.
	Method string `json:"method"`

	// Discount multiplies normalized cold-start predictions.
	Discount float64 `json:"discount"`

	// ObservedFloor lifts normalized observed scores into [floor, 1]. The
	// scorer raises it to at least Discount + ObservedMargin.
	ObservedFloor float64 `json:"observed_floor"`

	// HoldoutFraction is the evaluation split.
	HoldoutFraction float64 `json:"holdout_fraction"`

	// Neighbors is k for the knn method.
	Neighbors int `json:"neighbors"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights: engagement.DefaultWeights(),
		ALS:     algorithms.DefaultALSConfig(),
		Ridge:   algorithms.DefaultRidgeConfig(),
		ColdStart: ColdStartConfig{
			Method:          ColdStartRidge,
			Discount:        0.3,
			ObservedFloor:   0,
			HoldoutFraction: 0.2,
			Neighbors:       algorithms.DefaultKNNConfig().K,
		},
		Features:          features.DefaultConfig(),
		Diversity:         reranking.DefaultConfig(),
		Consolidation:     cluster.DefaultConfig(),
		MinALSItems:       5,
		ALSBlend:          0.5,
		TrendingSize:      12,
		Seed:              42,
		Timeout:           30 * time.Minute,
		KeepModelVersions: 3,
	}
}

// FromAppConfig builds a run configuration from the application config.
func FromAppConfig(app *config.Config) *Config {
	c := DefaultConfig()
	r := &app.Ranking

	w := &r.Weights
	c.Weights = engagement.Weights{
		Click:          w.Click,
		Impression:     w.Impression,
		DwellPerMinute: w.DwellPerMinute,
		ViewableSecond: w.ViewableSecond,
		Scroll50:       w.Scroll50,
		Scroll75:       w.Scroll75,
		Scroll90:       w.Scroll90,
		SearchClick:    w.SearchClick,
		DeepSession:    w.DeepSession,
		RageClick:      w.RageClick,
		QuickBounce:    w.QuickBounce,
		CoView:         w.CoView,
		CoClick:        w.CoClick,
	}

	c.ALS.NumIterations = r.ALS.Iterations
	c.ALS.Regularization = r.ALS.Regularization
	c.ALS.Alpha = r.ALS.Alpha
	c.ALS.MinFactors = r.ALS.MinFactors
	c.ALS.MaxFactors = r.ALS.MaxFactors
	c.ALS.NumWorkers = r.ALS.NumWorkers
	c.ALS.MinItems = r.MinALSItems

	c.Ridge.Lambda = r.Regression.Lambda
	c.ColdStart = ColdStartConfig{
		Method:          r.ColdStart.Method,
		Discount:        r.ColdStart.Discount,
		ObservedFloor:   r.ColdStart.ObservedFloor,
		HoldoutFraction: r.Regression.HoldoutFraction,
		Neighbors:       r.ColdStart.Neighbors,
	}

	d := &app.Diversity
	c.Diversity.Lambda = d.Lambda
	c.Diversity.MaxItems = d.MaxItems
	c.Diversity.ILDLow = d.ILDLow
	c.Diversity.ILDHigh = d.ILDHigh
	c.Diversity.GlobalScoreWeight = d.GlobalScoreWeight
	c.Diversity.Workers = d.Workers
	if len(d.MinPerType) > 0 {
		c.Diversity.MinPerType = make(map[string]int, len(d.MinPerType))
		for t, n := range d.MinPerType {
			c.Diversity.MinPerType[t] = n
		}
	}

	c.Consolidation = cluster.Config{
		MergeThreshold:       app.Consolidation.MergeThreshold,
		SmallClusterMax:      app.Consolidation.SmallClusterMax,
		HomogeneityThreshold: app.Consolidation.HomogeneityThreshold,
	}

	c.MinALSItems = r.MinALSItems
	c.ALSBlend = r.ALS.Blend
	c.TrendingSize = r.TrendingSize
	c.Seed = r.Seed
	c.ALS.Seed = r.Seed
	c.Timeout = app.Schedule.RunTimeout
	c.KeepModelVersions = app.Models.KeepVersions
	return c
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if c.MinALSItems < 1 {
		return fmt.Errorf("min_als_items must be positive, got %d", c.MinALSItems)
	}
	if c.TrendingSize < 0 {
		return fmt.Errorf("trending_size must be non-negative, got %d", c.TrendingSize)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %v", c.Timeout)
	}

	if c.ALS.Regularization < 0 {
		return fmt.Errorf("als.regularization must be non-negative, got %f", c.ALS.Regularization)
	}
	if c.ALS.Alpha < 0 {
		return fmt.Errorf("als.alpha must be non-negative, got %f", c.ALS.Alpha)
	}
	if c.ALSBlend < 0 || c.ALSBlend >= 1 {
		return fmt.Errorf("als_blend must be in [0, 1), got %f", c.ALSBlend)
	}
	if c.ALS.MaxFactors > 0 && c.ALS.MaxFactors < c.ALS.MinFactors {
		return fmt.Errorf("als.max_factors must be >= als.min_factors, got %d < %d", c.ALS.MaxFactors, c.ALS.MinFactors)
	}

	switch c.ColdStart.Method {
	case ColdStartRidge, ColdStartKNN:
	default:
		return fmt.Errorf("cold_start.method must be %q or %q, got %q", ColdStartRidge, ColdStartKNN, c.ColdStart.Method)
	}
	if c.ColdStart.Discount < 0 || c.ColdStart.Discount > 1 {
		return fmt.Errorf("cold_start.discount must be in [0, 1], got %f", c.ColdStart.Discount)
	}
	if c.ColdStart.ObservedFloor < 0 || c.ColdStart.ObservedFloor >= 1 {
		return fmt.Errorf("cold_start.observed_floor must be in [0, 1), got %f", c.ColdStart.ObservedFloor)
	}
	if c.ColdStart.HoldoutFraction <= 0 || c.ColdStart.HoldoutFraction >= 1 {
		return fmt.Errorf("cold_start.holdout_fraction must be in (0, 1), got %f", c.ColdStart.HoldoutFraction)
	}

	if c.Diversity.Lambda < 0 || c.Diversity.Lambda > 1 {
		return fmt.Errorf("diversity.lambda must be in [0, 1], got %f", c.Diversity.Lambda)
	}
	if c.Diversity.MaxItems < 0 {
		return fmt.Errorf("diversity.max_items must be non-negative, got %d", c.Diversity.MaxItems)
	}
	if c.Diversity.ILDHigh > 0 && c.Diversity.ILDLow > c.Diversity.ILDHigh {
		return fmt.Errorf("diversity.ild_low must be <= diversity.ild_high, got %f > %f", c.Diversity.ILDLow, c.Diversity.ILDHigh)
	}

	if c.Consolidation.MergeThreshold < -1 || c.Consolidation.MergeThreshold > 1 {
		return fmt.Errorf("consolidation.merge_threshold must be in [-1, 1], got %f", c.Consolidation.MergeThreshold)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	if c.Diversity.MinPerType != nil {
		out.Diversity.MinPerType = make(map[string]int, len(c.Diversity.MinPerType))
		for t, n := range c.Diversity.MinPerType {
			out.Diversity.MinPerType[t] = n
		}
	}
	return &out
}

// MarshalJSON renders Timeout as a duration string.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		Timeout string `json:"timeout"`
	}{
		Alias:   (*Alias)(c),
		Timeout: c.Timeout.String(),
	})
}
