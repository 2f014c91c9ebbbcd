// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validatePaths,
		c.validateEvents,
		c.validateOpenAI,
		c.validateRanking,
		c.validateDiversity,
		c.validateConsolidation,
		c.validateNotify,
		c.validateServer,
		c.validateSchedule,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

// validatePaths validates required input and output locations
func (c *Config) validatePaths() error {
	if c.Catalog.Dir == "" {
		return fmt.Errorf("CATALOG_DIR is required")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if c.Models.Dir != "" && c.Models.KeepVersions < 1 {
		return fmt.Errorf("MODELS_KEEP must be at least 1, got: %d", c.Models.KeepVersions)
	}
	return nil
}

var validEventSources = map[string]bool{
	"json":   true,
	"duckdb": true,
	"sqlite": true,
}

// validateEvents validates the engagement source configuration
func (c *Config) validateEvents() error {
	if !validEventSources[c.Events.Source] {
		return fmt.Errorf("EVENTS_SOURCE must be one of: json, duckdb, sqlite")
	}
	if c.Events.Path == "" {
		return fmt.Errorf("EVENTS_PATH is required")
	}
	if c.Events.Timeout <= 0 {
		return fmt.Errorf("EVENTS_TIMEOUT must be positive, got: %v", c.Events.Timeout)
	}
	if c.Events.RetryAttempts < 1 || c.Events.RetryAttempts > 10 {
		return fmt.Errorf("EVENTS_RETRY_ATTEMPTS must be between 1 and 10, got: %d", c.Events.RetryAttempts)
	}
	if c.Events.RetryDelay < 0 {
		return fmt.Errorf("EVENTS_RETRY_DELAY must not be negative, got: %v", c.Events.RetryDelay)
	}
	if c.Events.RateLimit <= 0 {
		return fmt.Errorf("EVENTS_RATE_LIMIT must be positive, got: %v", c.Events.RateLimit)
	}
	return nil
}

// validateOpenAI validates the embedding provider (only if enabled)
func (c *Config) validateOpenAI() error {
	o := c.Embeddings.OpenAI
	if !o.Enabled && !c.Clusters.Relabel {
		return nil
	}
	if o.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when OPENAI_ENABLED=true or CLUSTERS_RELABEL=true")
	}
	if err := validateHTTPURL(o.BaseURL, "OPENAI_BASE_URL"); err != nil {
		return err
	}
	if o.Enabled && o.Model == "" {
		return fmt.Errorf("OPENAI_EMBEDDING_MODEL is required when OPENAI_ENABLED=true")
	}
	if c.Clusters.Relabel && o.ChatModel == "" {
		return fmt.Errorf("OPENAI_CHAT_MODEL is required when CLUSTERS_RELABEL=true")
	}
	if o.Dimensions < 0 {
		return fmt.Errorf("OPENAI_DIMENSIONS must not be negative, got: %d", o.Dimensions)
	}
	if o.RequestsPerSecond <= 0 {
		return fmt.Errorf("OPENAI_RPS must be positive, got: %v", o.RequestsPerSecond)
	}
	if o.BatchSize < 1 {
		return fmt.Errorf("embeddings.openai.batch_size must be at least 1, got: %d", o.BatchSize)
	}
	return nil
}

// validateRanking validates the hybrid ranking parameters
func (c *Config) validateRanking() error {
	r := c.Ranking
	if r.MinALSItems < 1 {
		return fmt.Errorf("RANKING_MIN_ALS_ITEMS must be at least 1, got: %d", r.MinALSItems)
	}
	if r.TrendingSize < 0 {
		return fmt.Errorf("RANKING_TRENDING_SIZE must not be negative, got: %d", r.TrendingSize)
	}
	if r.ALS.Iterations < 1 {
		return fmt.Errorf("ALS_ITERATIONS must be at least 1, got: %d", r.ALS.Iterations)
	}
	if r.ALS.Regularization <= 0 {
		return fmt.Errorf("ALS_REGULARIZATION must be positive, got: %v", r.ALS.Regularization)
	}
	if r.ALS.Alpha <= 0 {
		return fmt.Errorf("ALS_ALPHA must be positive, got: %v", r.ALS.Alpha)
	}
	if r.ALS.MinFactors < 1 || r.ALS.MaxFactors < r.ALS.MinFactors {
		return fmt.Errorf("ranking.als factor bounds invalid: min=%d max=%d", r.ALS.MinFactors, r.ALS.MaxFactors)
	}
	if r.ALS.NumWorkers < 0 {
		return fmt.Errorf("ALS_WORKERS must not be negative, got: %d", r.ALS.NumWorkers)
	}
	if r.ALS.Blend < 0 || r.ALS.Blend >= 1 {
		return fmt.Errorf("ALS_BLEND must be in [0, 1), got: %v", r.ALS.Blend)
	}
	if r.Regression.Lambda <= 0 {
		return fmt.Errorf("REGRESSION_LAMBDA must be positive, got: %v", r.Regression.Lambda)
	}
	if r.Regression.HoldoutFraction <= 0 || r.Regression.HoldoutFraction >= 1 {
		return fmt.Errorf("REGRESSION_HOLDOUT must be in (0, 1), got: %v", r.Regression.HoldoutFraction)
	}
	return c.validateColdStart()
}

// validateColdStart validates cold-start estimation settings
func (c *Config) validateColdStart() error {
	cs := c.Ranking.ColdStart
	if cs.Method != "ridge" && cs.Method != "knn" {
		return fmt.Errorf("COLD_START_METHOD must be one of: ridge, knn")
	}
	if cs.Discount < 0 || cs.Discount > 1 {
		return fmt.Errorf("COLD_START_DISCOUNT must be in [0, 1], got: %v", cs.Discount)
	}
	if cs.ObservedFloor < 0 || cs.ObservedFloor >= 1 {
		return fmt.Errorf("COLD_START_OBSERVED_FLOOR must be in [0, 1), got: %v", cs.ObservedFloor)
	}
	if cs.Method == "knn" && cs.Neighbors < 1 {
		return fmt.Errorf("COLD_START_NEIGHBORS must be at least 1, got: %d", cs.Neighbors)
	}
	return nil
}

// validateDiversity validates carousel selection settings
func (c *Config) validateDiversity() error {
	d := c.Diversity
	if d.Lambda < 0 || d.Lambda > 1 {
		return fmt.Errorf("DIVERSITY_LAMBDA must be in [0, 1], got: %v", d.Lambda)
	}
	if d.MaxItems < 1 {
		return fmt.Errorf("DIVERSITY_MAX_ITEMS must be at least 1, got: %d", d.MaxItems)
	}
	for t, n := range d.MinPerType {
		if n < 0 {
			return fmt.Errorf("diversity.min_per_type[%s] must not be negative, got: %d", t, n)
		}
	}
	if d.ILDLow < 0 || d.ILDHigh > 2 || d.ILDLow > d.ILDHigh {
		return fmt.Errorf("DIVERSITY_ILD_LOW/DIVERSITY_ILD_HIGH invalid band: [%v, %v]", d.ILDLow, d.ILDHigh)
	}
	if d.GlobalScoreWeight < 0 || d.GlobalScoreWeight > 1 {
		return fmt.Errorf("diversity.global_score_weight must be in [0, 1], got: %v", d.GlobalScoreWeight)
	}
	if d.Workers < 0 {
		return fmt.Errorf("DIVERSITY_WORKERS must not be negative, got: %d", d.Workers)
	}
	return nil
}

// validateConsolidation validates cluster merge settings
func (c *Config) validateConsolidation() error {
	cc := c.Consolidation
	if cc.MergeThreshold < -1 || cc.MergeThreshold > 1 {
		return fmt.Errorf("CONSOLIDATION_MERGE_THRESHOLD must be in [-1, 1], got: %v", cc.MergeThreshold)
	}
	if cc.SmallClusterMax < 0 {
		return fmt.Errorf("consolidation.small_cluster_max must not be negative, got: %d", cc.SmallClusterMax)
	}
	if cc.HomogeneityThreshold <= 0 || cc.HomogeneityThreshold > 1 {
		return fmt.Errorf("consolidation.homogeneity_threshold must be in (0, 1], got: %v", cc.HomogeneityThreshold)
	}
	return nil
}

// validateNotify validates the notification bus (only if enabled)
func (c *Config) validateNotify() error {
	if !c.Notify.Enabled {
		return nil
	}
	switch c.Notify.Backend {
	case "gochannel":
	case "nats":
		if c.Notify.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when NOTIFY_BACKEND=nats")
		}
		u, err := url.Parse(c.Notify.NATSURL)
		if err != nil || u.Scheme != "nats" && u.Scheme != "tls" {
			return fmt.Errorf("NATS_URL must use nats:// or tls:// scheme, got: %s", c.Notify.NATSURL)
		}
	default:
		return fmt.Errorf("NOTIFY_BACKEND must be one of: gochannel, nats")
	}
	if c.Notify.Topic == "" {
		return fmt.Errorf("NOTIFY_TOPIC is required when NOTIFY_ENABLED=true")
	}
	return nil
}

// validateServer validates HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got: %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got: %v", c.Server.Timeout)
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQS must be at least 1, got: %d", c.Server.RateLimitReqs)
	}
	if c.Server.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got: %v", c.Server.RateLimitWindow)
	}
	if c.Server.ReloadInterval < 0 {
		return fmt.Errorf("RELOAD_INTERVAL must be non-negative, got: %v", c.Server.ReloadInterval)
	}
	return nil
}

// validateSchedule validates serve-mode scheduling
func (c *Config) validateSchedule() error {
	if c.Schedule.Interval < time.Minute {
		return fmt.Errorf("SCHEDULE_INTERVAL must be at least 1m, got: %v", c.Schedule.Interval)
	}
	if c.Schedule.RunTimeout <= 0 {
		return fmt.Errorf("SCHEDULE_RUN_TIMEOUT must be positive, got: %v", c.Schedule.RunTimeout)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateHTTPURL checks that rawURL is an absolute http(s) URL.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	return nil
}
