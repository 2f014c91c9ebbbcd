// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML (config.yaml or CONFIG_PATH)
//  3. Environment Variables: override any mapped setting
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Catalog       CatalogConfig       `koanf:"catalog"`
	Events        EventsConfig        `koanf:"events"`
	Embeddings    EmbeddingsConfig    `koanf:"embeddings"`
	Clusters      ClustersConfig      `koanf:"clusters"`
	Ranking       RankingConfig       `koanf:"ranking"`
	Diversity     DiversityConfig     `koanf:"diversity"`
	Consolidation ConsolidationConfig `koanf:"consolidation"`
	Output        OutputConfig        `koanf:"output"`
	Models        ModelsConfig        `koanf:"models"`
	Notify        NotifyConfig        `koanf:"notify"`
	Server        ServerConfig        `koanf:"server"`
	Schedule      ScheduleConfig      `koanf:"schedule"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// CatalogConfig locates the content catalog.
//
// Environment Variables:
//   - CATALOG_DIR: directory of per-type JSON arrays (default: data)
type CatalogConfig struct {
	Dir string `koanf:"dir"`
}

// EventsConfig selects the engagement event source.
//
// Environment Variables:
//   - EVENTS_SOURCE: json, duckdb or sqlite (default: json)
//   - EVENTS_PATH: directory (json) or database file (duckdb, sqlite)
//   - EVENTS_TIMEOUT, EVENTS_RETRY_ATTEMPTS, EVENTS_RETRY_DELAY, EVENTS_RATE_LIMIT
type EventsConfig struct {
	// Source is the backend: json, duckdb, sqlite.
	Source string `koanf:"source"`

	// Path is a directory for json, a database file for duckdb and sqlite.
	Path string `koanf:"path"`

	// Timeout bounds a single load attempt.
	Timeout time.Duration `koanf:"timeout"`

	// RetryAttempts is the number of load attempts before giving up.
	RetryAttempts int `koanf:"retry_attempts"`

	// RetryDelay is the initial backoff between attempts (doubles each retry).
	RetryDelay time.Duration `koanf:"retry_delay"`

	// RateLimit caps load attempts per second.
	RateLimit float64 `koanf:"rate_limit"`
}

// EmbeddingsConfig locates precomputed item embeddings and the optional
// OpenAI-compatible provider used to fill missing vectors.
type EmbeddingsConfig struct {
	// Dir holds search-metadata.json and search-embeddings.bin, or embeddings.json.
	Dir string `koanf:"dir"`

	// CacheDir is the Badger directory for fetched vectors. Empty disables the cache.
	CacheDir string `koanf:"cache_dir"`

	OpenAI OpenAIConfig `koanf:"openai"`
}

// OpenAIConfig configures an OpenAI-compatible API.
//
// Environment Variables:
//   - OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_EMBEDDING_MODEL, OPENAI_ENABLED
type OpenAIConfig struct {
	Enabled           bool    `koanf:"enabled"`
	APIKey            string  `koanf:"api_key"`
	BaseURL           string  `koanf:"base_url"`
	Model             string  `koanf:"model"`
	ChatModel         string  `koanf:"chat_model"`
	Dimensions        int     `koanf:"dimensions"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BatchSize         int     `koanf:"batch_size"`
}

// ClustersConfig locates upstream cluster membership.
type ClustersConfig struct {
	// Path is the clusters.json file. Empty disables carousel selection.
	Path string `koanf:"path"`

	// Relabel enables LLM relabeling of generic cluster labels (uses embeddings.openai credentials).
	Relabel bool `koanf:"relabel"`
}

// RankingConfig holds the hybrid ranking parameters.
type RankingConfig struct {
	// Seed fixes model initialization and the evaluation split.
	Seed int64 `koanf:"seed"`

	// MinALSItems is the minimum number of interacted items before ALS runs.
	// Default: 5
	MinALSItems int `koanf:"min_als_items"`

	// TrendingSize is the number of non-cold items in the trending artifact.
	TrendingSize int `koanf:"trending_size"`

	Weights    SignalWeightsConfig `koanf:"weights"`
	ALS        ALSConfig           `koanf:"als"`
	Regression RegressionConfig    `koanf:"regression"`
	ColdStart  ColdStartConfig     `koanf:"cold_start"`
}

// SignalWeightsConfig is the engagement signal weight table.
type SignalWeightsConfig struct {
	Click          float64 `koanf:"click"`
	Impression     float64 `koanf:"impression"`
	DwellPerMinute float64 `koanf:"dwell_per_minute"`
	ViewableSecond float64 `koanf:"viewable_second"`
	Scroll50       float64 `koanf:"scroll_50"`
	Scroll75       float64 `koanf:"scroll_75"`
	Scroll90       float64 `koanf:"scroll_90"`
	SearchClick    float64 `koanf:"search_click"`
	DeepSession    float64 `koanf:"deep_session"`
	RageClick      float64 `koanf:"rage_click"`
	QuickBounce    float64 `koanf:"quick_bounce"`
	CoView         float64 `koanf:"co_view"`
	CoClick        float64 `koanf:"co_click"`
}

// ALSConfig configures the implicit ALS model.
type ALSConfig struct {
	Iterations     int     `koanf:"iterations"`
	Regularization float64 `koanf:"regularization"`
	Alpha          float64 `koanf:"alpha"`
	MinFactors     int     `koanf:"min_factors"`
	MaxFactors     int     `koanf:"max_factors"`
	NumWorkers     int     `koanf:"num_workers"`

	// Blend scales the normalized ALS score added to the weighted
	// engagement score, as a fraction of one click. Must be below 1.
	// Default: 0.5
	Blend float64 `koanf:"blend"`
}

// RegressionConfig configures the cold-start ridge regression.
type RegressionConfig struct {
	Lambda          float64 `koanf:"lambda"`
	HoldoutFraction float64 `koanf:"holdout_fraction"`
}

// ColdStartConfig controls how cold items are estimated and discounted.
type ColdStartConfig struct {
	// Method is ridge or knn.
	Method string `koanf:"method"`

	// Discount multiplies normalized cold predictions.
	// Default: 0.3
	Discount float64 `koanf:"discount"`

	// ObservedFloor lifts normalized observed scores into [floor, 1]. The
	// ranking engine raises it to at least Discount + 0.05.
	ObservedFloor float64 `koanf:"observed_floor"`

	// Neighbors is k for the knn method.
	Neighbors int `koanf:"neighbors"`
}

// DiversityConfig configures carousel selection.
type DiversityConfig struct {
	Lambda            float64        `koanf:"lambda"`
	MaxItems          int            `koanf:"max_items"`
	MinPerType        map[string]int `koanf:"min_per_type"`
	ILDLow            float64        `koanf:"ild_low"`
	ILDHigh           float64        `koanf:"ild_high"`
	GlobalScoreWeight float64        `koanf:"global_score_weight"`
	Workers           int            `koanf:"workers"`
}

// ConsolidationConfig configures cluster merging.
type ConsolidationConfig struct {
	MergeThreshold       float64 `koanf:"merge_threshold"`
	SmallClusterMax      int     `koanf:"small_cluster_max"`
	HomogeneityThreshold float64 `koanf:"homogeneity_threshold"`
}

// OutputConfig controls artifact output.
type OutputConfig struct {
	Dir string `koanf:"dir"`

	// MetricsTextfile, when set, receives a Prometheus textfile after each batch run.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// ModelsConfig controls persisted model state.
type ModelsConfig struct {
	// Dir is the model store directory. Empty disables persistence.
	Dir          string `koanf:"dir"`
	KeepVersions int    `koanf:"keep_versions"`
}

// NotifyConfig configures run-completed notifications.
//
// Environment Variables:
//   - NOTIFY_BACKEND: gochannel or nats (default: gochannel)
//   - NATS_URL: NATS server URL when the backend is nats
type NotifyConfig struct {
	Enabled bool   `koanf:"enabled"`
	Backend string `koanf:"backend"`
	NATSURL string `koanf:"nats_url"`
	Topic   string `koanf:"topic"`
}

// ServerConfig configures the read-only HTTP API (serve mode).
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// ReloadInterval rereads the artifact directory on a timer. Zero reloads
	// only after runs of this process or on notifications.
	ReloadInterval time.Duration `koanf:"reload_interval"`
}

// ScheduleConfig controls pipeline scheduling in serve mode.
type ScheduleConfig struct {
	Interval     time.Duration `koanf:"interval"`
	RunOnStartup bool          `koanf:"run_on_startup"`
	RunTimeout   time.Duration `koanf:"run_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, the optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
