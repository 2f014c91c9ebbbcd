// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/curator/config.yaml",
	"/etc/curator/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied. These values
// are layered first and overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Dir: "data",
		},
		Events: EventsConfig{
			Source:        "json",
			Path:          "data/events",
			Timeout:       2 * time.Minute,
			RetryAttempts: 3,
			RetryDelay:    2 * time.Second,
			RateLimit:     1.0,
		},
		Embeddings: EmbeddingsConfig{
			Dir:      "data/embeddings",
			CacheDir: "",
			OpenAI: OpenAIConfig{
				Enabled:           false,
				BaseURL:           "https://api.openai.com/v1",
				Model:             "text-embedding-3-small",
				ChatModel:         "gpt-4o-mini",
				Dimensions:        0, // provider default
				RequestsPerSecond: 2,
				BatchSize:         64,
			},
		},
		Clusters: ClustersConfig{
			Path:    "data/clusters.json",
			Relabel: false,
		},
		Ranking: RankingConfig{
			Seed:         42,
			MinALSItems:  5,
			TrendingSize: 12,
			Weights: SignalWeightsConfig{
				Click:          5.0,
				Impression:     1.0,
				DwellPerMinute: 1.0,
				ViewableSecond: 0.1,
				Scroll50:       0.5,
				Scroll75:       1.0,
				Scroll90:       2.0,
				SearchClick:    3.0,
				DeepSession:    1.5,
				RageClick:      -2.0,
				QuickBounce:    -1.0,
				CoView:         0.1,
				CoClick:        0.3,
			},
			ALS: ALSConfig{
				Iterations:     15,
				Regularization: 0.1,
				Alpha:          1.0,
				MinFactors:     5,
				MaxFactors:     32,
				NumWorkers:     0, // 0 = runtime.NumCPU()
				Blend:          0.5,
			},
			Regression: RegressionConfig{
				Lambda:          1.0,
				HoldoutFraction: 0.2,
			},
			ColdStart: ColdStartConfig{
				Method:        "ridge",
				Discount:      0.3,
				ObservedFloor: 0,
				Neighbors:     5,
			},
		},
		Diversity: DiversityConfig{
			Lambda:   0.6,
			MaxItems: 15,
			MinPerType: map[string]int{
				"paper":    2,
				"talk":     1,
				"resource": 1,
				"package":  1,
				"book":     1,
			},
			ILDLow:            0.3,
			ILDHigh:           0.7,
			GlobalScoreWeight: 0,
			Workers:           0,
		},
		Consolidation: ConsolidationConfig{
			MergeThreshold:       0.75,
			SmallClusterMax:      2,
			HomogeneityThreshold: 0.8,
		},
		Output: OutputConfig{
			Dir: "out",
		},
		Models: ModelsConfig{
			Dir:          "",
			KeepVersions: 3,
		},
		Notify: NotifyConfig{
			Enabled: false,
			Backend: "gochannel",
			NATSURL: "nats://127.0.0.1:4222",
			Topic:   "curator.run.completed",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8086,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Schedule: ScheduleConfig{
			Interval:     24 * time.Hour,
			RunOnStartup: true,
			RunTimeout:   30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config file (optional)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// EVENTS_SOURCE -> events.source, DIVERSITY_LAMBDA -> diversity.lambda
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when set from env.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated env strings to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	"catalog_dir": "catalog.dir",

	"events_source":         "events.source",
	"events_path":           "events.path",
	"events_timeout":        "events.timeout",
	"events_retry_attempts": "events.retry_attempts",
	"events_retry_delay":    "events.retry_delay",
	"events_rate_limit":     "events.rate_limit",

	"embeddings_dir":         "embeddings.dir",
	"embeddings_cache_dir":   "embeddings.cache_dir",
	"openai_enabled":         "embeddings.openai.enabled",
	"openai_api_key":         "embeddings.openai.api_key",
	"openai_base_url":        "embeddings.openai.base_url",
	"openai_embedding_model": "embeddings.openai.model",
	"openai_chat_model":      "embeddings.openai.chat_model",
	"openai_dimensions":      "embeddings.openai.dimensions",
	"openai_rps":             "embeddings.openai.requests_per_second",

	"clusters_path":    "clusters.path",
	"clusters_relabel": "clusters.relabel",

	"ranking_seed":              "ranking.seed",
	"ranking_min_als_items":     "ranking.min_als_items",
	"ranking_trending_size":     "ranking.trending_size",
	"als_iterations":            "ranking.als.iterations",
	"als_regularization":        "ranking.als.regularization",
	"als_alpha":                 "ranking.als.alpha",
	"als_workers":               "ranking.als.num_workers",
	"als_blend":                 "ranking.als.blend",
	"regression_lambda":         "ranking.regression.lambda",
	"regression_holdout":        "ranking.regression.holdout_fraction",
	"cold_start_method":         "ranking.cold_start.method",
	"cold_start_discount":       "ranking.cold_start.discount",
	"cold_start_observed_floor": "ranking.cold_start.observed_floor",
	"cold_start_neighbors":      "ranking.cold_start.neighbors",

	"diversity_lambda":    "diversity.lambda",
	"diversity_max_items": "diversity.max_items",
	"diversity_ild_low":   "diversity.ild_low",
	"diversity_ild_high":  "diversity.ild_high",
	"diversity_workers":   "diversity.workers",

	"consolidation_merge_threshold": "consolidation.merge_threshold",

	"output_dir":       "output.dir",
	"metrics_textfile": "output.metrics_textfile",
	"models_dir":       "models.dir",
	"models_keep":      "models.keep_versions",

	"notify_enabled": "notify.enabled",
	"notify_backend": "notify.backend",
	"nats_url":       "notify.nats_url",
	"notify_topic":   "notify.topic",

	"http_host":         "server.host",
	"http_port":         "server.port",
	"http_timeout":      "server.timeout",
	"cors_origins":      "server.cors_origins",
	"rate_limit_reqs":   "server.rate_limit_reqs",
	"rate_limit_window": "server.rate_limit_window",
	"reload_interval":   "server.reload_interval",

	"schedule_interval":       "schedule.interval",
	"schedule_run_on_startup": "schedule.run_on_startup",
	"schedule_run_timeout":    "schedule.run_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are ignored.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
