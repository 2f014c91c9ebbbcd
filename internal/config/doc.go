// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

/*
Package config provides centralized configuration management for Curator.

Configuration is layered with Koanf v2:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/curator/config.yaml)
 3. Environment variables (see envMappings)

The result is validated once and treated as read-only afterwards.

# Example config.yaml

	catalog:
	  dir: data
	events:
	  source: duckdb
	  path: data/events.duckdb
	ranking:
	  cold_start:
	    method: ridge
	    discount: 0.3
	diversity:
	  lambda: 0.6
	  max_items: 15
	  min_per_type:
	    paper: 2
	    talk: 1

# Environment Variables

Commonly overridden:
  - CATALOG_DIR, EVENTS_SOURCE, EVENTS_PATH, EMBEDDINGS_DIR, CLUSTERS_PATH
  - OUTPUT_DIR, MODELS_DIR
  - COLD_START_METHOD, COLD_START_DISCOUNT, DIVERSITY_LAMBDA
  - OPENAI_ENABLED, OPENAI_API_KEY, OPENAI_BASE_URL
  - NOTIFY_ENABLED, NOTIFY_BACKEND, NATS_URL
  - HTTP_HOST, HTTP_PORT, CORS_ORIGINS (comma-separated)
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Validation errors name the environment variable to fix, for example
"DIVERSITY_LAMBDA must be in [0, 1], got: 1.5".
*/
package config
