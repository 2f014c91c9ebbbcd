// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package embed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/curator/internal/metrics"
	"github.com/tomtom215/curator/internal/resilience"
)

// ErrProvider wraps every failure reported by the embedding API.
var ErrProvider = errors.New("embedding provider error")

// Embedder turns texts into vectors. Result i belongs to texts[i].
type Embedder interface {
	Model() string
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// OpenAIConfig holds the embedding provider settings.
type OpenAIConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	Dimensions        int
	RequestsPerSecond float64
	BatchSize         int
	Attempts          int
	RetryDelay        time.Duration
	HTTPClient        *http.Client
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint behind a
// rate limiter, retries and a circuit breaker.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	batchSize  int
	attempts   int
	retryDelay time.Duration
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[][]float64]
}

// NewOpenAIEmbedder creates an embedder from cfg.
func NewOpenAIEmbedder(cfg *OpenAIConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	e := &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		cb:         resilience.NewBreaker[[][]float64]("openai-embeddings", resilience.BreakerSettings{}),
	}
	if e.batchSize <= 0 {
		e.batchSize = 64
	}
	if e.attempts <= 0 {
		e.attempts = 3
	}
	if e.retryDelay <= 0 {
		e.retryDelay = time.Second
	}
	if cfg.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return e
}

// Model implements Embedder.
func (e *OpenAIEmbedder) Model() string {
	return string(e.model)
}

// Embed implements Embedder. Inputs are sent in batches of BatchSize.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))

		var batch [][]float64
		err := resilience.Retry(ctx, resilience.RetryPolicy{
			Attempts: e.attempts,
			Delay:    e.retryDelay,
			Limiter:  e.limiter,
		}, func(ctx context.Context) error {
			vecs, err := resilience.Execute(e.cb, func() ([][]float64, error) {
				return e.embedBatch(ctx, texts[start:end])
			})
			metrics.RecordEmbeddingRequest(err)
			if resilience.IsRejected(err) {
				return resilience.Permanent(err)
			}
			batch = vecs
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch starting at %d: %w", start, err)
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, parseAPIError(err)
	}

	out := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("out-of-range index %d for batch of %d: %w", d.Index, len(texts), ErrProvider)
		}
		vec := make([]float64, len(d.Embedding))
		for i, x := range d.Embedding {
			vec[i] = float64(x)
		}
		out[d.Index] = vec
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for index %d: %w", i, ErrProvider)
		}
	}
	return out, nil
}

// parseAPIError extracts a readable message from the API error. Client
// errors other than rate limiting are not retried.
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		wrapped := fmt.Errorf("embedding API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, ErrProvider)
		return classify(apiErr.HTTPStatusCode, wrapped)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		wrapped := fmt.Errorf("embedding API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), ErrProvider)
		return classify(reqErr.HTTPStatusCode, wrapped)
	}

	return fmt.Errorf("embedding request failed: %w: %w", err, ErrProvider)
}

func classify(status int, err error) error {
	if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
		return resilience.Permanent(err)
	}
	return err
}
