// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package cluster

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/curator/internal/resilience"
)

// ErrEmptyLabel is returned when the model produces no usable label.
var ErrEmptyLabel = errors.New("empty label")

// LabelRequest describes a cluster to name.
type LabelRequest struct {
	Career        bool
	Names         []string
	Descriptions  []string
	TopTags       []string
	TopCategories []string
}

// Labeler proposes a short label for a cluster.
type Labeler interface {
	Label(ctx context.Context, req *LabelRequest) (string, error)
}

// LLMConfig configures OpenAILabeler.
type LLMConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	RequestsPerSecond float64
	Attempts          int
	RetryDelay        time.Duration
	HTTPClient        *http.Client
}

// OpenAILabeler asks a chat completion model for a cluster label.
type OpenAILabeler struct {
	client     *openai.Client
	model      string
	attempts   int
	retryDelay time.Duration
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[string]
}

// NewOpenAILabeler creates a labeler from cfg.
func NewOpenAILabeler(cfg *LLMConfig) *OpenAILabeler {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	l := &OpenAILabeler{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
		cb:         resilience.NewBreaker[string]("openai-labels", resilience.BreakerSettings{}),
	}
	if l.model == "" {
		l.model = openai.GPT4oMini
	}
	if l.attempts <= 0 {
		l.attempts = 2
	}
	if l.retryDelay <= 0 {
		l.retryDelay = 500 * time.Millisecond
	}
	if cfg.RequestsPerSecond > 0 {
		l.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return l
}

// Label implements Labeler.
func (l *OpenAILabeler) Label(ctx context.Context, req *LabelRequest) (string, error) {
	var label string
	err := resilience.Retry(ctx, resilience.RetryPolicy{
		Attempts: l.attempts,
		Delay:    l.retryDelay,
		Limiter:  l.limiter,
	}, func(ctx context.Context) error {
		out, err := resilience.Execute(l.cb, func() (string, error) {
			return l.complete(ctx, req)
		})
		if resilience.IsRejected(err) || errors.Is(err, ErrEmptyLabel) {
			return resilience.Permanent(err)
		}
		label = out
		return err
	})
	if err != nil {
		return "", fmt.Errorf("label cluster: %w", err)
	}
	return label, nil
}

func (l *OpenAILabeler) complete(ctx context.Context, req *LabelRequest) (string, error) {
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: Prompt(req)},
		},
		MaxTokens:   20,
		Temperature: 0.3,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500 &&
			apiErr.HTTPStatusCode != http.StatusTooManyRequests {
			return "", resilience.Permanent(fmt.Errorf("chat API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyLabel
	}
	label := CleanLabel(resp.Choices[0].Message.Content)
	if label == "" {
		return "", ErrEmptyLabel
	}
	return label, nil
}

// CleanLabel trims whitespace, quotes and a trailing period, keeping the
// first line only.
func CleanLabel(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), "Label:")
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	return strings.TrimSpace(strings.TrimSuffix(s, "."))
}

// Prompt renders the labeling instruction for req.
func Prompt(req *LabelRequest) string {
	var b strings.Builder
	if req.Career {
		b.WriteString("Name this group of career listings with a short industry category (3-5 words).\n\n")
		fmt.Fprintf(&b, "Listings: %s\n", strings.Join(head(req.Names, 6), ", "))
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(head(req.TopTags, 5), ", "))
		b.WriteString("Use the form \"<Industry> Careers\" and name a specific industry vertical, ")
		b.WriteString("for example \"Fintech Careers\" or \"Gaming Industry Careers\".\n\nLabel:")
		return b.String()
	}

	b.WriteString("Name this cluster of technical content with a specific label (3-5 words).\n\n")
	fmt.Fprintf(&b, "Items: %s\n", strings.Join(head(req.Names, 6), ", "))
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(head(req.TopTags, 5), ", "))
	fmt.Fprintf(&b, "Categories: %s\n", strings.Join(head(req.TopCategories, 2), ", "))
	fmt.Fprintf(&b, "Descriptions: %s\n\n", strings.Join(head(req.Descriptions, 4), "; "))
	fmt.Fprintf(&b, "Do not use the words: %s.\n", strings.Join(genericTerms[:7], ", "))
	b.WriteString("Name the concrete method and where it applies, for example ")
	b.WriteString("\"Thompson Sampling Bandits\" or \"Synthetic Control Policy Evaluation\".\n\nLabel:")
	return b.String()
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
