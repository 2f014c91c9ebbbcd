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
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/curator/internal/resilience"
)

func TestIsCareerLabel(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"Fintech Job Portals", true},
		{"Summer Internships", true},
		{"Hiring at Startups", true},
		{"Causal Forests", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsCareerLabel(tt.label); got != tt.want {
			t.Errorf("IsCareerLabel(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestIndustryOf(t *testing.T) {
	tests := []struct {
		label string
		tags  []string
		want  string
	}{
		{"Bank Careers", nil, "Finance & Fintech Careers"},
		{"Careers", []string{"Grocery", "CPG"}, "E-Commerce & Retail Careers"},
		{"Pharma Job Boards", nil, "Healthcare & Pharma Careers"},
		{"Careers", []string{"research scientist"}, "AI & ML Research Careers"},
		{"Portals", []string{"quirky"}, OtherIndustry},
		// The first table entry wins when several match.
		{"Cloud Gaming Careers", nil, "Tech Industry Careers"},
	}
	for _, tt := range tests {
		if got := IndustryOf(tt.label, tt.tags); got != tt.want {
			t.Errorf("IndustryOf(%q, %v) = %q, want %q", tt.label, tt.tags, got, tt.want)
		}
	}
	if names := Industries(); names[len(names)-1] != OtherIndustry || len(names) != 10 {
		t.Errorf("Industries() = %v", names)
	}
}

func TestIsGenericLabel(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"Analysis Techniques", true},
		{"Tools and Resources", true},
		{"Analysis of Variance", false},
		{"Thompson Sampling Bandits", false},
	}
	for _, tt := range tests {
		if got := IsGenericLabel(tt.label); got != tt.want {
			t.Errorf("IsGenericLabel(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestFallbackLabel(t *testing.T) {
	tests := []struct {
		tags []string
		want string
	}{
		{[]string{"synthetic-control", "did", "rdd"}, "Synthetic Control & Did"},
		{[]string{"  ", "uplift modeling"}, "Uplift Modeling"},
		{[]string{"A/B testing", "CUPED"}, "A/B Testing & CUPED"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := FallbackLabel(tt.tags); got != tt.want {
			t.Errorf("FallbackLabel(%v) = %q, want %q", tt.tags, got, tt.want)
		}
	}
}

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"Thompson Sampling Bandits."`, "Thompson Sampling Bandits"},
		{"Label: Causal Forest Inference\nExtra text", "Causal Forest Inference"},
		{"  'Fintech Careers'  ", "Fintech Careers"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanLabel(tt.in); got != tt.want {
			t.Errorf("CleanLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrompt(t *testing.T) {
	topic := Prompt(&LabelRequest{
		Names:         []string{"a", "b", "c", "d", "e", "f", "g"},
		TopTags:       []string{"uplift"},
		TopCategories: []string{"Causal Inference"},
	})
	if !strings.Contains(topic, "Items: a, b, c, d, e, f\n") {
		t.Errorf("topic prompt should list six names:\n%s", topic)
	}
	if !strings.HasSuffix(topic, "Label:") {
		t.Error("prompt should end with the label cue")
	}

	career := Prompt(&LabelRequest{Career: true, Names: []string{"x"}})
	if !strings.Contains(career, "Careers") || strings.Contains(career, "Categories:") {
		t.Errorf("career prompt:\n%s", career)
	}
}

// chatServer answers chat completions with content, or fails with status.
func chatServer(t *testing.T, status int, content string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["model"] != "gpt-4o-mini" {
			t.Errorf("model = %v", req["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"error":{"message":"bad request","type":"invalid_request_error"}}`)
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAILabeler(t *testing.T) {
	var hits atomic.Int32
	srv := chatServer(t, http.StatusOK, `"Synthetic Control Methods."`, &hits)
	defer srv.Close()

	l := NewOpenAILabeler(&LLMConfig{APIKey: "k", BaseURL: srv.URL + "/v1"})
	got, err := l.Label(context.Background(), &LabelRequest{Names: []string{"a"}})
	if err != nil {
		t.Fatalf("Label() error = %v", err)
	}
	if got != "Synthetic Control Methods" {
		t.Errorf("Label() = %q", got)
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}

func TestOpenAILabelerEmptyAndClientError(t *testing.T) {
	var hits atomic.Int32
	empty := chatServer(t, http.StatusOK, "  ", &hits)
	defer empty.Close()

	l := NewOpenAILabeler(&LLMConfig{APIKey: "k", BaseURL: empty.URL + "/v1", Attempts: 3})
	if _, err := l.Label(context.Background(), &LabelRequest{}); !errors.Is(err, ErrEmptyLabel) {
		t.Errorf("Label() error = %v, want ErrEmptyLabel", err)
	}
	if hits.Load() != 1 {
		t.Errorf("empty label retried: hits = %d", hits.Load())
	}

	hits.Store(0)
	bad := chatServer(t, http.StatusBadRequest, "", &hits)
	defer bad.Close()
	l = NewOpenAILabeler(&LLMConfig{APIKey: "k", BaseURL: bad.URL + "/v1", Attempts: 3})
	if _, err := l.Label(context.Background(), &LabelRequest{}); !errors.Is(err, resilience.ErrPermanent) {
		t.Errorf("Label() error = %v, want permanent", err)
	}
	if hits.Load() != 1 {
		t.Errorf("client error retried: hits = %d", hits.Load())
	}
}
