// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package cluster

import (
	"strings"
)

// OtherIndustry collects career clusters that match no industry keyword.
const OtherIndustry = "Other Industry Careers"

// industry is one career super-cluster and the keywords that route to it.
type industry struct {
	name     string
	keywords []string
}

// industries is matched in order; the first keyword hit wins.
var industries = []industry{
	{"Tech Industry Careers", []string{
		"tech", "faang", "google", "meta", "amazon", "microsoft", "apple",
		"startup", "software", "saas", "cloud",
	}},
	{"Finance & Fintech Careers", []string{
		"fintech", "finance", "bank", "trading", "quant", "crypto", "blockchain",
		"wealth", "investment", "lending", "neobank", "payment",
	}},
	{"E-Commerce & Retail Careers", []string{
		"ecommerce", "e-commerce", "retail", "cpg", "grocery", "apparel",
		"fashion", "beauty", "consumer",
	}},
	{"Healthcare & Pharma Careers", []string{
		"health", "pharma", "biotech", "medical", "heor", "biostatistics",
	}},
	{"Automotive & Mobility Careers", []string{
		"automotive", "auto", "vehicle", "mobility", "rideshare", "ride-hail",
		"fleet", "delivery", "logistics",
	}},
	{"Gaming & Entertainment Careers", []string{
		"gaming", "game", "streaming", "entertainment", "media", "music",
	}},
	{"Travel & Hospitality Careers", []string{
		"travel", "hotel", "airline", "hospitality", "booking",
	}},
	{"Data & Analytics Careers", []string{
		"data science", "analytics", "experimentation", "product analytics",
	}},
	{"AI & ML Research Careers", []string{
		"ai research", "ml research", "research scientist",
	}},
}

// Industries returns the super-cluster names in match order, followed by
// OtherIndustry.
func Industries() []string {
	names := make([]string, 0, len(industries)+1)
	for _, ind := range industries {
		names = append(names, ind.name)
	}
	return append(names, OtherIndustry)
}

var careerTerms = []string{"career", "portal", "job", "hiring", "opportunities", "internship"}

var genericTerms = []string{
	"insights", "techniques", "analysis", "overview", "framework",
	"methods", "approaches", "strategies", "resources", "tools",
}

var technicalTerms = []string{
	"causal", "inference", "ml", "algorithm", "model", "bayesian",
	"regression", "neural", "optimization", "statistical",
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// IsCareerLabel reports whether a label names a career listing cluster.
func IsCareerLabel(label string) bool {
	return containsAny(strings.ToLower(label), careerTerms)
}

// IndustryOf routes a career cluster to an industry by its label and tags.
func IndustryOf(label string, tags []string) string {
	text := strings.ToLower(label + " " + strings.Join(tags, " "))
	for _, ind := range industries {
		if containsAny(text, ind.keywords) {
			return ind.name
		}
	}
	return OtherIndustry
}

// IsGenericLabel reports whether a label uses two or more generic terms.
func IsGenericLabel(label string) bool {
	lower := strings.ToLower(label)
	n := 0
	for _, t := range genericTerms {
		if strings.Contains(lower, t) {
			n++
		}
	}
	return n >= 2
}

// IsTechnicalLabel reports whether a label names a technical topic.
func IsTechnicalLabel(label string) bool {
	return containsAny(strings.ToLower(label), technicalTerms)
}

// FallbackLabel builds a label from the first top tags, e.g.
// "Uplift Modeling & Causal Forests". It returns "" without tags.
func FallbackLabel(tags []string) string {
	var parts []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		parts = append(parts, titleCase(t))
		if len(parts) == 2 {
			break
		}
	}
	return strings.Join(parts, " & ")
}

func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '-' || r == '_' })
	for i, w := range words {
		if len(w) <= 3 && strings.ToUpper(w) == w {
			continue
		}
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
