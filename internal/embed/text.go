// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package embed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/tomtom215/curator/internal/catalog"
)

// Text builds the string embedded for an item: name first, then the
// descriptive fields and keyword lists.
func Text(it *catalog.Item) string {
	parts := make([]string, 0, 6)
	add := func(prefix, s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, prefix+s)
		}
	}
	add("", it.Name)
	add("", it.Description)
	add("", it.Summary)
	add("Category: ", it.Category)
	add("Topics: ", strings.Join(it.TopicTags, ", "))
	add("Tags: ", strings.Join(it.Tags, ", "))
	return strings.Join(parts, ". ")
}

// CacheKey identifies a (model, text) pair.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
