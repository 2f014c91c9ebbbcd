// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package catalog

import (
	"hash/fnv"
	"strconv"
	"strings"
)

const maxSlugLen = 100

// NormalizeName is the identity key used for deduplication and for joining
// name-keyed engagement rows.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Slugify lower-cases s and collapses every run of non [a-z0-9] characters
// into a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

// MakeID builds the stable item ID "type-slug(name)". Names without any
// ASCII alphanumerics get a hash-based slug.
func MakeID(t ContentType, name string) string {
	slug := Slugify(name)
	if slug == "" {
		h := fnv.New32a()
		_, _ = h.Write([]byte(NormalizeName(name)))
		slug = "x" + strconv.FormatUint(uint64(h.Sum32()), 36)
	}
	return string(t) + "-" + slug
}

// cleanList trims entries and drops empties, preserving order.
func cleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
