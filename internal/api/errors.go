// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package api

import "errors"

// ErrNoSnapshot is returned when no artifacts have been loaded yet.
var ErrNoSnapshot = errors.New("no ranking artifacts loaded")
