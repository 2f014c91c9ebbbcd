// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package engagement

// Table names of the event store. JSON exports use the same names with a
// .json suffix.
const (
	TableClicks       = "content_clicks"
	TableImpressions  = "content_impressions"
	TableDwell        = "content_dwell"
	TableScroll       = "scroll_milestones"
	TableSearchClicks = "search_clicks"
	TableSessions     = "session_engagement"
	TableFrustration  = "frustration_events"
	TableCoOccurrence = "co_occurrence"
)

// Frustration event types.
const (
	EventRageClick   = "rage_click"
	EventQuickBounce = "quick_bounce"
)

// DeepTier is the session engagement tier that earns the deep-session signal.
const DeepTier = "deep"

// ClickRow is an aggregated click count keyed by item name.
type ClickRow struct {
	Name    string `json:"name"`
	Section string `json:"section,omitempty"`
	Count   int64  `json:"click_count"`
}

// ImpressionRow is an aggregated impression count keyed by item name.
type ImpressionRow struct {
	Name    string `json:"name"`
	Section string `json:"section,omitempty"`
	Count   int64  `json:"impression_count"`
}

// DwellRow is the dwell and viewable time of one item in one session.
type DwellRow struct {
	Name            string  `json:"name"`
	Section         string  `json:"section,omitempty"`
	SessionID       string  `json:"session_id"`
	DwellMs         int64   `json:"dwell_ms"`
	ViewableSeconds float64 `json:"viewable_seconds,omitempty"`
}

// ScrollRow counts page views that reached a scroll-depth milestone.
type ScrollRow struct {
	Path      string `json:"path"`
	Milestone int    `json:"milestone"`
	Count     int64  `json:"count"`
}

// SearchResult is one clicked search result.
type SearchResult struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// SearchClickRow attributes result clicks to a query session.
type SearchClickRow struct {
	QuerySession string         `json:"query_session"`
	Results      []SearchResult `json:"results"`
}

// SessionRow is one browsing session with its engagement tier and the
// ordered list of item keys it visited.
type SessionRow struct {
	SessionID string   `json:"session_id"`
	Tier      string   `json:"tier"`
	Sequence  []string `json:"sequence"`
}

// FrustrationRow counts rage clicks or quick bounces on a page.
type FrustrationRow struct {
	Path      string `json:"path"`
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// CoOccurrenceRow counts sessions in which two items were viewed or clicked
// together. Both items are credited.
type CoOccurrenceRow struct {
	ItemA   string `json:"item_a"`
	ItemB   string `json:"item_b"`
	CoView  int64  `json:"coview_count"`
	CoClick int64  `json:"coclick_count"`
}

// Rows is everything a Source returns for one ranking run.
type Rows struct {
	Clicks       []ClickRow        `json:"clicks"`
	Impressions  []ImpressionRow   `json:"impressions"`
	Dwell        []DwellRow        `json:"dwell"`
	Scroll       []ScrollRow       `json:"scroll"`
	SearchClicks []SearchClickRow  `json:"search_clicks"`
	Sessions     []SessionRow      `json:"sessions"`
	Frustration  []FrustrationRow  `json:"frustration"`
	CoOccurrence []CoOccurrenceRow `json:"co_occurrence"`
}

// Counts returns the number of rows per kind.
func (r *Rows) Counts() map[Kind]int {
	return map[Kind]int{
		KindClick:        len(r.Clicks),
		KindImpression:   len(r.Impressions),
		KindDwell:        len(r.Dwell),
		KindScroll:       len(r.Scroll),
		KindSearchClick:  len(r.SearchClicks),
		KindSession:      len(r.Sessions),
		KindFrustration:  len(r.Frustration),
		KindCoOccurrence: len(r.CoOccurrence),
	}
}

// Empty reports whether no rows were loaded at all.
func (r *Rows) Empty() bool {
	for _, n := range r.Counts() {
		if n > 0 {
			return false
		}
	}
	return true
}
