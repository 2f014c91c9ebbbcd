// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package engagement

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/curator/internal/catalog"
	"github.com/tomtom215/curator/internal/metrics"
)

// Coverage summarizes how much of the catalog has engagement data.
type Coverage struct {
	TotalItems           int     `json:"total_items"`
	ItemsWithClicks      int     `json:"items_with_clicks"`
	ItemsWithImpressions int     `json:"items_with_impressions"`
	ItemsWithDwell       int     `json:"items_with_dwell"`
	ItemsWithAny         int     `json:"items_with_any"`
	CoveragePct          float64 `json:"coverage_pct"`
}

// Cell is one entry of the session x item interaction matrix.
type Cell struct {
	Session string
	ItemID  string
	Value   float64
}

// Result is the output of Aggregate. It is read-only once returned.
type Result struct {
	breakdowns map[string]*Breakdown
	interacted []string
	dwell      map[[2]string]float64
	weights    Weights

	// Consumed counts rows joined to a catalog item, per kind.
	Consumed map[Kind]int

	// Dropped counts rows (or row elements) whose key matched no item.
	Dropped map[Kind]int

	Coverage Coverage
}

// Aggregate joins engagement rows to catalog items and totals every signal.
// Rows whose key does not resolve are dropped and counted, never fatal.
// Aggregate has no side effects; call Report to log and export the drops.
func Aggregate(cat *catalog.Catalog, rows *Rows, w Weights) *Result {
	a := &aggregator{
		cat:  cat,
		memo: make(map[string]string),
		res: &Result{
			breakdowns: make(map[string]*Breakdown),
			dwell:      make(map[[2]string]float64),
			weights:    w,
			Consumed:   make(map[Kind]int, len(AllKinds)),
			Dropped:    make(map[Kind]int, len(AllKinds)),
		},
	}
	if rows == nil {
		rows = &Rows{}
	}

	for i := range rows.Clicks {
		r := &rows.Clicks[i]
		if b := a.lookup(KindClick, r.Name); b != nil {
			b.Clicks += nonNeg(r.Count)
		}
	}
	for i := range rows.Impressions {
		r := &rows.Impressions[i]
		if b := a.lookup(KindImpression, r.Name); b != nil {
			b.Impressions += nonNeg(r.Count)
		}
	}
	for i := range rows.Dwell {
		a.addDwell(&rows.Dwell[i])
	}
	for i := range rows.Scroll {
		a.addScroll(&rows.Scroll[i])
	}
	for i := range rows.SearchClicks {
		for _, hit := range rows.SearchClicks[i].Results {
			if b := a.lookup(KindSearchClick, hit.ID); b != nil {
				b.SearchClicks++
			}
		}
	}
	for i := range rows.Sessions {
		a.addSession(&rows.Sessions[i])
	}
	for i := range rows.Frustration {
		a.addFrustration(&rows.Frustration[i])
	}
	for i := range rows.CoOccurrence {
		a.addCoOccurrence(&rows.CoOccurrence[i])
	}

	a.finish()
	return a.res
}

type aggregator struct {
	cat  *catalog.Catalog
	memo map[string]string
	res  *Result
}

// resolve maps an engagement key (ID, name or URL path) to an item ID.
func (a *aggregator) resolve(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	if id, ok := a.memo[key]; ok {
		return id, id != ""
	}
	id := ""
	if it, ok := a.cat.Resolve(key); ok {
		id = it.ID
	}
	a.memo[key] = id
	return id, id != ""
}

// lookup resolves key and returns the item's breakdown, counting the row as
// consumed or dropped under kind.
func (a *aggregator) lookup(kind Kind, key string) *Breakdown {
	id, ok := a.resolve(key)
	if !ok {
		a.res.Dropped[kind]++
		return nil
	}
	a.res.Consumed[kind]++
	return a.breakdown(id)
}

func (a *aggregator) breakdown(id string) *Breakdown {
	b, ok := a.res.breakdowns[id]
	if !ok {
		b = &Breakdown{}
		a.res.breakdowns[id] = b
	}
	return b
}

func (a *aggregator) addDwell(r *DwellRow) {
	id, ok := a.resolve(r.Name)
	if !ok {
		a.res.Dropped[KindDwell]++
		return
	}
	a.res.Consumed[KindDwell]++

	b := a.breakdown(id)
	ms := nonNeg(r.DwellMs)
	b.DwellMs += ms
	b.ViewableSeconds += math.Max(0, r.ViewableSeconds)

	if ms > 0 {
		session := strings.TrimSpace(r.SessionID)
		if session == "" {
			session = "__dwell_" + id
		}
		a.res.dwell[[2]string{session, id}] += float64(ms) / 1000.0
	}
}

func (a *aggregator) addScroll(r *ScrollRow) {
	if r.Milestone < 50 {
		return
	}
	b := a.lookup(KindScroll, r.Path)
	if b == nil {
		return
	}
	n := nonNeg(r.Count)
	switch {
	case r.Milestone >= 90:
		b.Scroll90 += n
	case r.Milestone >= 75:
		b.Scroll75 += n
	default:
		b.Scroll50 += n
	}
}

func (a *aggregator) addSession(r *SessionRow) {
	if !strings.EqualFold(strings.TrimSpace(r.Tier), DeepTier) {
		return
	}
	seen := make(map[string]bool, len(r.Sequence))
	for _, key := range r.Sequence {
		id, ok := a.resolve(key)
		if !ok {
			a.res.Dropped[KindSession]++
			continue
		}
		a.res.Consumed[KindSession]++
		if seen[id] {
			continue
		}
		seen[id] = true
		a.breakdown(id).DeepSessions++
	}
}

func (a *aggregator) addFrustration(r *FrustrationRow) {
	event := strings.ToLower(strings.TrimSpace(r.EventType))
	if event != EventRageClick && event != EventQuickBounce {
		return
	}
	b := a.lookup(KindFrustration, r.Path)
	if b == nil {
		return
	}
	if event == EventRageClick {
		b.RageClicks += nonNeg(r.Count)
	} else {
		b.QuickBounces += nonNeg(r.Count)
	}
}

func (a *aggregator) addCoOccurrence(r *CoOccurrenceRow) {
	idA, okA := a.resolve(r.ItemA)
	idB, okB := a.resolve(r.ItemB)
	if !okA {
		a.res.Dropped[KindCoOccurrence]++
	}
	if !okB {
		a.res.Dropped[KindCoOccurrence]++
	}
	views, clicks := nonNeg(r.CoView), nonNeg(r.CoClick)
	for _, id := range uniqueIDs(idA, okA, idB, okB) {
		a.res.Consumed[KindCoOccurrence]++
		b := a.breakdown(id)
		b.CoViews += views
		b.CoClicks += clicks
	}
}

func uniqueIDs(a string, okA bool, b string, okB bool) []string {
	switch {
	case okA && okB && a != b:
		return []string{a, b}
	case okA:
		return []string{a}
	case okB:
		return []string{b}
	}
	return nil
}

func (a *aggregator) finish() {
	res := a.res
	cov := Coverage{TotalItems: a.cat.Len()}

	for id, b := range res.breakdowns {
		if !b.HasInteraction() {
			delete(res.breakdowns, id)
			continue
		}
		res.interacted = append(res.interacted, id)
		if b.Clicks > 0 {
			cov.ItemsWithClicks++
		}
		if b.Impressions > 0 {
			cov.ItemsWithImpressions++
		}
		if b.DwellMs > 0 {
			cov.ItemsWithDwell++
		}
	}
	sort.Strings(res.interacted)

	cov.ItemsWithAny = len(res.interacted)
	if cov.TotalItems > 0 {
		cov.CoveragePct = math.Round(float64(cov.ItemsWithAny)/float64(cov.TotalItems)*1000) / 10
	}
	res.Coverage = cov
}

func nonNeg(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

// Interacted returns the sorted IDs of items with at least one signal.
func (r *Result) Interacted() []string {
	out := make([]string, len(r.interacted))
	copy(out, r.interacted)
	return out
}

// Observed reports whether the item has at least one signal.
func (r *Result) Observed(id string) bool {
	_, ok := r.breakdowns[id]
	return ok
}

// Breakdown returns a copy of the item's raw signal totals.
func (r *Result) Breakdown(id string) (Breakdown, bool) {
	b, ok := r.breakdowns[id]
	if !ok {
		return Breakdown{}, false
	}
	return *b, true
}

// Score returns the item's clamped engagement score, 0 for unobserved items.
func (r *Result) Score(id string) float64 {
	b, ok := r.breakdowns[id]
	if !ok {
		return 0
	}
	return b.Score(&r.weights)
}

// Scores returns the engagement score of every observed item.
func (r *Result) Scores() map[string]float64 {
	out := make(map[string]float64, len(r.breakdowns))
	for id, b := range r.breakdowns {
		out[id] = b.Score(&r.weights)
	}
	return out
}

// NetScores returns the unclamped engagement score of every observed item.
func (r *Result) NetScores() map[string]float64 {
	out := make(map[string]float64, len(r.breakdowns))
	for id, b := range r.breakdowns {
		out[id] = b.Net(&r.weights)
	}
	return out
}

// Weights returns the weight table the result was computed with.
func (r *Result) Weights() Weights {
	return r.weights
}

// TotalDropped is the number of dropped rows over all kinds.
func (r *Result) TotalDropped() int {
	n := 0
	for _, d := range r.Dropped {
		n += d
	}
	return n
}

// Cells builds the interaction matrix entries. Dwell rows contribute real
// sessions in seconds. Clicks and impressions, which have no session, get one
// pseudo-session per item (__click_N, __imp_N), and the remaining positive
// signals one more (__sig_N). Output is sorted by session then item.
func (r *Result) Cells() []Cell {
	cells := make([]Cell, 0, len(r.dwell)+2*len(r.interacted))
	for key, secs := range r.dwell {
		cells = append(cells, Cell{Session: key[0], ItemID: key[1], Value: secs})
	}

	n := 0
	pseudo := func(prefix, id string, v float64) {
		if v <= 0 {
			return
		}
		cells = append(cells, Cell{Session: fmt.Sprintf("%s_%d", prefix, n), ItemID: id, Value: v})
		n++
	}
	for _, id := range r.interacted {
		pseudo("__click", id, float64(r.breakdowns[id].Clicks)*ClickCellWeight)
	}
	for _, id := range r.interacted {
		pseudo("__imp", id, float64(r.breakdowns[id].Impressions)*ImpressionCellWeight)
	}
	for _, id := range r.interacted {
		pseudo("__sig", id, r.breakdowns[id].Residual(&r.weights))
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Session != cells[j].Session {
			return cells[i].Session < cells[j].Session
		}
		return cells[i].ItemID < cells[j].ItemID
	})
	return cells
}

// Report logs one warning per kind with dropped rows and exports the
// consumed, dropped and coverage metrics.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (r *Result) Report(logger zerolog.Logger) {
	for _, kind := range AllKinds {
		consumed, dropped := r.Consumed[kind], r.Dropped[kind]
		metrics.RecordEngagementRows(string(kind), consumed, dropped)
		if dropped > 0 {
			logger.Warn().
				Str("kind", string(kind)).
				Int("dropped", dropped).
				Int("consumed", consumed).
				Msg("Engagement rows did not match any catalog item")
		}
	}

	if r.Coverage.TotalItems > 0 {
		metrics.SetEngagementCoverage(float64(r.Coverage.ItemsWithAny) / float64(r.Coverage.TotalItems))
	}

	logger.Info().
		Int("items_with_any", r.Coverage.ItemsWithAny).
		Int("total_items", r.Coverage.TotalItems).
		Float64("coverage_pct", r.Coverage.CoveragePct).
		Int("dropped", r.TotalDropped()).
		Msg("Engagement aggregated")
}
