// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package catalog

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// rawRecord is the loosely shaped catalog JSON object. It is converted to
// Item once at ingestion and never used afterwards.
type rawRecord struct {
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Summary     string     `json:"summary"`
	URL         string     `json:"url"`
	GithubURL   string     `json:"github_url"`
	DocsURL     string     `json:"docs_url"`
	Tags        stringList `json:"tags"`
	TopicTags   stringList `json:"topic_tags"`
	DomainTags  stringList `json:"domain_tags"`
	Difficulty  string     `json:"difficulty"`
	Audience    stringList `json:"audience"`
	Year        flexInt    `json:"year"`
	Date        string     `json:"date"`
	Citations   flexInt    `json:"citations"`
	Authors     stringList `json:"authors"`
	Venue       string     `json:"venue"`
	Language    string     `json:"language"`
	Stars       flexInt    `json:"stars"`
	Modality    string     `json:"data_modality"`
	Speaker     string     `json:"speaker"`
	Event       string     `json:"event"`
	Company     string     `json:"company"`
	Level       string     `json:"experience_level"`
}

// stringList decodes either a JSON array of strings or a single
// comma-separated string.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = cleanList(strings.Split(one, ","))
		return nil
	}
	var many []interface{}
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	out := make([]string, 0, len(many))
	for _, v := range many {
		switch x := v.(type) {
		case string:
			out = append(out, x)
		case float64:
			out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
		}
	}
	*s = cleanList(out)
	return nil
}

// flexInt decodes a JSON number, a numeric string or null.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		// Unparseable metadata is treated as absent.
		*n = 0
		return nil //nolint:nilerr
	}
	*n = flexInt(f)
	return nil
}

// toItem converts a raw record into an Item of type t.
func (r *rawRecord) toItem(t ContentType) Item {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = strings.TrimSpace(r.Title)
	}
	link := firstNonEmpty(r.URL, r.GithubURL, r.DocsURL)

	item := Item{
		Name:           name,
		NormalizedName: NormalizeName(name),
		Type:           t,
		Category:       strings.TrimSpace(r.Category),
		Description:    strings.TrimSpace(r.Description),
		Summary:        strings.TrimSpace(r.Summary),
		URL:            normalizeURL(link),
		Tags:           cleanList(r.Tags),
		TopicTags:      cleanList(r.TopicTags),
		DomainTags:     cleanList(r.DomainTags),
		Difficulty:     normalizeDifficulty(r.Difficulty),
		Audience:       cleanList(r.Audience),
		Year:           int(r.Year),
	}
	if item.Year == 0 {
		item.Year = yearFromDate(r.Date)
	}

	switch t {
	case TypePaper:
		item.Extension = PaperExt{Citations: max(0, int(r.Citations)), Authors: cleanList(r.Authors), Venue: r.Venue}
	case TypePackage:
		item.Extension = PackageExt{Language: r.Language, Stars: max(0, int(r.Stars))}
	case TypeDataset:
		item.Extension = DatasetExt{Modality: r.Modality, Domain: firstNonEmpty(r.DomainTags...)}
	case TypeTalk:
		item.Extension = TalkExt{Speaker: r.Speaker, Event: r.Event}
	case TypeBook:
		item.Extension = BookExt{Authors: cleanList(r.Authors)}
	case TypeCareer:
		item.Extension = CareerExt{Company: r.Company, Level: r.Level}
	default:
		item.Extension = GenericExt{}
	}
	return item
}

// normalizeDifficulty maps free-form levels onto beginner, intermediate or
// advanced. Unknown levels become empty.
func normalizeDifficulty(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case d == "":
		return ""
	case strings.HasPrefix(d, "begin"), strings.HasPrefix(d, "intro"), d == "easy", d == "basic":
		return "beginner"
	case strings.HasPrefix(d, "inter"), d == "medium":
		return "intermediate"
	case strings.HasPrefix(d, "adv"), d == "expert", d == "hard":
		return "advanced"
	}
	return ""
}

// normalizeURL adds an https scheme to bare host links such as
// "github.com/org/repo". Site-relative paths are kept.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "/") || strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

func yearFromDate(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
