// Curator - Hybrid Content Ranking and Carousel Selection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package catalog

import (
	"net/url"
	"strings"
)

// ContentType is the closed set of item kinds.
type ContentType string

const (
	TypePaper     ContentType = "paper"
	TypePackage   ContentType = "package"
	TypeDataset   ContentType = "dataset"
	TypeResource  ContentType = "resource"
	TypeTalk      ContentType = "talk"
	TypeBook      ContentType = "book"
	TypeCommunity ContentType = "community"
	TypeCareer    ContentType = "career"
	TypeBlog      ContentType = "blog"
)

// AllTypes lists every content type in a fixed order.
var AllTypes = []ContentType{
	TypePaper, TypePackage, TypeDataset, TypeResource, TypeTalk,
	TypeBook, TypeCommunity, TypeCareer, TypeBlog,
}

// String returns the type name.
func (t ContentType) String() string {
	return string(t)
}

// ParseContentType accepts singular or plural type names, case-insensitively.
func ParseContentType(s string) (ContentType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllTypes {
		if s == string(t) || s == string(t)+"s" {
			return t, true
		}
	}
	switch s {
	case "tool", "tools":
		return TypePackage, true
	case "article", "articles":
		return TypeResource, true
	case "video", "videos":
		return TypeTalk, true
	}
	return "", false
}

// TypeFromFileStem maps a catalog file stem such as "papers_flat" or
// "packages" to its content type.
func TypeFromFileStem(stem string) (ContentType, bool) {
	stem = strings.ToLower(stem)
	if i := strings.IndexAny(stem, "_-."); i > 0 {
		stem = stem[:i]
	}
	return ParseContentType(stem)
}

// Item is an immutable catalog entry. Extension holds type-specific fields.
type Item struct {
	ID             string      `json:"id" validate:"required,item_id"`
	Name           string      `json:"name" validate:"required,max=500"`
	NormalizedName string      `json:"-"`
	Type           ContentType `json:"type" validate:"required,content_type"`
	Category       string      `json:"category,omitempty"`
	Description    string      `json:"description,omitempty"`
	Summary        string      `json:"summary,omitempty"`
	URL            string      `json:"url,omitempty" validate:"omitempty,uri"`
	Tags           []string    `json:"tags,omitempty"`
	TopicTags      []string    `json:"topic_tags,omitempty"`
	DomainTags     []string    `json:"domain_tags,omitempty"`
	Difficulty     string      `json:"difficulty,omitempty" validate:"difficulty"`
	Audience       []string    `json:"audience,omitempty"`
	Year           int         `json:"year,omitempty" validate:"min=0,max=3000"`
	Extension      Extension   `json:"-"`
}

// Citations returns the citation count of a paper, 0 otherwise.
func (it *Item) Citations() int {
	if p, ok := it.Extension.(PaperExt); ok {
		return p.Citations
	}
	return 0
}

// Stars returns the repository star count of a package, 0 otherwise.
func (it *Item) Stars() int {
	if p, ok := it.Extension.(PackageExt); ok {
		return p.Stars
	}
	return 0
}

// Host returns the lower-cased URL host without a leading "www.".
func (it *Item) Host() string {
	if it.URL == "" {
		return ""
	}
	u, err := url.Parse(it.URL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// PagePath is the site path of the item's detail page, used to join
// path-keyed engagement rows.
func (it *Item) PagePath() string {
	return "/" + string(it.Type) + "/" + strings.TrimPrefix(it.ID, string(it.Type)+"-")
}

// Extension is the sealed set of type-specific item fields.
type Extension interface {
	isExtension()
}

// PaperExt holds paper fields.
type PaperExt struct {
	Citations int
	Authors   []string
	Venue     string
}

// PackageExt holds package/tool fields.
type PackageExt struct {
	Language string
	Stars    int
}

// DatasetExt holds dataset fields.
type DatasetExt struct {
	Modality string
	Domain   string
}

// TalkExt holds talk/video fields.
type TalkExt struct {
	Speaker string
	Event   string
}

// BookExt holds book fields.
type BookExt struct {
	Authors []string
}

// CareerExt holds career listing fields.
type CareerExt struct {
	Company string
	Level   string
}

// GenericExt is used by types without extra fields.
type GenericExt struct{}

func (PaperExt) isExtension()   {}
func (PackageExt) isExtension() {}
func (DatasetExt) isExtension() {}
func (TalkExt) isExtension()    {}
func (BookExt) isExtension()    {}
func (CareerExt) isExtension()  {}
func (GenericExt) isExtension() {}
