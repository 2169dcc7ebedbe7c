// Package models defines the domain types shared across the pipeline.
package models

import (
	"regexp"
	"strings"
	"time"
)

// ContentType drives generation instructions and the type rotation sequence.
type ContentType string

const (
	// TypeInfo is a practical guide / informational article.
	TypeInfo ContentType = "INFO"
	// TypeList is a ranked or curated list article.
	TypeList ContentType = "LIST"
	// TypeComparison is a multi-tool comparison roundup.
	TypeComparison ContentType = "COMPARISON"
	// TypeDeep is a deep-dive on a single tool or workflow.
	TypeDeep ContentType = "DEEP"
	// TypeVS is a head-to-head "A vs B" comparison.
	TypeVS ContentType = "VS"
)

// DefaultTypePattern is the canonical repeating content-type sequence.
var DefaultTypePattern = []ContentType{TypeInfo, TypeInfo, TypeVS}

// Category is one member of the CMS category set.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ImageRef is a resolved illustration. SourceID is the upstream search
// result identifier used only for dedup; it is empty for synthetic
// fallback images, which are exempt from dedup.
type ImageRef struct {
	URL      string
	SourceID string
}

// Fallback reports whether the reference came from the placeholder
// generator rather than the search service.
func (r ImageRef) Fallback() bool {
	return r.SourceID == ""
}

// PlannedPost is one article to be created or repaired. It is created by
// rotation inference and the schedule planner, filled by the generator,
// mutated in place by the enhancer, and frozen by the publisher.
type PlannedPost struct {
	Title       string
	Category    Category
	ContentType ContentType
	ScheduledAt time.Time
	Body        string
	Images      []ImageRef
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripTags removes HTML tags from s and trims surrounding whitespace.
func StripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// NormalizeTitle lowers and collapses a rendered title for best-effort
// duplicate detection against the recent-title window.
func NormalizeTitle(t string) string {
	t = StripTags(t)
	t = whitespacePattern.ReplaceAllString(t, " ")
	return strings.ToLower(strings.TrimSpace(t))
}
