// Package pipeline orchestrates planning, generation, enhancement, and
// publishing against the CMS. Batches run sequentially: one post fully
// finishes before the next starts, and a per-post failure is recorded
// and skipped rather than aborting the run.
package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/reloadpress/autopost/internal/models"
	"github.com/reloadpress/autopost/internal/wordpress"
)

// wpDateLayout is the CMS timestamp format (no zone suffix).
const wpDateLayout = "2006-01-02T15:04:05"

// CMS is the WordPress surface the pipeline needs.
type CMS interface {
	ListPosts(ctx context.Context, opts wordpress.ListOptions) ([]wordpress.Post, error)
	ListCategories(ctx context.Context) ([]wordpress.Category, error)
	CreatePost(ctx context.Context, p wordpress.NewPost) (wordpress.Post, error)
	UpdatePost(ctx context.Context, id int, fields map[string]any) (wordpress.Post, error)
	UploadMedia(ctx context.Context, data []byte, filename, mimeType string) (wordpress.Media, error)
}

// Generator produces titles and draft bodies.
type Generator interface {
	Title(ctx context.Context, category string, ctype models.ContentType, recent []string) (string, error)
	Body(ctx context.Context, title, category string, ctype models.ContentType) (string, error)
}

// Enhancer converges an article body toward the publishable form.
type Enhancer interface {
	Enhance(ctx context.Context, body, topic, category string) string
}

// postRecord is a CMS post reduced to what planning needs.
type postRecord struct {
	at       time.Time
	title    string
	category int
}

// parseWPDate reads a CMS timestamp, preferring the GMT field.
func parseWPDate(gmt, local string) (time.Time, bool) {
	for _, s := range []string{gmt, local} {
		if s == "" {
			continue
		}
		if t, err := time.Parse(wpDateLayout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// recordsByDateDesc merges post lists into newest-first records.
func recordsByDateDesc(lists ...[]wordpress.Post) []postRecord {
	var records []postRecord
	for _, list := range lists {
		for _, p := range list {
			at, ok := parseWPDate(p.DateGMT, p.Date)
			if !ok {
				continue
			}
			rec := postRecord{at: at, title: p.Title.Rendered}
			if len(p.Categories) > 0 {
				rec.category = p.Categories[0]
			}
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].at.After(records[j].at) })
	return records
}

func wordCount(html string) int {
	return len(strings.Fields(models.StripTags(html)))
}
