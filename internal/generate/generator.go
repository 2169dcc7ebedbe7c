// Package generate holds the article generation boundary: prompt
// construction, draft shaping, and quality gating on top of a
// completion client.
package generate

import (
	"context"
	"fmt"

	"github.com/reloadpress/autopost/internal/logger"
	"github.com/reloadpress/autopost/internal/models"
)

const (
	defaultMinWords      = 600
	defaultTitleAttempts = 3
)

type Config struct {
	// MinWords is the smallest plain-text word count an accepted draft
	// may have.
	MinWords int
	// TitleAttempts bounds retries when the model keeps producing
	// titles already present in the avoid list.
	TitleAttempts int
}

type Generator struct {
	llm    LLM
	cfg    Config
	logger logger.Logger
}

func New(llm LLM, cfg Config, log logger.Logger) *Generator {
	if cfg.MinWords <= 0 {
		cfg.MinWords = defaultMinWords
	}
	if cfg.TitleAttempts <= 0 {
		cfg.TitleAttempts = defaultTitleAttempts
	}
	return &Generator{llm: llm, cfg: cfg, logger: log}
}

// Title produces a fresh title for the category and content type,
// retrying a bounded number of times when the model repeats one of the
// recent titles.
func (g *Generator) Title(ctx context.Context, category string, ctype models.ContentType, recent []string) (string, error) {
	seen := make(map[string]bool, len(recent))
	for _, t := range recent {
		seen[models.NormalizeTitle(t)] = true
	}

	avoid := recent
	for attempt := 1; attempt <= g.cfg.TitleAttempts; attempt++ {
		raw, err := g.llm.Complete(ctx, titleSystem, titlePrompt(category, ctype, avoid))
		if err != nil {
			return "", fmt.Errorf("generate title: %w", err)
		}

		title := CleanTitle(CleanFences(raw))
		if title == "" {
			continue
		}
		if !seen[models.NormalizeTitle(title)] {
			g.logger.Debug("generated title",
				logger.String("title", title),
				logger.String("content_type", string(ctype)),
				logger.Int("attempt", attempt),
			)
			return title, nil
		}

		g.logger.Warn("title duplicates a recent post, retrying",
			logger.String("title", title),
			logger.Int("attempt", attempt),
		)
		avoid = append(avoid, title)
	}
	return "", fmt.Errorf("no unique title for category %q after %d attempts", category, g.cfg.TitleAttempts)
}

// Body produces an HTML draft body for the title. A draft failing the
// quality bar is regenerated once; a second failure is reported as
// ErrLowQuality so the caller can skip the slot.
func (g *Generator) Body(ctx context.Context, title, category string, ctype models.ContentType) (string, error) {
	const attempts = 2
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := g.llm.Complete(ctx, articleSystem, articlePrompt(title, category, ctype))
		if err != nil {
			return "", fmt.Errorf("generate body: %w", err)
		}

		html, err := shapeBody(raw, title)
		if err != nil {
			return "", err
		}

		score := Assess(html, title)
		if score.Acceptable(g.cfg.MinWords) {
			return html, nil
		}

		g.logger.Warn("draft rejected by quality gate",
			logger.String("title", title),
			logger.Int("words", score.Words),
			logger.Int("headings", score.Headings),
			logger.Any("title_coverage", score.TitleCoverage),
			logger.Int("attempt", attempt),
		)
	}
	return "", fmt.Errorf("draft for %q: %w", title, models.ErrLowQuality)
}

// shapeBody converts a raw draft to HTML. Models sometimes disobey the
// "start with the first element" instruction and echo the requested
// title as a leading line; those drafts are in the title-first shape
// and go through ShapeDraft so the echo does not end up in the body.
func shapeBody(raw, title string) (string, error) {
	if d, err := ShapeDraft(raw); err == nil &&
		models.NormalizeTitle(d.Title) == models.NormalizeTitle(title) {
		return d.Body, nil
	}
	return ToHTML(raw)
}
