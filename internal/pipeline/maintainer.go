package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reloadpress/autopost/internal/generate"
	"github.com/reloadpress/autopost/internal/logger"
	"github.com/reloadpress/autopost/internal/models"
	"github.com/reloadpress/autopost/internal/rotation"
	"github.com/reloadpress/autopost/internal/wordpress"
)

const defaultMinPlausibleWords = 300

// MaintainerConfig tunes the repair pass.
type MaintainerConfig struct {
	// MinPlausibleWords blocks a content update whose enhanced body
	// falls below this plain-text word count.
	MinPlausibleWords int
	// Statuses are the post states swept by one pass.
	Statuses []string
}

// Maintainer re-runs enhancement over existing posts and writes back
// only when the body actually changed. With a generator configured it
// also regenerates bodies that look broken.
type Maintainer struct {
	cms      CMS
	enhancer Enhancer
	gen      Generator
	cfg      MaintainerConfig
	logger   logger.Logger
}

// NewMaintainer creates a Maintainer. gen may be nil; broken posts are
// then re-enhanced in place instead of regenerated.
func NewMaintainer(cms CMS, enh Enhancer, gen Generator, cfg MaintainerConfig, log logger.Logger) *Maintainer {
	if cfg.MinPlausibleWords <= 0 {
		cfg.MinPlausibleWords = defaultMinPlausibleWords
	}
	if len(cfg.Statuses) == 0 {
		cfg.Statuses = []string{"future", "publish"}
	}
	return &Maintainer{cms: cms, enhancer: enh, gen: gen, cfg: cfg, logger: log}
}

// Maintain sweeps every configured status and converges each post.
func (m *Maintainer) Maintain(ctx context.Context) (*models.Report, error) {
	report := &models.Report{RunID: uuid.NewString(), Started: time.Now()}
	defer func() { report.Finished = time.Now() }()

	categoryNames, err := m.categoryNames(ctx)
	if err != nil {
		return report, err
	}

	for _, status := range m.cfg.Statuses {
		posts, err := m.cms.ListPosts(ctx, wordpress.ListOptions{Status: status})
		if err != nil {
			return report, fmt.Errorf("list %s posts: %w", status, err)
		}
		for _, post := range posts {
			m.maintainOne(ctx, post, categoryNames, report)
		}
	}
	return report, nil
}

func (m *Maintainer) maintainOne(ctx context.Context, post wordpress.Post, categoryNames map[int]string, report *models.Report) {
	title := models.StripTags(post.Title.Rendered)
	body := post.Content.Rendered
	log := m.logger.With(
		logger.Int("post_id", post.ID),
		logger.String("title", title),
	)

	if flags := brokenFlags(title, body, m.cfg.MinPlausibleWords); len(flags) > 0 && m.gen != nil {
		log.Info("post flagged for regeneration", logger.Strings("flags", flags))
		category := ""
		if len(post.Categories) > 0 {
			category = categoryNames[post.Categories[0]]
		}
		fresh, err := m.gen.Body(ctx, title, category, rotation.ClassifyTitle(title))
		switch {
		case errors.Is(err, models.ErrLowQuality):
			log.Warn("regeneration rejected by quality gate", logger.Error(err))
			report.Add(title, models.OutcomeRejected, "regenerate", err.Error())
			return
		case err != nil:
			log.Error("regeneration failed", logger.Error(err))
			report.Add(title, models.OutcomeFailed, "regenerate", err.Error())
			return
		}
		body = generate.ReplacePlaceholders(fresh, nil)
		if generate.HasInternalLinks(body) {
			categoryID := 0
			if len(post.Categories) > 0 {
				categoryID = post.Categories[0]
			}
			body = generate.ReplaceInternalLinks(body,
				relatedLinks(ctx, m.cms, log, categoryID, post.ID))
		}
	}

	enhanced := m.enhancer.Enhance(ctx, body, title, "")

	// A converged body that shrank below plausibility means enhancement
	// destroyed content; keep the stored version.
	if words := wordCount(enhanced); words < m.cfg.MinPlausibleWords && wordCount(body) >= m.cfg.MinPlausibleWords {
		err := fmt.Errorf("%w: %d words after enhancement", models.ErrImplausibleEnhancement, words)
		log.Error("update blocked", logger.Error(err))
		report.Add(title, models.OutcomeRejected, "plausibility", err.Error())
		return
	}

	if enhanced == body {
		report.Add(title, models.OutcomeUnchanged, "", "")
		return
	}

	if _, err := m.cms.UpdatePost(ctx, post.ID, map[string]any{"content": enhanced}); err != nil {
		log.Error("update failed", logger.Error(err))
		report.Add(title, models.OutcomeFailed, "update", err.Error())
		return
	}
	log.Info("post updated")
	report.Add(title, models.OutcomeUpdated, "", "")
}

func (m *Maintainer) categoryNames(ctx context.Context) (map[int]string, error) {
	categories, err := m.cms.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[int]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}

// brokenFlags reports the repairable defects of a stored post.
func brokenFlags(title, body string, minWords int) []string {
	words := wordCount(body)

	var flags []string
	if words < minWords {
		flags = append(flags, "short-body")
	}
	if strings.Contains(body, "window.print()") && words < minWords {
		flags = append(flags, "print-stub")
	}
	if words > 0 && generate.Assess(body, title).TitleCoverage < 0.2 {
		flags = append(flags, "title-mismatch")
	}
	return flags
}
