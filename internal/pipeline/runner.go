package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/google/uuid"

	"github.com/reloadpress/autopost/internal/generate"
	"github.com/reloadpress/autopost/internal/images"
	"github.com/reloadpress/autopost/internal/logger"
	"github.com/reloadpress/autopost/internal/models"
	"github.com/reloadpress/autopost/internal/thumbnail"
	"github.com/reloadpress/autopost/internal/wordpress"
)

const (
	defaultInterPostDelay = 15 * time.Second
	defaultTitleWindow    = 20
)

// RunnerConfig tunes batch execution.
type RunnerConfig struct {
	// InterPostDelay spaces consecutive CMS writes.
	InterPostDelay time.Duration
	// Status is the state new posts are created in.
	Status string
	// TitleWindow caps how many recent titles are passed to the
	// generator as the avoid list.
	TitleWindow int
}

// Runner executes a plan: generate, enhance, and create each post in
// order. The thumbnail generator and image resolver are optional.
type Runner struct {
	cms      CMS
	gen      Generator
	enhancer Enhancer
	resolver *images.Resolver
	thumbs   thumbnail.Generator
	cfg      RunnerConfig
	logger   logger.Logger
}

func NewRunner(cms CMS, gen Generator, enh Enhancer, resolver *images.Resolver, thumbs thumbnail.Generator, cfg RunnerConfig, log logger.Logger) *Runner {
	if cfg.InterPostDelay <= 0 {
		cfg.InterPostDelay = defaultInterPostDelay
	}
	if cfg.Status == "" {
		cfg.Status = "future"
	}
	if cfg.TitleWindow <= 0 {
		cfg.TitleWindow = defaultTitleWindow
	}
	return &Runner{cms: cms, gen: gen, enhancer: enh, resolver: resolver, thumbs: thumbs, cfg: cfg, logger: log}
}

// Run processes every stub in the plan. Failures are recorded per post;
// the batch continues unless ctx is cancelled.
func (r *Runner) Run(ctx context.Context, plan Plan) *models.Report {
	report := &models.Report{RunID: uuid.NewString(), Started: time.Now()}
	defer func() { report.Finished = time.Now() }()

	recent := plan.RecentTitles
	for i, stub := range plan.Posts {
		if i > 0 {
			if err := r.pause(ctx); err != nil {
				report.Add("", models.OutcomeFailed, "pause", err.Error())
				return report
			}
		}

		title := r.publishOne(ctx, stub, window(recent, r.cfg.TitleWindow), report)
		if title != "" {
			recent = append([]string{title}, recent...)
		}
	}
	return report
}

// publishOne runs the full per-post sequence and returns the generated
// title when one was produced, for the in-run dedup window.
func (r *Runner) publishOne(ctx context.Context, stub models.PlannedPost, recent []string, report *models.Report) string {
	log := r.logger.With(
		logger.String("category", stub.Category.Slug),
		logger.String("content_type", string(stub.ContentType)),
		logger.Time("scheduled_at", stub.ScheduledAt),
	)

	title, err := r.gen.Title(ctx, stub.Category.Name, stub.ContentType, recent)
	if err != nil {
		log.Error("title generation failed", logger.Error(err))
		report.Add("", models.OutcomeFailed, "title", err.Error())
		return ""
	}
	log = log.With(logger.String("title", title))

	body, err := r.gen.Body(ctx, title, stub.Category.Name, stub.ContentType)
	if err != nil {
		if errors.Is(err, models.ErrLowQuality) {
			log.Warn("draft rejected, slot skipped", logger.Error(err))
			report.Add(title, models.OutcomeRejected, "quality", err.Error())
			return title
		}
		log.Error("body generation failed", logger.Error(err))
		report.Add(title, models.OutcomeFailed, "body", err.Error())
		return title
	}

	body = r.fillPlaceholders(ctx, body, title)
	if generate.HasInternalLinks(body) {
		body = generate.ReplaceInternalLinks(body,
			relatedLinks(ctx, r.cms, log, stub.Category.ID, 0))
	}
	enhanced := r.enhancer.Enhance(ctx, body, title, stub.Category.Slug)

	featured := r.uploadThumbnail(ctx, title, stub.Category.Name, log)

	created, err := r.cms.CreatePost(ctx, wordpress.NewPost{
		Title:         title,
		Content:       enhanced,
		Status:        r.cfg.Status,
		DateGMT:       stub.ScheduledAt.Format(wpDateLayout),
		Categories:    []int{stub.Category.ID},
		FeaturedMedia: featured,
	})
	if err != nil {
		log.Error("create failed", logger.Error(err))
		report.Add(title, models.OutcomeFailed, "create", err.Error())
		return title
	}

	log.Info("post created", logger.Int("post_id", created.ID))
	report.Add(title, models.OutcomeCreated, "", fmt.Sprintf("post %d", created.ID))
	return title
}

// fillPlaceholders swaps generator image tokens for resolved figures.
// Without a resolver the tokens are dropped and the enhancer's own
// illustration stage takes over.
func (r *Runner) fillPlaceholders(ctx context.Context, body, title string) string {
	if r.resolver == nil {
		return generate.ReplacePlaceholders(body, nil)
	}

	exclude := make(map[string]struct{})
	return generate.ReplacePlaceholders(body, func(slot generate.Slot) string {
		ref := r.resolver.Resolve(ctx, title, exclude)
		if ref.SourceID != "" {
			exclude[ref.SourceID] = struct{}{}
		}
		alt := title
		if slot != generate.SlotTop {
			alt = title + " illustration"
		}
		return fmt.Sprintf(`<figure><img src="%s" alt="%s"/></figure>`,
			html.EscapeString(ref.URL), html.EscapeString(alt))
	})
}

// uploadThumbnail is best effort: a post without a featured image is
// preferable to a lost slot.
func (r *Runner) uploadThumbnail(ctx context.Context, title, category string, log logger.Logger) int {
	if r.thumbs == nil {
		return 0
	}

	img, err := r.thumbs.Generate(ctx, title, category)
	if err != nil {
		log.Warn("thumbnail generation failed, creating without featured image", logger.Error(err))
		return 0
	}
	media, err := r.cms.UploadMedia(ctx, img.Data, img.Filename, img.MimeType)
	if err != nil {
		log.Warn("thumbnail upload failed, creating without featured image", logger.Error(err))
		return 0
	}
	return media.ID
}

func (r *Runner) pause(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.cfg.InterPostDelay):
		return nil
	}
}

func window(titles []string, n int) []string {
	if len(titles) <= n {
		return titles
	}
	return titles[:n]
}
