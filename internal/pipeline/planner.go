package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/reloadpress/autopost/internal/logger"
	"github.com/reloadpress/autopost/internal/models"
	"github.com/reloadpress/autopost/internal/rotation"
	"github.com/reloadpress/autopost/internal/schedule"
	"github.com/reloadpress/autopost/internal/wordpress"
)

// PlanOptions tunes one planning pass.
type PlanOptions struct {
	Count            int
	PublishAt        schedule.TimeOfDay
	ExcludedWeekdays map[time.Weekday]bool
	// EarliestDay is the first day eligible for a slot; zero means
	// tomorrow relative to Now.
	EarliestDay time.Time
	// Now exists for tests; zero means time.Now.
	Now time.Time
}

// Plan is the output of a planning pass: post stubs plus the recent
// title window the generator must avoid.
type Plan struct {
	Posts        []models.PlannedPost
	RecentTitles []string
}

// Planner infers the continuation of the observed posting rotation and
// allocates collision-free schedule slots for it.
type Planner struct {
	cms    CMS
	logger logger.Logger
}

func NewPlanner(cms CMS, log logger.Logger) *Planner {
	return &Planner{cms: cms, logger: log}
}

// Plan reads the category set and the recent queue, then emits
// opts.Count stubs continuing the type and category rotation.
func (p *Planner) Plan(ctx context.Context, opts PlanOptions) (Plan, error) {
	if opts.Count <= 0 {
		return Plan{}, nil
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	earliest := opts.EarliestDay
	if earliest.IsZero() {
		earliest = now.AddDate(0, 0, 1)
	}

	categories, err := p.usableCategories(ctx)
	if err != nil {
		return Plan{}, err
	}

	future, err := p.cms.ListPosts(ctx, wordpress.ListOptions{Status: "future"})
	if err != nil {
		return Plan{}, fmt.Errorf("list scheduled posts: %w", err)
	}
	published, err := p.cms.ListPosts(ctx, wordpress.ListOptions{Status: "publish", MaxPages: 1})
	if err != nil {
		return Plan{}, fmt.Errorf("list published posts: %w", err)
	}

	records := recordsByDateDesc(future, published)
	titles := make([]string, 0, len(records))
	for _, rec := range records {
		titles = append(titles, rec.title)
	}
	typeHistory := rotation.HistoryFromTitles(titles)

	ordering := make([]int, 0, len(categories))
	byID := make(map[int]models.Category, len(categories))
	for _, c := range categories {
		ordering = append(ordering, c.ID)
		byID[c.ID] = c
	}

	lastCategory, haveLast := lastUsedCategory(records, byID)

	var futureTimes []time.Time
	for _, post := range future {
		if at, ok := parseWPDate(post.DateGMT, post.Date); ok {
			futureTimes = append(futureTimes, at)
		}
	}
	slots := schedule.PlanSlots(opts.Count, earliest, opts.ExcludedWeekdays,
		schedule.NewOccupied(futureTimes), opts.PublishAt)

	posts := make([]models.PlannedPost, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		ctype := rotation.NextInSequence(models.DefaultTypePattern, typeHistory)
		typeHistory = append([]models.ContentType{ctype}, typeHistory...)

		catID := rotation.NextRoundRobin(ordering, lastCategory, haveLast)
		lastCategory, haveLast = catID, true

		posts = append(posts, models.PlannedPost{
			Category:    byID[catID],
			ContentType: ctype,
			ScheduledAt: slots[i],
		})
	}

	p.logger.Info("planned batch",
		logger.Int("posts", len(posts)),
		logger.Int("occupied_slots", len(futureTimes)),
		logger.Int("categories", len(ordering)),
	)
	return Plan{Posts: posts, RecentTitles: titles}, nil
}

// usableCategories returns the rotation ordering: every real category,
// by ascending ID, with the CMS default bucket excluded.
func (p *Planner) usableCategories(ctx context.Context) ([]models.Category, error) {
	raw, err := p.cms.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]models.Category, 0, len(raw))
	for _, c := range raw {
		if c.Slug == "uncategorized" {
			continue
		}
		categories = append(categories, models.Category{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	if len(categories) == 0 {
		return nil, models.ErrNoCategories
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// lastUsedCategory finds the most recent post whose category is part of
// the rotation ordering.
func lastUsedCategory(records []postRecord, byID map[int]models.Category) (int, bool) {
	for _, rec := range records {
		if _, ok := byID[rec.category]; ok {
			return rec.category, true
		}
	}
	return 0, false
}
