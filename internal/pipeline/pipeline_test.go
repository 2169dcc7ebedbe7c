package pipeline_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reloadpress/autopost/internal/images"
	"github.com/reloadpress/autopost/internal/logger"
	"github.com/reloadpress/autopost/internal/models"
	"github.com/reloadpress/autopost/internal/pipeline"
	"github.com/reloadpress/autopost/internal/schedule"
	"github.com/reloadpress/autopost/internal/thumbnail"
	"github.com/reloadpress/autopost/internal/wordpress"
)

type fakeCMS struct {
	categories []wordpress.Category
	future     []wordpress.Post
	published  []wordpress.Post

	created []wordpress.NewPost
	updates map[int]map[string]any
	nextID  int
}

func (f *fakeCMS) ListPosts(_ context.Context, opts wordpress.ListOptions) ([]wordpress.Post, error) {
	if opts.Status == "future" {
		return f.future, nil
	}
	if opts.Category == 0 {
		return f.published, nil
	}
	var out []wordpress.Post
	for _, p := range f.published {
		for _, c := range p.Categories {
			if c == opts.Category {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeCMS) ListCategories(context.Context) ([]wordpress.Category, error) {
	return f.categories, nil
}

func (f *fakeCMS) CreatePost(_ context.Context, p wordpress.NewPost) (wordpress.Post, error) {
	f.created = append(f.created, p)
	f.nextID++
	return wordpress.Post{ID: 100 + f.nextID}, nil
}

func (f *fakeCMS) UpdatePost(_ context.Context, id int, fields map[string]any) (wordpress.Post, error) {
	if f.updates == nil {
		f.updates = make(map[int]map[string]any)
	}
	f.updates[id] = fields
	return wordpress.Post{ID: id}, nil
}

func (f *fakeCMS) UploadMedia(_ context.Context, _ []byte, _, _ string) (wordpress.Media, error) {
	return wordpress.Media{ID: 55, SourceURL: "https://cdn.example/55.png"}, nil
}

func wpPost(id int, dateGMT, title string, categories ...int) wordpress.Post {
	return wordpress.Post{
		ID:         id,
		DateGMT:    dateGMT,
		Title:      wordpress.Rendered{Rendered: title},
		Content:    wordpress.Rendered{Rendered: "<p>stored</p>"},
		Categories: categories,
	}
}

var testCategories = []wordpress.Category{
	{ID: 1, Name: "Uncategorized", Slug: "uncategorized"},
	{ID: 9, Name: "Security", Slug: "security"},
	{ID: 3, Name: "Productivity", Slug: "productivity"},
}

func TestPlanner_ContinuesRotationAndAvoidsOccupiedSlots(t *testing.T) {
	cms := &fakeCMS{
		categories: testCategories,
		future: []wordpress.Post{
			wpPost(10, "2026-03-03T09:00:00", "Linear vs Jira", 9),
		},
		published: []wordpress.Post{
			wpPost(8, "2026-03-01T09:00:00", "How to Choose a CRM", 3),
			wpPost(7, "2026-02-28T09:00:00", "Best Backup Strategy for Small Teams", 9),
		},
	}

	p := pipeline.NewPlanner(cms, logger.NewNop())
	plan, err := p.Plan(context.Background(), pipeline.PlanOptions{
		Count:     3,
		PublishAt: schedule.TimeOfDay{Hour: 9},
		Now:       time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, plan.Posts, 3)

	// History INFO,INFO,VS is a full pattern cycle, so the sequence
	// restarts: two guides, then a head-to-head.
	assert.Equal(t, models.TypeInfo, plan.Posts[0].ContentType)
	assert.Equal(t, models.TypeInfo, plan.Posts[1].ContentType)
	assert.Equal(t, models.TypeVS, plan.Posts[2].ContentType)

	// Last used category was 9, so the round robin resumes at 3.
	assert.Equal(t, 3, plan.Posts[0].Category.ID)
	assert.Equal(t, 9, plan.Posts[1].Category.ID)
	assert.Equal(t, 3, plan.Posts[2].Category.ID)

	// Tomorrow's 09:00 slot is taken by the queued post.
	want := []time.Time{
		time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC),
	}
	for i, w := range want {
		assert.True(t, w.Equal(plan.Posts[i].ScheduledAt), "slot %d: got %v", i, plan.Posts[i].ScheduledAt)
	}

	assert.Equal(t, []string{"Linear vs Jira", "How to Choose a CRM", "Best Backup Strategy for Small Teams"},
		plan.RecentTitles)
}

func TestPlanner_NoUsableCategories(t *testing.T) {
	cms := &fakeCMS{categories: []wordpress.Category{{ID: 1, Slug: "uncategorized"}}}
	p := pipeline.NewPlanner(cms, logger.NewNop())

	_, err := p.Plan(context.Background(), pipeline.PlanOptions{Count: 1})
	assert.ErrorIs(t, err, models.ErrNoCategories)
}

// stubGen replays titles and bodies, recording the avoid lists.
type stubGen struct {
	titles     []string
	body       string
	bodyErr    error
	titleCalls int
	avoidSeen  [][]string
}

func (s *stubGen) Title(_ context.Context, _ string, _ models.ContentType, recent []string) (string, error) {
	s.avoidSeen = append(s.avoidSeen, recent)
	title := s.titles[s.titleCalls]
	s.titleCalls++
	return title, nil
}

func (s *stubGen) Body(context.Context, string, string, models.ContentType) (string, error) {
	if s.bodyErr != nil {
		return "", s.bodyErr
	}
	return s.body, nil
}

// suffixEnhancer appends a marker so changed output is observable.
type suffixEnhancer struct{ suffix string }

func (e suffixEnhancer) Enhance(_ context.Context, body, _, _ string) string {
	return body + e.suffix
}

type fixedThumb struct{}

func (fixedThumb) Generate(context.Context, string, string) (thumbnail.Image, error) {
	return thumbnail.Image{Data: []byte{1}, Filename: "t.png", MimeType: "image/png"}, nil
}

func testPlan() pipeline.Plan {
	return pipeline.Plan{
		Posts: []models.PlannedPost{
			{
				Category:    models.Category{ID: 3, Name: "Productivity", Slug: "productivity"},
				ContentType: models.TypeInfo,
				ScheduledAt: time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
			},
			{
				Category:    models.Category{ID: 9, Name: "Security", Slug: "security"},
				ContentType: models.TypeVS,
				ScheduledAt: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
			},
		},
		RecentTitles: []string{"Linear vs Jira"},
	}
}

func TestRunner_CreatesScheduledPosts(t *testing.T) {
	cms := &fakeCMS{}
	gen := &stubGen{
		titles: []string{"How to Run Retros", "1Password vs Bitwarden"},
		body:   "<h2>Section</h2><p>[IMAGE_TOP] body</p>",
	}
	r := pipeline.NewRunner(cms, gen, suffixEnhancer{"<!-- e -->"}, nil, fixedThumb{},
		pipeline.RunnerConfig{InterPostDelay: time.Millisecond}, logger.NewNop())

	report := r.Run(context.Background(), testPlan())

	require.Len(t, cms.created, 2)
	first := cms.created[0]
	assert.Equal(t, "How to Run Retros", first.Title)
	assert.Equal(t, "future", first.Status)
	assert.Equal(t, "2026-03-04T09:00:00", first.DateGMT)
	assert.Equal(t, []int{3}, first.Categories)
	assert.Equal(t, 55, first.FeaturedMedia)
	assert.True(t, strings.HasSuffix(first.Content, "<!-- e -->"))
	// Placeholder tokens never reach the CMS.
	assert.NotContains(t, first.Content, "[IMAGE_TOP]")

	// The second slot's avoid list includes the first slot's title.
	require.Len(t, gen.avoidSeen, 2)
	assert.Contains(t, gen.avoidSeen[1], "How to Run Retros")
	assert.Contains(t, gen.avoidSeen[0], "Linear vs Jira")

	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Results, 2)
	assert.Equal(t, models.OutcomeCreated, report.Results[0].Outcome)
	assert.Equal(t, models.OutcomeCreated, report.Results[1].Outcome)
}

// fixedSearch issues one known photo so figure URLs are predictable.
type fixedSearch struct{ url string }

func (s fixedSearch) Search(context.Context, string) ([]images.Photo, error) {
	return []images.Photo{{ID: "p1", URL: s.url}}, nil
}

func (s fixedSearch) Random(context.Context, string) (string, error) {
	return "", nil
}

func TestRunner_EscapesFigureURLs(t *testing.T) {
	cms := &fakeCMS{}
	gen := &stubGen{
		titles: []string{"How to Run Retros"},
		body:   "<h2>Section</h2>\n[IMAGE_TOP]\n<p>body</p>",
	}
	resolver := images.NewResolver(
		fixedSearch{url: "https://img.example/pic?width=1200&height=800"},
		nil, nil, logger.NewNop())
	r := pipeline.NewRunner(cms, gen, suffixEnhancer{}, resolver, nil,
		pipeline.RunnerConfig{InterPostDelay: time.Millisecond}, logger.NewNop())

	plan := testPlan()
	plan.Posts = plan.Posts[:1]
	r.Run(context.Background(), plan)

	require.Len(t, cms.created, 1)
	assert.Contains(t, cms.created[0].Content, `src="https://img.example/pic?width=1200&amp;height=800"`)
	assert.NotContains(t, cms.created[0].Content, "height=800\"</")
}

func TestRunner_FillsInternalLinksFromCategory(t *testing.T) {
	cms := &fakeCMS{
		published: []wordpress.Post{
			{ID: 41, Link: "https://blog.example/retro-basics", Categories: []int{3}},
			{ID: 42, Link: "https://blog.example/security-keys", Categories: []int{9}},
			{ID: 43, Link: "https://blog.example/standup-formats", Categories: []int{3}},
		},
	}
	gen := &stubGen{
		titles: []string{"How to Run Retros"},
		body: `<h2>Section</h2><p>See <a href="{{INTERNAL_LINK_1}}">our retro primer</a>` +
			` and <a href="{{INTERNAL_LINK_2}}">standups</a> and <a href="{{INTERNAL_LINK_3}}">extra</a>.</p>`,
	}
	r := pipeline.NewRunner(cms, gen, suffixEnhancer{}, nil, nil,
		pipeline.RunnerConfig{InterPostDelay: time.Millisecond}, logger.NewNop())

	plan := testPlan()
	plan.Posts = plan.Posts[:1] // category 3
	r.Run(context.Background(), plan)

	require.Len(t, cms.created, 1)
	content := cms.created[0].Content
	// Cross-links come from the same category, newest first; posts
	// from other categories never leak in.
	assert.Contains(t, content, `href="https://blog.example/retro-basics"`)
	assert.Contains(t, content, `href="https://blog.example/standup-formats"`)
	assert.NotContains(t, content, "security-keys")
	assert.NotContains(t, content, "INTERNAL_LINK")
	assert.Contains(t, content, `<a href="#">extra</a>`)
}

func TestRunner_LowQualityDraftSkipsSlot(t *testing.T) {
	cms := &fakeCMS{}
	gen := &stubGen{
		titles:  []string{"How to Run Retros", "1Password vs Bitwarden"},
		bodyErr: models.ErrLowQuality,
	}
	r := pipeline.NewRunner(cms, gen, suffixEnhancer{}, nil, nil,
		pipeline.RunnerConfig{InterPostDelay: time.Millisecond}, logger.NewNop())

	report := r.Run(context.Background(), testPlan())

	assert.Empty(t, cms.created)
	require.Len(t, report.Results, 2)
	for _, res := range report.Results {
		assert.Equal(t, models.OutcomeRejected, res.Outcome)
		assert.Equal(t, "quality", res.Stage)
	}
}

func TestMaintainer_UpdatesOnlyChangedPosts(t *testing.T) {
	long := "<p>" + strings.Repeat("stored words ", 200) + "</p>"
	cms := &fakeCMS{
		categories: testCategories,
		future: []wordpress.Post{
			{ID: 21, Title: wordpress.Rendered{Rendered: "Stored Words Guide"}, Content: wordpress.Rendered{Rendered: long}},
		},
	}

	m := pipeline.NewMaintainer(cms, suffixEnhancer{"<!-- e -->"}, nil,
		pipeline.MaintainerConfig{Statuses: []string{"future"}}, logger.NewNop())
	report, err := m.Maintain(context.Background())
	require.NoError(t, err)

	require.Contains(t, cms.updates, 21)
	assert.Equal(t, map[string]any{"content": long + "<!-- e -->"}, cms.updates[21])
	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeUpdated, report.Results[0].Outcome)
}

func TestMaintainer_SkipsUnchangedPosts(t *testing.T) {
	long := "<p>" + strings.Repeat("stored words ", 200) + "</p>"
	cms := &fakeCMS{
		categories: testCategories,
		future: []wordpress.Post{
			{ID: 21, Title: wordpress.Rendered{Rendered: "Stored Words Guide"}, Content: wordpress.Rendered{Rendered: long}},
		},
	}

	m := pipeline.NewMaintainer(cms, suffixEnhancer{}, nil,
		pipeline.MaintainerConfig{Statuses: []string{"future"}}, logger.NewNop())
	report, err := m.Maintain(context.Background())
	require.NoError(t, err)

	assert.Empty(t, cms.updates)
	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeUnchanged, report.Results[0].Outcome)
}

// truncatingEnhancer simulates an enhancement bug that destroys content.
type truncatingEnhancer struct{}

func (truncatingEnhancer) Enhance(_ context.Context, _, _, _ string) string {
	return "<p>oops</p>"
}

func TestMaintainer_BlocksImplausibleShrinkage(t *testing.T) {
	long := "<p>" + strings.Repeat("stored words ", 200) + "</p>"
	cms := &fakeCMS{
		categories: testCategories,
		future: []wordpress.Post{
			{ID: 21, Title: wordpress.Rendered{Rendered: "Stored Words Guide"}, Content: wordpress.Rendered{Rendered: long}},
		},
	}

	m := pipeline.NewMaintainer(cms, truncatingEnhancer{}, nil,
		pipeline.MaintainerConfig{Statuses: []string{"future"}}, logger.NewNop())
	report, err := m.Maintain(context.Background())
	require.NoError(t, err)

	assert.Empty(t, cms.updates)
	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeRejected, report.Results[0].Outcome)
	assert.Equal(t, "plausibility", report.Results[0].Stage)
	assert.Contains(t, report.Results[0].Detail, "implausibly short")
}

func TestMaintainer_RegeneratesBrokenPosts(t *testing.T) {
	fresh := "<h2>Retros That Work</h2><p>" + strings.Repeat("practical retro advice ", 50) + "</p>"
	cms := &fakeCMS{
		categories: testCategories,
		future: []wordpress.Post{
			{
				ID:         31,
				Title:      wordpress.Rendered{Rendered: "How to Run Retros"},
				Content:    wordpress.Rendered{Rendered: "<p>tiny stub</p>"},
				Categories: []int{3},
			},
		},
	}
	gen := &stubGen{body: fresh}

	m := pipeline.NewMaintainer(cms, suffixEnhancer{"<!-- e -->"}, gen,
		pipeline.MaintainerConfig{MinPlausibleWords: 50, Statuses: []string{"future"}}, logger.NewNop())
	report, err := m.Maintain(context.Background())
	require.NoError(t, err)

	require.Contains(t, cms.updates, 31)
	assert.Equal(t, fresh+"<!-- e -->", cms.updates[31]["content"])
	require.Len(t, report.Results, 1)
	assert.Equal(t, models.OutcomeUpdated, report.Results[0].Outcome)
}

func TestMaintainer_RegeneratedBodyGetsInternalLinks(t *testing.T) {
	fresh := `<h2>Retros That Work</h2><p>See <a href="{{INTERNAL_LINK_1}}">this primer</a>. ` +
		strings.Repeat("practical retro advice ", 50) + "</p>"
	cms := &fakeCMS{
		categories: testCategories,
		future: []wordpress.Post{
			{
				ID:         31,
				Title:      wordpress.Rendered{Rendered: "How to Run Retros"},
				Content:    wordpress.Rendered{Rendered: "<p>tiny stub</p>"},
				Categories: []int{3},
			},
		},
		published: []wordpress.Post{
			// The post under repair must never link to itself.
			{ID: 31, Link: "https://blog.example/how-to-run-retros", Categories: []int{3}},
			{ID: 41, Link: "https://blog.example/retro-basics", Categories: []int{3}},
		},
	}
	gen := &stubGen{body: fresh}

	m := pipeline.NewMaintainer(cms, suffixEnhancer{"<!-- e -->"}, gen,
		pipeline.MaintainerConfig{MinPlausibleWords: 50, Statuses: []string{"future"}}, logger.NewNop())
	_, err := m.Maintain(context.Background())
	require.NoError(t, err)

	require.Contains(t, cms.updates, 31)
	content, _ := cms.updates[31]["content"].(string)
	assert.Contains(t, content, `href="https://blog.example/retro-basics"`)
	assert.NotContains(t, content, "how-to-run-retros")
	assert.NotContains(t, content, "INTERNAL_LINK")
}
