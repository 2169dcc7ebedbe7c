package images_test

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reloadpress/autopost/internal/images"
	"github.com/reloadpress/autopost/internal/logger"
)

type fakeSearch struct {
	photos    []images.Photo
	err       error
	calls     int
	randomURL string
}

func (f *fakeSearch) Search(context.Context, string) ([]images.Photo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// Return a copy so shuffling does not mutate the fixture.
	out := make([]images.Photo, len(f.photos))
	copy(out, f.photos)
	return out, nil
}

func (f *fakeSearch) Random(context.Context, string) (string, error) {
	if f.randomURL == "" {
		return "", errors.New("random endpoint unavailable")
	}
	return f.randomURL, nil
}

func newResolver(search images.SearchService, registry images.Registry) *images.Resolver {
	return images.NewResolver(search, registry, rand.New(rand.NewSource(1)), logger.NewNop())
}

func TestResolver_ReturnsUnusedPhoto(t *testing.T) {
	search := &fakeSearch{photos: []images.Photo{
		{ID: "a", URL: "https://img.example/a"},
		{ID: "b", URL: "https://img.example/b"},
	}}
	registry := images.NewMemoryRegistry()

	ref := newResolver(search, registry).Resolve(context.Background(), "crm tools", map[string]struct{}{})

	require.False(t, ref.Fallback())
	assert.Contains(t, []string{"a", "b"}, ref.SourceID)
	assert.True(t, registry.Contains(context.Background(), ref.SourceID))
}

func TestResolver_DedupAcrossCalls(t *testing.T) {
	search := &fakeSearch{photos: []images.Photo{
		{ID: "a", URL: "u-a"},
		{ID: "b", URL: "u-b"},
		{ID: "c", URL: "u-c"},
	}}
	registry := images.NewMemoryRegistry()
	resolver := newResolver(search, registry)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		ref := resolver.Resolve(context.Background(), "crm", map[string]struct{}{})
		require.False(t, ref.Fallback())
		assert.False(t, seen[ref.SourceID], "source id %q issued twice", ref.SourceID)
		seen[ref.SourceID] = true
	}

	// Page exhausted: the fourth call must fall back, not repeat.
	ref := resolver.Resolve(context.Background(), "crm", map[string]struct{}{})
	assert.True(t, ref.Fallback())
}

func TestResolver_RespectsPerPostExclusion(t *testing.T) {
	search := &fakeSearch{photos: []images.Photo{
		{ID: "a", URL: "u-a"},
		{ID: "b", URL: "u-b"},
	}}
	resolver := newResolver(search, images.NewMemoryRegistry())

	exclude := map[string]struct{}{"a": {}, "b": {}}
	ref := resolver.Resolve(context.Background(), "crm", exclude)

	assert.True(t, ref.Fallback())
}

func TestResolver_RecordsIssuedIDInExclusionSet(t *testing.T) {
	search := &fakeSearch{photos: []images.Photo{{ID: "a", URL: "u-a"}}}
	resolver := newResolver(search, images.NewMemoryRegistry())

	exclude := map[string]struct{}{}
	ref := resolver.Resolve(context.Background(), "crm", exclude)

	require.Equal(t, "a", ref.SourceID)
	_, recorded := exclude["a"]
	assert.True(t, recorded)
}

func TestResolver_ExhaustedPageFallsBackToRandom(t *testing.T) {
	search := &fakeSearch{
		photos:    []images.Photo{{ID: "a", URL: "u-a"}},
		randomURL: "https://img.example/random.jpg",
	}
	resolver := newResolver(search, images.NewMemoryRegistry())

	exclude := map[string]struct{}{"a": {}}
	ref := resolver.Resolve(context.Background(), "crm", exclude)

	// The random image beats the synthetic placeholder but carries no
	// source identifier, so it stays exempt from dedup.
	assert.Equal(t, "https://img.example/random.jpg", ref.URL)
	assert.Empty(t, ref.SourceID)
}

func TestResolver_SearchFailureFallsBack(t *testing.T) {
	search := &fakeSearch{err: errors.New("rate limited")}
	ref := newResolver(search, images.NewMemoryRegistry()).Resolve(context.Background(), "crm tools", nil)

	assert.True(t, ref.Fallback())
	assert.Contains(t, ref.URL, "picsum.photos/seed/")
}

func TestResolver_NilSearchFallsBack(t *testing.T) {
	resolver := images.NewResolver(nil, images.NewMemoryRegistry(), nil, logger.NewNop())
	ref := resolver.Resolve(context.Background(), "crm tools", nil)

	assert.True(t, ref.Fallback())
}

func TestPlaceholderURL(t *testing.T) {
	a := images.PlaceholderURL("CRM tools")
	b := images.PlaceholderURL("CRM tools")
	c := images.PlaceholderURL("email marketing")

	assert.Equal(t, a, b, "placeholder URLs are deterministic per topic")
	assert.NotEqual(t, a, c, "distinct topics get distinct seeds")
	assert.True(t, strings.HasPrefix(a, "https://picsum.photos/seed/crm-tools-"))
}
