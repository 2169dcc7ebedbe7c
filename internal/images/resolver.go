package images

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"regexp"
	"strings"

	"github.com/reloadpress/autopost/internal/logger"
	"github.com/reloadpress/autopost/internal/models"
)

// qualifyingAdjectives diversify repeated queries for the same topic so
// the search index does not keep returning the same first page.
var qualifyingAdjectives = []string{
	"modern", "minimal", "professional", "creative", "workspace", "team",
}

// Resolver turns a topic keyword into an ImageRef, enforcing dedup
// against both the per-post exclusion set and the durable registry.
type Resolver struct {
	search   SearchService
	registry Registry
	rand     *rand.Rand
	logger   logger.Logger
}

// NewResolver creates a Resolver. search may be nil, in which case every
// resolution takes the placeholder path.
func NewResolver(search SearchService, registry Registry, rng *rand.Rand, log logger.Logger) *Resolver {
	if registry == nil {
		registry = NewMemoryRegistry()
	}
	return &Resolver{search: search, registry: registry, rand: rng, logger: log}
}

// Resolve returns an illustration for topic whose source identifier is
// in neither exclude nor the durable registry. It never fails: when the
// search service is unavailable, rate-limited, or fully exhausted, it
// degrades to a synthetically seeded placeholder, which carries no
// source identifier and is exempt from dedup.
func (r *Resolver) Resolve(ctx context.Context, topic string, exclude map[string]struct{}) models.ImageRef {
	if r.search != nil {
		if ref, ok := r.fromSearch(ctx, topic, exclude); ok {
			return ref
		}
		if ref, ok := r.fromRandom(ctx, topic); ok {
			return ref
		}
	}

	ref := models.ImageRef{URL: PlaceholderURL(topic)}
	r.logger.Debug("image resolution fell back to placeholder",
		logger.String("topic", topic),
		logger.String("url", ref.URL),
	)
	return ref
}

func (r *Resolver) fromSearch(ctx context.Context, topic string, exclude map[string]struct{}) (models.ImageRef, bool) {
	query := topic
	if r.rand != nil && len(qualifyingAdjectives) > 0 {
		query = topic + " " + qualifyingAdjectives[r.rand.Intn(len(qualifyingAdjectives))]
	}

	photos, err := r.search.Search(ctx, query)
	if err != nil {
		r.logger.Warn("image search failed, using placeholder",
			logger.String("topic", topic),
			logger.Error(err),
		)
		return models.ImageRef{}, false
	}

	if r.rand != nil {
		r.rand.Shuffle(len(photos), func(i, j int) {
			photos[i], photos[j] = photos[j], photos[i]
		})
	}

	for _, p := range photos {
		if _, used := exclude[p.ID]; used {
			continue
		}
		if r.registry.Contains(ctx, p.ID) {
			continue
		}

		// Persist the claim immediately: a crash mid-batch must not
		// replay already-issued identifiers.
		if err := r.registry.Add(ctx, p.ID); err != nil {
			r.logger.Warn("failed to persist used image, using placeholder",
				logger.String("source_id", p.ID),
				logger.Error(err),
			)
			return models.ImageRef{}, false
		}
		if exclude != nil {
			exclude[p.ID] = struct{}{}
		}
		return models.ImageRef{URL: p.URL, SourceID: p.ID}, true
	}

	r.logger.Debug("search page exhausted, no unused image",
		logger.String("topic", topic),
		logger.Int("page_size", len(photos)),
	)
	return models.ImageRef{}, false
}

// fromRandom asks the search service for a single random image after
// the result page is exhausted. The URL carries no source identifier,
// so like the placeholder it is exempt from dedup.
func (r *Resolver) fromRandom(ctx context.Context, topic string) (models.ImageRef, bool) {
	u, err := r.search.Random(ctx, topic)
	if err != nil || u == "" {
		if err != nil {
			r.logger.Debug("random image lookup failed",
				logger.String("topic", topic),
				logger.Error(err),
			)
		}
		return models.ImageRef{}, false
	}
	return models.ImageRef{URL: u}, true
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// PlaceholderURL builds a deterministic seeded placeholder image URL for
// a topic. Distinct topics hash to distinct seeds, which keeps fallback
// illustrations visually varied without any external dependency.
func PlaceholderURL(topic string) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(topic), "-"), "-")
	if len(slug) > 40 {
		slug = slug[:40]
	}
	if slug == "" {
		slug = "article"
	}

	h := fnv.New32a()
	h.Write([]byte(topic))
	return fmt.Sprintf("https://picsum.photos/seed/%s-%x/1200/800", slug, h.Sum32())
}
