package pipeline

import (
	"context"
	"strings"

	"github.com/reloadpress/autopost/internal/logger"
	"github.com/reloadpress/autopost/internal/wordpress"
)

// relatedLinkLimit caps how many cross-links one post receives, matching
// the two placeholder slots the generation prompt offers.
const relatedLinkLimit = 2

// relatedLinks returns URLs of the most recent published posts in the
// same category, excluding the post being worked on. Lookup failure
// degrades to no links; the unresolved placeholders then collapse to
// "#" during enhancement.
func relatedLinks(ctx context.Context, cms CMS, log logger.Logger, categoryID, excludeID int) []string {
	if categoryID == 0 {
		return nil
	}

	posts, err := cms.ListPosts(ctx, wordpress.ListOptions{
		Status:   "publish",
		Category: categoryID,
		PerPage:  relatedLinkLimit * 3,
		MaxPages: 1,
	})
	if err != nil {
		log.Warn("related post lookup failed, cross-links dropped",
			logger.Int("category_id", categoryID),
			logger.Error(err),
		)
		return nil
	}

	urls := make([]string, 0, relatedLinkLimit)
	for _, p := range posts {
		if p.ID == excludeID || strings.TrimSpace(p.Link) == "" {
			continue
		}
		urls = append(urls, p.Link)
		if len(urls) == relatedLinkLimit {
			break
		}
	}
	return urls
}
