package rotation

import (
	"strings"

	"github.com/reloadpress/autopost/internal/models"
)

// ClassifyTitle maps a rendered post title back onto the type pattern.
// Only the INFO/VS distinction is recoverable from a title; everything
// that is not recognizably head-to-head counts as INFO.
func ClassifyTitle(title string) models.ContentType {
	t := strings.ToLower(models.StripTags(title))
	switch {
	case strings.Contains(t, " vs "),
		strings.Contains(t, " vs: "),
		strings.Contains(t, " versus "),
		strings.HasPrefix(t, "vs "):
		return models.TypeVS
	default:
		return models.TypeInfo
	}
}

// HistoryFromTitles classifies a newest-first title list into the
// observed content-type history used by NextInSequence.
func HistoryFromTitles(titlesNewestFirst []string) []models.ContentType {
	history := make([]models.ContentType, 0, len(titlesNewestFirst))
	for _, t := range titlesNewestFirst {
		history = append(history, ClassifyTitle(t))
	}
	return history
}
