package generate

import (
	"strings"

	"github.com/reloadpress/autopost/internal/models"
)

// Score summarizes a draft's measurable quality signals.
type Score struct {
	Words         int
	Headings      int
	TitleCoverage float64
}

// Assess measures a draft body against its title. TitleCoverage is the
// fraction of significant title words that appear in the body text.
func Assess(html, title string) Score {
	text := strings.ToLower(models.StripTags(html))

	var score Score
	score.Words = len(strings.Fields(text))
	for _, tag := range []string{"<h2", "<h3"} {
		score.Headings += strings.Count(strings.ToLower(html), tag)
	}

	var significant, covered int
	for _, w := range strings.Fields(strings.ToLower(title)) {
		w = strings.Trim(w, `"'?,.:;()`)
		if len(w) <= 3 {
			continue
		}
		significant++
		if strings.Contains(text, w) {
			covered++
		}
	}
	if significant > 0 {
		score.TitleCoverage = float64(covered) / float64(significant)
	} else {
		score.TitleCoverage = 1
	}
	return score
}

// Acceptable reports whether the draft clears the publishing bar.
func (s Score) Acceptable(minWords int) bool {
	return s.Words >= minWords && s.Headings >= 1 && s.TitleCoverage >= 0.25
}
