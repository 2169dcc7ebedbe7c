package generate

import (
	"fmt"
	"strings"

	"github.com/reloadpress/autopost/internal/models"
)

const titleSystem = `You are an editor for a software tooling blog. You write specific,
useful article titles. Reply with the title only: no quotes, no numbering,
no trailing punctuation.`

const articleSystem = `You are a staff writer for a software tooling blog. You write
practical, skimmable articles in clean HTML (h2, p, ul, ol, table only;
no head, no body, no inline styles). Never include prices, subscription
costs, or currency amounts. Where an illustration would help, place one
of the tokens [IMAGE_TOP], [IMAGE_MID], [IMAGE_BOT] on its own line, at
most once each.`

func titlePrompt(category string, ctype models.ContentType, avoid []string) string {
	var b strings.Builder
	switch ctype {
	case models.TypeVS:
		fmt.Fprintf(&b, "Write one head-to-head comparison title in the %q category. ", category)
		b.WriteString(`It must name two real, comparable tools joined by "vs". `)
	default:
		fmt.Fprintf(&b, "Write one informational how-to or guide title in the %q category. ", category)
		b.WriteString("It must promise a concrete outcome for a small team. ")
	}
	if len(avoid) > 0 {
		b.WriteString("Do not reuse or closely paraphrase any of these recent titles:\n")
		for _, t := range avoid {
			b.WriteString("- " + t + "\n")
		}
	}
	return b.String()
}

func articlePrompt(title, category string, ctype models.ContentType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write the full article for the title %q (category: %s).\n", title, category)
	switch ctype {
	case models.TypeVS:
		b.WriteString(`Structure: short intro, a "How they differ" section, one HTML
comparison table of features (no pricing column), a section on who should
pick which, an FAQ section with three questions, and a Conclusion.`)
	default:
		b.WriteString(`Structure: short intro, three to five h2 sections with concrete
steps or criteria, an FAQ section with three questions, and a Conclusion
with next steps.`)
	}
	b.WriteString(`
Where a pointer to a related article on this site fits naturally, add up
to two anchors using the placeholders {{INTERNAL_LINK_1}} and
{{INTERNAL_LINK_2}} as the href value; the descriptive anchor text is
yours, the URLs are filled in later. Do not invent URLs.`)
	b.WriteString("\nTarget 900-1400 words. HTML only, start directly with the first element.")
	return b.String()
}
