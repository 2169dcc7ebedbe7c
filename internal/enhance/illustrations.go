package enhance

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/reloadpress/autopost/internal/models"
)

// ImageResolver supplies deduplicated illustrations for a topic. The
// per-call exclusion set prevents reuse within one article.
type ImageResolver interface {
	Resolve(ctx context.Context, topic string, exclude map[string]struct{}) models.ImageRef
}

var tailHeadingPattern = regexp.MustCompile(`(?i)^\s*(faqs?|conclusion|next steps)\b`)

// positionVariant varies the search query and alt text per insertion
// position so the three illustrations do not look like triplets.
type positionVariant struct {
	querySuffix string
	altSuffix   string
}

var positionVariants = []positionVariant{
	{querySuffix: "", altSuffix: "cover"},
	{querySuffix: " software workflow", altSuffix: "example"},
	{querySuffix: " checklist", altSuffix: "checklist"},
}

// ensureIllustrations tops the body up to target inline images. Anchors
// are chosen by scanning block-level elements in document order, so
// placement scales with article length instead of character offsets.
func ensureIllustrations(ctx context.Context, htmlIn, topic string, resolver ImageResolver, target int) (string, error) {
	if target <= 0 || resolver == nil {
		return htmlIn, nil
	}
	if strings.Contains(htmlIn, illustrationsMarker) {
		return htmlIn, nil
	}

	doc, err := parseFragment(htmlIn)
	if err != nil {
		return "", err
	}

	current := doc.Find("img").Length()
	if current >= target {
		return htmlIn, nil
	}
	need := target - current

	exclude := make(map[string]struct{})
	anchors := insertionAnchors(doc)
	for i := 0; i < need; i++ {
		variant := positionVariants[i%len(positionVariants)]
		ref := resolver.Resolve(ctx, topic+variant.querySuffix, exclude)
		figure := figureHTML(ref.URL, topic+" "+variant.altSuffix)
		anchors[i%len(anchors)](figure)
	}

	out, err := renderFragment(doc)
	if err != nil {
		return "", err
	}
	return out + "\n" + illustrationsMarker, nil
}

// insertionAnchors returns the top/middle/bottom insert functions for
// the current document state.
func insertionAnchors(doc *goquery.Document) []func(html string) {
	body := doc.Find("body")
	blocks := doc.Find(blockSelector)

	top := func(h string) { body.PrependHtml(h) }
	if heading := doc.Find(headingSelector).First(); heading.Length() > 0 {
		top = func(h string) { heading.BeforeHtml(h) }
	} else if likely := firstLikelyHeadingBlock(blocks); likely != nil {
		top = func(h string) { likely.BeforeHtml(h) }
	}

	mid := func(h string) { body.AppendHtml(h) }
	if blocks.Length() > 1 {
		midBlock := blocks.Eq(blocks.Length() / 2)
		mid = func(h string) { midBlock.BeforeHtml(h) }
	}

	bottom := func(h string) { body.AppendHtml(h) }
	doc.Find(headingSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if tailHeadingPattern.MatchString(s.Text()) {
			bottom = func(h string) { s.BeforeHtml(h) }
			return false
		}
		return true
	})

	return []func(string){top, mid, bottom}
}

func firstLikelyHeadingBlock(blocks *goquery.Selection) *goquery.Selection {
	var found *goquery.Selection
	blocks.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) == "p" && IsLikelyHeading(s.Text(), DefaultHeadingRules) {
			found = s
			return false
		}
		return true
	})
	return found
}

func figureHTML(url, alt string) string {
	return fmt.Sprintf(
		`<figure class="wp-block-image"><img src="%s" alt="%s" loading="lazy" style="width:100%%;border-radius:14px;margin:26px 0;"/></figure>`,
		html.EscapeString(url), html.EscapeString(alt),
	)
}
