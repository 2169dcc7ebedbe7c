package enhance

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseFragment parses a body fragment. goquery always builds a full
// document around it; render pulls the fragment back out of <body>.
func parseFragment(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func renderFragment(doc *goquery.Document) (string, error) {
	return doc.Find("body").Html()
}

// blockSelector lists the block-level elements scanned in document
// order when choosing structural insertion anchors.
const blockSelector = "body > p, body > h1, body > h2, body > h3, body > h4, body > ul, body > ol, body > table, body > div, body > section, body > blockquote, body > figure"

const headingSelector = "h1, h2, h3, h4"
