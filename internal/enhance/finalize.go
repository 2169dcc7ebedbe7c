package enhance

import (
	"regexp"
	"strings"
)

var (
	emptyParagraphRunPattern = regexp.MustCompile(`(?i)(<p>\s*(?:&nbsp;|\s)*</p>\s*){2,}`)
	breakRunPattern          = regexp.MustCompile(`(?i)(<br\s*/?>\s*){3,}`)
	blankLineRunPattern      = regexp.MustCompile(`\n{3,}`)
)

// finalize normalizes the fragment: runs of empty paragraphs and break
// tags collapse to a single one, and excess blank lines shrink.
func finalize(html string) (string, error) {
	html = emptyParagraphRunPattern.ReplaceAllString(html, "<p></p>\n")
	html = breakRunPattern.ReplaceAllString(html, "<br/>\n")
	html = blankLineRunPattern.ReplaceAllString(html, "\n\n")
	return strings.TrimSpace(html), nil
}
