package enhance

import "regexp"

// Generation quirks that appear outside tags, so the cleanup operates
// on raw text, not the DOM.
var (
	// Stray internal control tokens like "rp:intro_v2" on their own line.
	controlTokenPattern = regexp.MustCompile(`(?m)^\s*rp:[a-zA-Z0-9_]+\s*$`)

	// Orphan punctuation lines, most commonly a lone question mark.
	orphanPunctPattern = regexp.MustCompile(`(?m)^\s*[?¿!]\s*$`)

	// Markdown code fences wrapping the whole payload.
	leadingFencePattern  = regexp.MustCompile("^\\s*```[a-zA-Z0-9_-]*\\s*")
	trailingFencePattern = regexp.MustCompile("\\s*```\\s*$")

	// Internal-link placeholders that never got a real URL, usually
	// sitting inside an href attribute of a stored post.
	unresolvedLinkPattern = regexp.MustCompile(`\{\{INTERNAL_LINK_\d+\}\}`)
)

// cleanArtifacts strips control tokens and fence debris left by the
// generation service. Running it twice is a no-op because the matched
// text no longer exists.
func cleanArtifacts(html string) (string, error) {
	html = leadingFencePattern.ReplaceAllString(html, "")
	html = trailingFencePattern.ReplaceAllString(html, "")
	html = controlTokenPattern.ReplaceAllString(html, "")
	html = orphanPunctPattern.ReplaceAllString(html, "")
	// "#" keeps the anchor rendering; a stripped href would leave a
	// dead <a href=""> in the published body.
	html = unresolvedLinkPattern.ReplaceAllString(html, "#")
	return html, nil
}
