package generate

import (
	"regexp"
	"strconv"
	"strings"
)

var internalLinkPattern = regexp.MustCompile(`\{\{INTERNAL_LINK_(\d+)\}\}`)

// HasInternalLinks reports whether body still carries link tokens.
func HasInternalLinks(body string) bool {
	return strings.Contains(body, "{{INTERNAL_LINK_")
}

// ReplaceInternalLinks swaps each {{INTERNAL_LINK_N}} token for the Nth
// URL. Tokens without a matching URL become "#" so the surrounding
// anchor still renders instead of leaking the raw token.
func ReplaceInternalLinks(body string, urls []string) string {
	return internalLinkPattern.ReplaceAllStringFunc(body, func(m string) string {
		sub := internalLinkPattern.FindStringSubmatch(m)
		n, err := strconv.Atoi(sub[1])
		if err != nil || n < 1 || n > len(urls) || strings.TrimSpace(urls[n-1]) == "" {
			return "#"
		}
		return urls[n-1]
	})
}
