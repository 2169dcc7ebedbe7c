package generate

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

var (
	fenceOpenPattern = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")
	titlePrefixStrip = regexp.MustCompile(`(?i)^(title\s*:\s*|#+\s*)`)
	markdownHeading  = regexp.MustCompile(`(?m)^#{1,4}\s+\S`)
	markdownListItem = regexp.MustCompile(`(?m)^[-*]\s+\S`)
	htmlBlockElement = regexp.MustCompile(`(?i)<(p|h[1-4]|ul|ol|table|div|figure)\b`)
)

// CleanFences strips a wrapping markdown code fence that models add
// around otherwise well-formed output.
func CleanFences(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) >= 2 && fenceOpenPattern.MatchString(lines[0]) && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[1 : len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// CleanTitle strips quoting, heading markers, and trailing punctuation
// from a model-produced title line.
func CleanTitle(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, `"'`)
	s = titlePrefixStrip.ReplaceAllString(s, "")
	s = strings.TrimRight(s, ".!: ")
	return strings.TrimSpace(s)
}

// Draft is a shaped single-call model output.
type Draft struct {
	Title    string
	Keywords []string
	Body     string
}

// ShapeDraft parses the title-first draft format: first non-empty line
// is the title, an optional "Keywords:" line follows, the rest is the
// body. Used for recovery flows where the model returns the whole post
// in one completion.
func ShapeDraft(raw string) (Draft, error) {
	raw = CleanFences(raw)
	lines := strings.Split(raw, "\n")

	var d Draft
	i := 0
	for ; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			d.Title = CleanTitle(lines[i])
			i++
			break
		}
	}
	if d.Title == "" {
		return Draft{}, fmt.Errorf("draft has no title line")
	}

	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), "keywords:") {
			rest := line[len("keywords:"):]
			for _, kw := range strings.Split(rest, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					d.Keywords = append(d.Keywords, kw)
				}
			}
			i++
		}
		break
	}

	body, err := ToHTML(strings.Join(lines[i:], "\n"))
	if err != nil {
		return Draft{}, err
	}
	d.Body = body
	if d.Body == "" {
		return Draft{}, fmt.Errorf("draft %q has no body", d.Title)
	}
	return d, nil
}

// ToHTML accepts a model draft body and returns HTML. Markdown drafts
// are rendered; drafts that already contain block-level HTML pass
// through unchanged.
func ToHTML(body string) (string, error) {
	body = CleanFences(body)
	if !looksLikeMarkdown(body) {
		return body, nil
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// looksLikeMarkdown detects drafts that ignored the HTML instruction.
// Block-level HTML wins over incidental markdown punctuation.
func looksLikeMarkdown(body string) bool {
	if htmlBlockElement.MatchString(body) {
		return false
	}
	return markdownHeading.MatchString(body) || markdownListItem.MatchString(body) ||
		strings.Contains(body, "**")
}
