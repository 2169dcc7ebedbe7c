package enhance

import (
	"strings"
	"unicode"
)

// HeadingRules is the rule set for classifying a text line as a likely
// section heading. The rules are explicit parameters rather than inline
// heuristics so they can be tuned and tested independently.
type HeadingRules struct {
	// MaxLength is the longest text still plausible as a heading.
	MaxLength int
	// MaxWords is the most words still plausible as a heading.
	MaxWords int
	// TrailingColon treats "Setup steps:" style lines as headings.
	TrailingColon bool
	// LeadingDigit treats "3. Pick a tool" style lines as headings.
	LeadingDigit bool
}

// DefaultHeadingRules matches the short, label-like lines generators
// tend to emit in place of real heading tags.
var DefaultHeadingRules = HeadingRules{
	MaxLength:     80,
	MaxWords:      10,
	TrailingColon: true,
	LeadingDigit:  true,
}

// IsLikelyHeading reports whether text reads like a section heading
// under the given rules. Empty text never qualifies, and a line ending
// in sentence punctuation is prose regardless of length.
func IsLikelyHeading(text string, rules HeadingRules) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	if len(t) > rules.MaxLength {
		return false
	}
	if strings.Count(t, " ") >= rules.MaxWords {
		return false
	}

	switch {
	case strings.HasSuffix(t, "."), strings.HasSuffix(t, ","), strings.HasSuffix(t, ";"):
		return false
	case strings.HasSuffix(t, ":"):
		return rules.TrailingColon
	}

	first := []rune(t)[0]
	if unicode.IsDigit(first) {
		return rules.LeadingDigit
	}
	return unicode.IsUpper(first)
}
