package generate

import "strings"

// Slot names an illustration position the article prompt may request.
type Slot string

const (
	SlotTop Slot = "top"
	SlotMid Slot = "mid"
	SlotBot Slot = "bot"
)

var placeholderTokens = map[Slot]string{
	SlotTop: "[IMAGE_TOP]",
	SlotMid: "[IMAGE_MID]",
	SlotBot: "[IMAGE_BOT]",
}

// ReplacePlaceholders swaps each image token for the HTML fill returns
// for its slot. An empty fill drops the token. Repeated tokens beyond
// the first occurrence are dropped.
func ReplacePlaceholders(body string, fill func(Slot) string) string {
	for slot, token := range placeholderTokens {
		if !strings.Contains(body, token) {
			continue
		}
		replacement := ""
		if fill != nil {
			replacement = fill(slot)
		}
		body = strings.Replace(body, token, replacement, 1)
		body = strings.ReplaceAll(body, token, "")
	}
	return body
}
