package domain

import (
	"strings"
)

// NormalizeText prepares free text for storage and comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses runs of spaces into one
//
// Punctuation and non-ASCII characters are preserved.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
