package router

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxReplyLen is the messaging channel's hard character cap.
const DefaultMaxReplyLen = 280

const continuation = " ..."

// Format enforces the channel length cap with graceful truncation.
//
// Text at or under the cap passes through unchanged. Longer text is cut to
// maxLen-4 runes, backed off to the previous word boundary when one is
// reasonably close, stripped of dangling punctuation, and suffixed with a
// continuation marker. Formatting an already-formatted string is a no-op,
// so the formatter can sit at the very end of the pipeline unconditionally.
func Format(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxReplyLen
	}
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	runes := []rune(text)
	cut := maxLen - len(continuation)
	head := runes[:cut]

	// Back off to a word boundary unless that would cost too much text.
	if idx := lastSpace(head); idx > cut*3/4 {
		head = head[:idx]
	}

	out := strings.TrimRight(string(head), " \t.,;:!?-")
	return out + continuation
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
