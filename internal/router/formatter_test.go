package router

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestFormat_ShortTextUnchanged(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "hello", strings.Repeat("a", 280)} {
		assert.Equal(t, text, Format(text, 280))
	}
}

func TestFormat_TruncatesWithMarker(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 100)
	out := Format(long, 280)

	assert.LessOrEqual(t, utf8.RuneCountInString(out), 280)
	assert.True(t, strings.HasSuffix(out, "..."), "got %q", out)
}

func TestFormat_AvoidsMidWordCut(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("expenses are fun ", 30)
	out := Format(long, 100)

	trimmed := strings.TrimSuffix(out, " ...")
	assert.False(t, strings.HasSuffix(trimmed, "expens"),
		"cut should back off to a word boundary: %q", out)
	// The kept text must be a clean prefix of whole words.
	assert.True(t, strings.HasPrefix(long, trimmed+" "), "got %q", out)
}

func TestFormat_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"short",
		strings.Repeat("many words in a row ", 40),
		strings.Repeat("x", 500),
	}
	for _, in := range inputs {
		once := Format(in, 280)
		twice := Format(once, 280)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestFormat_LengthInvariant(t *testing.T) {
	t.Parallel()

	inputs := []string{
		strings.Repeat("a", 281),
		strings.Repeat("চা বিস্কুট ", 60),
		strings.Repeat("word ", 500),
	}
	for _, in := range inputs {
		out := Format(in, 280)
		assert.LessOrEqual(t, utf8.RuneCountInString(out), 280)
	}
}

func TestFormat_ZeroMaxUsesDefault(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 500)
	out := Format(long, 0)
	assert.LessOrEqual(t, utf8.RuneCountInString(out), DefaultMaxReplyLen)
}
