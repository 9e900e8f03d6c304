package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateChars(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "hello", tp.TruncateChars("hello", 10))
	assert.Equal(t, "hel", tp.TruncateChars("hello", 3))
	assert.Equal(t, "hello", tp.TruncateChars("hello", 0))

	// counts characters, not bytes
	assert.Equal(t, "héé", tp.TruncateChars("héééé", 3))
	assert.Equal(t, "日本", tp.TruncateChars("日本語", 2))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "valid", tp.SanitizeUTF8("valid"))
	assert.Equal(t, "ab", tp.SanitizeUTF8("a\xffb"))
}

func TestExcerpt(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	body := strings.Repeat("a", 2500)
	assert.Len(t, tp.Excerpt(body, 2000), 2000)

	// "e" + combining acute composes to a single character under NFC
	assert.Equal(t, "\u00e9x", tp.Excerpt("e\u0301xyz", 2))
}
