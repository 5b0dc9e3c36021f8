package prune

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentShortPassesThrough(t *testing.T) {
	t.Parallel()

	s := "短文档"
	assert.Equal(t, s, Document(s, 100))
}

func TestDocumentCutsOnRuneBoundary(t *testing.T) {
	t.Parallel()

	s := strings.Repeat("数", 100) // 3 bytes per rune
	out := Document(s, 10)
	assert.True(t, strings.HasSuffix(out, DocMarker))
	body := strings.TrimSuffix(out, DocMarker)
	assert.True(t, len(body) <= 10)
	assert.True(t, strings.HasPrefix(s, body))
}

func TestRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", Runes("abc", 5))
	assert.Equal(t, "ab...", Runes("abcdef", 2))
	assert.Equal(t, "中文...", Runes("中文内容很长", 2))
	assert.Equal(t, "", Runes("abc", 0))
}
