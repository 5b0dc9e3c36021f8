package feishu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextFromContent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "你好", TextFromContent(`{"text":"你好"}`))
	assert.Equal(t, "", TextFromContent(`not json`))
	assert.Equal(t, "", TextFromContent(`{"image_key":"x"}`))
}
