package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGateDirectChatAlwaysPasses(t *testing.T) {
	t.Parallel()

	ev := Inbound{ChatType: ChatP2P}
	assert.True(t, ShouldProcess(ev, ""))
	assert.True(t, ShouldProcess(ev, "ou_bot"))
}

func TestGateGroupWithoutBotIDRequiresAnyMention(t *testing.T) {
	t.Parallel()

	ev := Inbound{ChatType: ChatGroup}
	assert.False(t, ShouldProcess(ev, ""))

	ev.Mentions = []Mention{{Key: "@_user_1", OpenID: "ou_somebody"}}
	assert.True(t, ShouldProcess(ev, ""))
}

func TestGateGroupWithBotIDMatchesIdentifiers(t *testing.T) {
	t.Parallel()

	ev := Inbound{ChatType: ChatGroup, Mentions: []Mention{
		{Key: "@_user_1", OpenID: "ou_other"},
		{Key: "@_user_2", OpenID: "ou_bot"},
	}}
	assert.True(t, ShouldProcess(ev, "ou_bot"))

	ev.Mentions = []Mention{{Key: "@_user_1", OpenID: "ou_other"}}
	assert.False(t, ShouldProcess(ev, "ou_bot"))
}

func TestGateGroupAppIDAcceptsFirstMention(t *testing.T) {
	t.Parallel()

	// App ids never show up as mention open ids, so the first mention
	// placeholder stands in for the bot.
	ev := Inbound{ChatType: ChatGroup, Mentions: []Mention{{Key: "@_user_1", OpenID: "ou_other"}}}
	assert.True(t, ShouldProcess(ev, "cli_a1b2c3"))

	ev.Mentions = []Mention{{Key: "@_user_2", OpenID: "ou_other"}}
	assert.False(t, ShouldProcess(ev, "cli_a1b2c3"))
}

func TestGateMatchesUserIDField(t *testing.T) {
	t.Parallel()

	ev := Inbound{ChatType: ChatGroup, Mentions: []Mention{{Key: "@_user_1", UserID: "bot-uid"}}}
	assert.True(t, ShouldProcess(ev, "bot-uid"))
}

func TestCleanTextStripsMentionMarkup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "分析这个表", CleanText("@_user_1 分析这个表"))
	assert.Equal(t, "你好 世界", CleanText("  你好 _user_2   世界 "))
	assert.Equal(t, "", CleanText("@_user_1"))
	assert.Equal(t, "", CleanText("   "))
}
