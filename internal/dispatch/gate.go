package dispatch

import "strings"

// firstMentionKey is the placeholder the platform assigns to the first
// mention in a message.
const firstMentionKey = "@_user_1"

// ShouldProcess decides whether an event is addressed to the bot.
//
// Direct chats always pass. In group chats with a configured bot id, a
// mention must resolve to that id; app ids (cli_ prefix) never appear as
// mention open ids, so for those the first mention placeholder is accepted
// as the bot. Without a configured bot id any mention passes, which keeps
// the bot responsive at the cost of reacting to mentions of other members.
func ShouldProcess(ev Inbound, botID string) bool {
	if ev.ChatType != ChatGroup {
		return true
	}
	if botID == "" {
		return len(ev.Mentions) > 0
	}
	appID := strings.HasPrefix(botID, "cli_")
	for _, m := range ev.Mentions {
		if m.OpenID == botID || m.UserID == botID {
			return true
		}
		if appID && m.Key == firstMentionKey {
			return true
		}
	}
	return false
}
