// Package dispatch routes normalized inbound chat events: mention gating,
// intent classification, action execution, history bookkeeping, and the
// outbound reply, as one state machine per event.
package dispatch

import "github.com/deskbotai/larkgw/internal/history"

// ChatType distinguishes direct chats from group chats.
type ChatType string

const (
	ChatP2P   ChatType = "p2p"
	ChatGroup ChatType = "group"
)

// Mention is one @-mention carried by a group message. Key is the positional
// placeholder in the message text (for example @_user_1); OpenID and UserID
// are the identifiers the platform resolved for the mention, either of which
// may be empty.
type Mention struct {
	Key    string
	OpenID string
	UserID string
	Name   string
}

// Inbound is a platform message normalized for dispatch. Exactly one of Text
// or Attachment is meaningful: Attachment is non-nil for file, image, and
// media messages, Text carries the extracted plain text otherwise.
type Inbound struct {
	MessageID string
	ChatID    string
	ChatType  ChatType
	SenderID  string
	ParentID  string
	Mentions  []Mention

	Text       string
	Attachment *history.FileEntry
}
