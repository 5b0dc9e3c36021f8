package feishu

import (
	"context"
	"fmt"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

// ChatMember is one group member as returned by the membership API.
type ChatMember struct {
	MemberID string
	Name     string
}

// DisplayName resolves the name shown for a member. The membership API omits
// names for some tenant configurations; those members render as a truncated
// id instead of an empty string.
func (m ChatMember) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	id := m.MemberID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("用户 %s", id)
}

// ChatMembers lists the members of a group chat, paging until exhausted.
func (c *Client) ChatMembers(ctx context.Context, chatID string) ([]ChatMember, error) {
	var (
		members   []ChatMember
		pageToken string
	)
	for {
		builder := larkim.NewGetChatMembersReqBuilder().
			ChatId(chatID).
			MemberIdType("open_id").
			PageSize(100)
		if pageToken != "" {
			builder.PageToken(pageToken)
		}

		resp, err := c.api.Im.V1.ChatMembers.Get(ctx, builder.Build())
		if err != nil {
			return nil, fmt.Errorf("list chat members: %w", err)
		}
		if !resp.Success() {
			return nil, fmt.Errorf("list chat members failed: %s (code: %d)", resp.Msg, resp.Code)
		}

		for _, item := range resp.Data.Items {
			member := ChatMember{}
			if item.MemberId != nil {
				member.MemberID = *item.MemberId
			}
			if item.Name != nil {
				member.Name = *item.Name
			}
			members = append(members, member)
		}

		if resp.Data.HasMore == nil || !*resp.Data.HasMore || resp.Data.PageToken == nil || *resp.Data.PageToken == "" {
			return members, nil
		}
		pageToken = *resp.Data.PageToken
	}
}
