package feishu

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

// Reply sends a plain text message to a chat. Each call carries a fresh uuid
// so platform-side retries cannot duplicate the message.
func (c *Client) Reply(ctx context.Context, chatID, text string) error {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal text content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(content)).
			Uuid(uuid.NewString()).
			Build()).
		Build()

	resp, err := c.api.Im.V1.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message failed: %s (code: %d)", resp.Msg, resp.Code)
	}
	return nil
}

// QuotedText fetches a message by id and returns its plain text, used to pull
// in the message a user replied to. Non-text messages yield an empty string.
func (c *Client) QuotedText(ctx context.Context, messageID string) (string, error) {
	req := larkim.NewGetMessageReqBuilder().
		MessageId(messageID).
		Build()

	resp, err := c.api.Im.V1.Message.Get(ctx, req)
	if err != nil {
		return "", fmt.Errorf("get message: %w", err)
	}
	if !resp.Success() {
		return "", fmt.Errorf("get message failed: %s (code: %d)", resp.Msg, resp.Code)
	}
	if len(resp.Data.Items) == 0 {
		return "", nil
	}

	item := resp.Data.Items[0]
	if item.MsgType == nil || *item.MsgType != larkim.MsgTypeText {
		return "", nil
	}
	if item.Body == nil || item.Body.Content == nil {
		return "", nil
	}
	return TextFromContent(*item.Body.Content), nil
}

// TextFromContent extracts the text field from a message content payload.
// Returns the empty string when the payload is not a text body.
func TextFromContent(raw string) string {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return ""
	}
	return body.Text
}
