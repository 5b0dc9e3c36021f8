package webhook

import (
	"testing"

	"github.com/labstack/echo/v4"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskbotai/larkgw/internal/config"
	"github.com/deskbotai/larkgw/internal/dispatch"
	"github.com/deskbotai/larkgw/internal/feishu"
)

func TestValidateCallbackAuthEncryptKeyDelegatesToSDK(t *testing.T) {
	t.Parallel()

	cfg := config.FeishuConfig{EncryptKey: "secret"}
	assert.NoError(t, validateCallbackAuth([]byte(`{"encrypt":"..."}`), cfg))
}

func TestValidateCallbackAuthTokenMatch(t *testing.T) {
	t.Parallel()

	cfg := config.FeishuConfig{VerificationToken: "tok123"}
	assert.NoError(t, validateCallbackAuth([]byte(`{"token":"tok123","type":"event_callback"}`), cfg))

	err := validateCallbackAuth([]byte(`{"token":"wrong","type":"event_callback"}`), cfg)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 401, httpErr.Code)
}

func TestValidateCallbackAuthChallengePasses(t *testing.T) {
	t.Parallel()

	cfg := config.FeishuConfig{VerificationToken: "tok123"}
	assert.NoError(t, validateCallbackAuth([]byte(`{"type":"url_verification","challenge":"c1"}`), cfg))
}

func TestValidateCallbackAuthRequiresSomeCredential(t *testing.T) {
	t.Parallel()

	err := validateCallbackAuth([]byte(`{"type":"event_callback"}`), config.FeishuConfig{})
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 403, httpErr.Code)
}

func textEvent(chatType, text string, mentions []*larkim.MentionEvent) *larkim.P2MessageReceiveV1 {
	return &larkim.P2MessageReceiveV1{
		Event: &larkim.P2MessageReceiveV1Data{
			Sender: &larkim.EventSender{
				SenderId: &larkim.UserId{OpenId: larkcore.StringPtr("ou_sender")},
			},
			Message: &larkim.EventMessage{
				MessageId:   larkcore.StringPtr("om_1"),
				ChatId:      larkcore.StringPtr("oc_chat"),
				ChatType:    larkcore.StringPtr(chatType),
				MessageType: larkcore.StringPtr(larkim.MsgTypeText),
				ParentId:    larkcore.StringPtr("om_parent"),
				Content:     larkcore.StringPtr(`{"text":"` + text + `"}`),
				Mentions:    mentions,
			},
		},
	}
}

func TestInboundFromEventText(t *testing.T) {
	t.Parallel()

	ev, ok := inboundFromEvent(textEvent("group", "@_user_1 分析一下", []*larkim.MentionEvent{{
		Key:  larkcore.StringPtr("@_user_1"),
		Id:   &larkim.UserId{OpenId: larkcore.StringPtr("ou_bot")},
		Name: larkcore.StringPtr("bot"),
	}}))
	require.True(t, ok)

	assert.Equal(t, "om_1", ev.MessageID)
	assert.Equal(t, "oc_chat", ev.ChatID)
	assert.Equal(t, dispatch.ChatGroup, ev.ChatType)
	assert.Equal(t, "ou_sender", ev.SenderID)
	assert.Equal(t, "om_parent", ev.ParentID)
	assert.Equal(t, "@_user_1 分析一下", ev.Text)
	assert.Nil(t, ev.Attachment)
	require.Len(t, ev.Mentions, 1)
	assert.Equal(t, "ou_bot", ev.Mentions[0].OpenID)
}

func TestInboundFromEventFileAttachment(t *testing.T) {
	t.Parallel()

	event := textEvent("group", "", nil)
	event.Event.Message.MessageType = larkcore.StringPtr(larkim.MsgTypeFile)
	event.Event.Message.Content = larkcore.StringPtr(`{"file_key":"fk","file_name":"季度报表.xlsx"}`)

	ev, ok := inboundFromEvent(event)
	require.True(t, ok)
	require.NotNil(t, ev.Attachment)
	assert.Equal(t, "季度报表.xlsx", ev.Attachment.Name)
	assert.Equal(t, "Excel表格", ev.Attachment.Type)
	assert.Equal(t, "ou_sender", ev.Attachment.Sender)
	assert.Empty(t, ev.Text)
}

func TestInboundFromEventImageAttachment(t *testing.T) {
	t.Parallel()

	event := textEvent("p2p", "", nil)
	event.Event.Message.MessageType = larkcore.StringPtr(larkim.MsgTypeImage)
	event.Event.Message.Content = larkcore.StringPtr(`{"image_key":"img_v2_abcdef12345"}`)

	ev, ok := inboundFromEvent(event)
	require.True(t, ok)
	require.NotNil(t, ev.Attachment)
	assert.Equal(t, feishu.CategoryImage, ev.Attachment.Type)
	assert.Equal(t, "图片_img_v2_a", ev.Attachment.Name)
}

func TestInboundFromEventMediaCategorizedByExtension(t *testing.T) {
	t.Parallel()

	event := textEvent("group", "", nil)
	event.Event.Message.MessageType = larkcore.StringPtr(larkim.MsgTypeMedia)
	event.Event.Message.Content = larkcore.StringPtr(`{"file_key":"fk","file_name":"song.mp3"}`)

	ev, ok := inboundFromEvent(event)
	require.True(t, ok)
	require.NotNil(t, ev.Attachment)
	assert.Equal(t, "song.mp3", ev.Attachment.Name)
	assert.Equal(t, "音频", ev.Attachment.Type)
}

func TestInboundFromEventRejectsIncompleteEvents(t *testing.T) {
	t.Parallel()

	_, ok := inboundFromEvent(nil)
	assert.False(t, ok)

	event := textEvent("p2p", "hi", nil)
	event.Event.Message.ChatId = nil
	_, ok = inboundFromEvent(event)
	assert.False(t, ok)
}
