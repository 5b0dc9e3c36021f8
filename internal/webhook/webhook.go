// Package webhook receives Feishu/Lark event-subscription callbacks and
// feeds message events into the dispatcher. It sits above both the SDK
// wrapper and the dispatch core so neither depends on the other's transport.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	larkevent "github.com/larksuite/oapi-sdk-go/v3/event"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/deskbotai/larkgw/internal/config"
	"github.com/deskbotai/larkgw/internal/dispatch"
	"github.com/deskbotai/larkgw/internal/feishu"
	"github.com/deskbotai/larkgw/internal/history"
)

const maxBodyBytes int64 = 1 << 20 // 1 MiB

// Handler terminates the event-subscription callback route.
type Handler struct {
	logger     *slog.Logger
	cfg        config.FeishuConfig
	dispatcher *dispatch.Dispatcher
}

// NewHandler creates the public webhook handler.
func NewHandler(log *slog.Logger, cfg config.FeishuConfig, d *dispatch.Dispatcher) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		logger:     log.With(slog.String("handler", "feishu_webhook")),
		cfg:        cfg,
		dispatcher: d,
	}
}

// Register registers the webhook callback route.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/webhook/event", h.Handle)
}

// Handle processes one event-subscription callback. URL-verification
// challenges and decryption are delegated to the SDK event dispatcher;
// message events are acknowledged immediately and processed in a detached
// goroutine so platform retries never pile up behind slow handlers.
func (h *Handler) Handle(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
	}
	if int64(len(payload)) > maxBodyBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("payload too large: max %d bytes", maxBodyBytes))
	}
	if err := validateCallbackAuth(payload, h.cfg); err != nil {
		return err
	}

	eventDispatcher := dispatcher.NewEventDispatcher(h.cfg.VerificationToken, h.cfg.EncryptKey)
	eventDispatcher.OnP2MessageReceiveV1(func(_ context.Context, event *larkim.P2MessageReceiveV1) error {
		ev, ok := inboundFromEvent(event)
		if !ok {
			return nil
		}
		go h.dispatcher.Run(context.WithoutCancel(c.Request().Context()), ev)
		return nil
	})

	resp := eventDispatcher.Handle(c.Request().Context(), &larkevent.EventReq{
		Header:     c.Request().Header,
		Body:       payload,
		RequestURI: c.Request().RequestURI,
	})
	if resp == nil {
		return c.NoContent(http.StatusOK)
	}
	for key, values := range resp.Header {
		for _, value := range values {
			c.Response().Header().Add(key, value)
		}
	}
	c.Response().WriteHeader(resp.StatusCode)
	if len(resp.Body) == 0 {
		return nil
	}
	_, err = c.Response().Write(resp.Body)
	return err
}

// validateCallbackAuth rejects unauthenticated callbacks. With an encrypt
// key configured the SDK verifies signatures itself; otherwise the plaintext
// verification token must match (challenges excepted, the SDK echoes those).
func validateCallbackAuth(payload []byte, cfg config.FeishuConfig) error {
	if strings.TrimSpace(cfg.EncryptKey) != "" {
		return nil
	}
	var fuzzy larkevent.EventFuzzy
	if err := json.Unmarshal(payload, &fuzzy); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid webhook payload: %v", err))
	}
	if larkevent.ReqType(strings.TrimSpace(fuzzy.Type)) == larkevent.ReqTypeChallenge {
		return nil
	}
	expectedToken := strings.TrimSpace(cfg.VerificationToken)
	if expectedToken == "" {
		return echo.NewHTTPError(http.StatusForbidden, "webhook requires verification_token when encrypt_key is empty")
	}
	requestToken := strings.TrimSpace(fuzzy.Token)
	if fuzzy.Header != nil && strings.TrimSpace(fuzzy.Header.Token) != "" {
		requestToken = strings.TrimSpace(fuzzy.Header.Token)
	}
	if requestToken == "" || requestToken != expectedToken {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook token")
	}
	return nil
}

// inboundFromEvent normalizes a message-receive event for dispatch. Events
// without a chat id or message id are dropped.
func inboundFromEvent(event *larkim.P2MessageReceiveV1) (dispatch.Inbound, bool) {
	if event == nil || event.Event == nil || event.Event.Message == nil {
		return dispatch.Inbound{}, false
	}
	message := event.Event.Message
	if message.MessageId == nil || message.ChatId == nil {
		return dispatch.Inbound{}, false
	}

	ev := dispatch.Inbound{
		MessageID: *message.MessageId,
		ChatID:    *message.ChatId,
		ChatType:  dispatch.ChatP2P,
	}
	if message.ChatType != nil && *message.ChatType == "group" {
		ev.ChatType = dispatch.ChatGroup
	}
	if message.ParentId != nil {
		ev.ParentID = *message.ParentId
	}
	if sender := event.Event.Sender; sender != nil && sender.SenderId != nil && sender.SenderId.OpenId != nil {
		ev.SenderID = *sender.SenderId.OpenId
	}

	for _, m := range message.Mentions {
		if m == nil {
			continue
		}
		mention := dispatch.Mention{}
		if m.Key != nil {
			mention.Key = *m.Key
		}
		if m.Name != nil {
			mention.Name = *m.Name
		}
		if m.Id != nil {
			if m.Id.OpenId != nil {
				mention.OpenID = *m.Id.OpenId
			}
			if m.Id.UserId != nil {
				mention.UserID = *m.Id.UserId
			}
		}
		ev.Mentions = append(ev.Mentions, mention)
	}

	msgType := ""
	if message.MessageType != nil {
		msgType = *message.MessageType
	}
	switch msgType {
	case larkim.MsgTypeText:
		if message.Content != nil {
			ev.Text = feishu.TextFromContent(*message.Content)
		}
	case larkim.MsgTypeFile, larkim.MsgTypeImage, larkim.MsgTypeMedia:
		ev.Attachment = eventAttachment(msgType, message, ev.SenderID)
	}
	return ev, true
}

func eventAttachment(msgType string, message *larkim.EventMessage, senderID string) *history.FileEntry {
	content := ""
	if message.Content != nil {
		content = *message.Content
	}
	name, category := feishu.AttachmentInfo(msgType, content)
	return &history.FileEntry{
		MessageID:  *message.MessageId,
		Name:       name,
		Type:       category,
		Sender:     senderID,
		ObservedAt: time.Now(),
	}
}
