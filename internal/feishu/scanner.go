package feishu

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/deskbotai/larkgw/internal/history"
)

// messageLister is the slice of the IM message API the scanner needs.
type messageLister interface {
	List(ctx context.Context, req *larkim.ListMessageReq, options ...larkcore.RequestOptionFunc) (*larkim.ListMessageResp, error)
}

// Scanner walks a chat's message history page by page and collects file and
// image attachments. It backfills the in-memory file cache when a file query
// arrives before any attachment event has been seen.
type Scanner struct {
	list   messageLister
	logger *slog.Logger
}

// NewScanner builds a Scanner over the client's message API.
func NewScanner(c *Client) *Scanner {
	return &Scanner{list: c.api.Im.V1.Message, logger: c.logger}
}

const scanPageSize = 50

// Scan collects up to limit attachment entries from the chat history, newest
// first. Any page error aborts the whole scan; partial results are never
// returned.
func (s *Scanner) Scan(ctx context.Context, chatID string, limit int) ([]history.FileEntry, error) {
	if limit <= 0 {
		limit = scanPageSize
	}

	var (
		entries   []history.FileEntry
		pageToken string
	)
	for len(entries) < limit {
		pageSize := scanPageSize
		if remaining := limit - len(entries); remaining < pageSize {
			pageSize = remaining
		}

		builder := larkim.NewListMessageReqBuilder().
			ContainerIdType("chat").
			ContainerId(chatID).
			SortType("ByCreateTimeDesc").
			PageSize(pageSize)
		if pageToken != "" {
			builder.PageToken(pageToken)
		}

		resp, err := s.list.List(ctx, builder.Build())
		if err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		if !resp.Success() {
			return nil, fmt.Errorf("list messages failed: %s (code: %d)", resp.Msg, resp.Code)
		}

		for _, item := range resp.Data.Items {
			if entry, ok := attachmentEntry(item); ok {
				entries = append(entries, entry)
				if len(entries) >= limit {
					break
				}
			}
		}

		if resp.Data.HasMore == nil || !*resp.Data.HasMore || resp.Data.PageToken == nil || *resp.Data.PageToken == "" {
			break
		}
		pageToken = *resp.Data.PageToken
	}

	s.logger.Debug("chat history scanned", slog.String("chat_id", chatID), slog.Int("files", len(entries)))
	return entries, nil
}

// attachmentEntry converts a history message into a file cache entry when the
// message carries an attachment.
func attachmentEntry(item *larkim.Message) (history.FileEntry, bool) {
	if item == nil || item.MsgType == nil || item.MessageId == nil {
		return history.FileEntry{}, false
	}
	switch *item.MsgType {
	case larkim.MsgTypeFile, larkim.MsgTypeImage, larkim.MsgTypeMedia:
	default:
		return history.FileEntry{}, false
	}

	content := ""
	if item.Body != nil && item.Body.Content != nil {
		content = *item.Body.Content
	}
	name, category := AttachmentInfo(*item.MsgType, content)

	entry := history.FileEntry{
		MessageID:  *item.MessageId,
		Type:       category,
		Name:       name,
		ObservedAt: messageTime(item),
	}
	if item.Sender != nil && item.Sender.Id != nil {
		entry.Sender = *item.Sender.Id
	}
	return entry, true
}

// messageTime parses the millisecond create_time of a history message,
// falling back to now when the field is missing or malformed.
func messageTime(item *larkim.Message) time.Time {
	if item.CreateTime == nil {
		return time.Now()
	}
	ms, err := strconv.ParseInt(*item.CreateTime, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.UnixMilli(ms)
}
