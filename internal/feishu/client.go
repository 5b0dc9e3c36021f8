// Package feishu wraps the Lark open-platform SDK calls the gateway needs:
// outbound replies, the paged message-history scanner, and the document,
// bitable, and chat-member APIs consumed by the action handlers.
package feishu

import (
	"log/slog"

	lark "github.com/larksuite/oapi-sdk-go/v3"

	"github.com/deskbotai/larkgw/internal/config"
)

// Client bundles the Lark API client with the gateway's credentials.
type Client struct {
	api    *lark.Client
	cfg    config.FeishuConfig
	logger *slog.Logger
}

// NewClient creates a Client for the configured region.
func NewClient(log *slog.Logger, cfg config.FeishuConfig) *Client {
	if log == nil {
		log = slog.Default()
	}
	api := lark.NewClient(cfg.AppID, cfg.AppSecret, lark.WithOpenBaseUrl(openBaseURL(cfg)))
	return &Client{
		api:    api,
		cfg:    cfg,
		logger: log.With(slog.String("service", "feishu")),
	}
}

func openBaseURL(cfg config.FeishuConfig) string {
	if cfg.Region == "feishu" {
		return lark.FeishuBaseUrl
	}
	return lark.LarkBaseUrl
}

// shareBaseURL is the user-facing host used when the API response does not
// carry a document or table URL.
func (c *Client) shareBaseURL() string {
	if c.cfg.Region == "feishu" {
		return "https://feishu.cn"
	}
	return "https://larksuite.com"
}
