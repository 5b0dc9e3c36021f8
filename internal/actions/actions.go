// Package actions implements the handlers behind the dispatcher: table and
// document analysis, document and table creation, member listing, report
// generation, cache listings, and freeform conversation. Each handler returns
// reply text or an error; user-facing error wrapping lives in FailureText so
// the dispatcher can reply even when a handler fails.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deskbotai/larkgw/internal/feishu"
	"github.com/deskbotai/larkgw/internal/history"
	"github.com/deskbotai/larkgw/internal/intent"
	"github.com/deskbotai/larkgw/internal/llm"
)

// Completer is the completion surface handlers use.
type Completer interface {
	Complete(ctx context.Context, system string, messages []llm.Message) (string, error)
}

// Platform is the slice of the chat-platform API the handlers need.
type Platform interface {
	TableSnapshot(ctx context.Context, appToken, tableID string) (feishu.TableSnapshot, error)
	CreateBitable(ctx context.Context, spec feishu.TableSpec, userOpenID string) (feishu.CreatedTable, error)
	DocRawContent(ctx context.Context, documentID string) (string, error)
	CreateDoc(ctx context.Context, title, body, userOpenID string) (feishu.CreatedDoc, error)
	ChatMembers(ctx context.Context, chatID string) ([]feishu.ChatMember, error)
	QuotedText(ctx context.Context, messageID string) (string, error)
}

// FileScanner rebuilds the file cache from chat history.
type FileScanner interface {
	Scan(ctx context.Context, chatID string, limit int) ([]history.FileEntry, error)
}

// Mirror is the persistence surface the handlers write through. All writes
// are best effort and asynchronous.
type Mirror interface {
	SaveDocument(ctx context.Context, key string, entry history.DocumentEntry) error
	ClearTurns(ctx context.Context, key string) error
	RecentFiles(ctx context.Context, key string, limit int) ([]history.FileEntry, error)
}

// Request is one classified message handed to the service.
type Request struct {
	Key      string
	ChatID   string
	SenderID string
	ParentID string
	Text     string
	Decision intent.Decision
}

// Service executes classified requests against the caches, the platform API,
// and the model.
type Service struct {
	llm      Completer
	platform Platform
	scanner  FileScanner
	history  *history.ConversationStore
	docs     *history.DocumentCache
	files    *history.FileCache
	mirror   Mirror
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires a Service. scanner and mirror may be nil; the file-list
// handler then serves only what the cache holds and persistence is skipped.
func NewService(
	log *slog.Logger,
	completer Completer,
	platform Platform,
	scanner FileScanner,
	conversations *history.ConversationStore,
	docs *history.DocumentCache,
	files *history.FileCache,
	mirror Mirror,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		llm:      completer,
		platform: platform,
		scanner:  scanner,
		history:  conversations,
		docs:     docs,
		files:    files,
		mirror:   mirror,
		logger:   log.With(slog.String("service", "actions")),
		now:      time.Now,
	}
}

// Run executes the handler for the request's decision and returns the reply.
func (s *Service) Run(ctx context.Context, req Request) (string, error) {
	switch req.Decision.Kind {
	case intent.KindTableLink, intent.KindTableAdvanced:
		return s.analyzeTable(ctx, req)
	case intent.KindDocLink:
		return s.analyzeDoc(ctx, req)
	case intent.KindMemberQuery:
		return s.listMembers(ctx, req)
	case intent.KindCreateDoc:
		return s.createDoc(ctx, req)
	case intent.KindCreateTable:
		return s.createTable(ctx, req)
	case intent.KindReportRequest:
		return s.report(ctx, req)
	case intent.KindRecentDocs:
		return s.recentDocs(req), nil
	case intent.KindFileList:
		return s.fileList(ctx, req)
	case intent.KindClearHistory:
		return s.clearHistory(ctx, req), nil
	default:
		return s.freeform(ctx, req)
	}
}

// Tip returns the progress notice sent before a slow handler runs, or the
// empty string for handlers that answer immediately.
func Tip(dec intent.Decision) string {
	switch dec.Kind {
	case intent.KindTableAdvanced:
		return "📊 正在处理表格数据，请稍候..."
	case intent.KindTableLink:
		return "📊 正在读取和分析表格数据，请稍候..."
	case intent.KindDocLink:
		return "📄 正在读取和分析文档内容，请稍候..."
	case intent.KindCreateDoc:
		return "📝 正在创建文档，请稍候..."
	case intent.KindCreateTable:
		return "📊 正在创建多维表格，请稍候..."
	case intent.KindReportRequest:
		if dec.Period == intent.PeriodWeekly {
			return "📝 正在生成周报，请稍候..."
		}
		return "📝 正在生成日报，请稍候..."
	default:
		return ""
	}
}

// FailureText renders a handler error as the localized reply sent to the
// user. The text doubles as the assistant turn recorded in history.
func FailureText(kind intent.Kind, err error) string {
	switch kind {
	case intent.KindTableLink, intent.KindTableAdvanced:
		return fmt.Sprintf("抱歉，分析多维表格时出现错误: %v\n\n请确保：\n1. 机器人有权限访问该表格\n2. 表格链接正确\n3. 表格包含数据", err)
	case intent.KindDocLink:
		return fmt.Sprintf("抱歉，读取文档时出现错误: %v\n\n请确保：\n1. 机器人有权限访问该文档\n2. 文档链接正确\n3. 文档类型支持（docx/doc/docs）", err)
	case intent.KindMemberQuery:
		return fmt.Sprintf("抱歉，获取群成员信息时出现错误: %v\n\n请确保机器人有权限查看群成员列表。", err)
	case intent.KindCreateDoc:
		return fmt.Sprintf("抱歉，创建文档时出现错误: %v\n\n请确保机器人有权限创建文档。", err)
	case intent.KindCreateTable:
		return fmt.Sprintf("抱歉，创建表格时出现错误: %v\n\n请确保机器人有权限创建多维表格。", err)
	case intent.KindReportRequest:
		return fmt.Sprintf("抱歉，生成报告时出现错误: %v", err)
	default:
		return fmt.Sprintf("抱歉，处理您的消息时出现错误: %v", err)
	}
}

// mirrorWriteTimeout bounds each background persistence write.
const mirrorWriteTimeout = 5 * time.Second

// mirrorAsync runs a persistence write detached from the request. Failures
// are logged and swallowed; the in-memory caches stay authoritative.
func (s *Service) mirrorAsync(what string, write func(ctx context.Context, m Mirror) error) {
	if s.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
		defer cancel()
		if err := write(ctx, s.mirror); err != nil {
			s.logger.Warn("mirror write failed", slog.String("write", what), slog.String("error", err.Error()))
		}
	}()
}
