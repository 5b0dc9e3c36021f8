package actions

import (
	"context"
	"log/slog"

	"github.com/deskbotai/larkgw/internal/intent"
	"github.com/deskbotai/larkgw/internal/llm"
)

// freeform answers over the conversation transcript. When the message quotes
// an earlier one, that message is fetched best effort and framed as context;
// a fetch failure degrades to answering without it.
func (s *Service) freeform(ctx context.Context, req Request) (string, error) {
	text := req.Text
	if req.ParentID != "" {
		quoted, err := s.platform.QuotedText(ctx, req.ParentID)
		switch {
		case err != nil:
			s.logger.Debug("quoted message fetch failed",
				slog.String("parent_id", req.ParentID), slog.String("error", err.Error()))
		case quoted != "":
			text = llm.QuotedUserMessage(quoted, text)
		}
	}

	turns := s.history.Get(req.Key)
	messages := make([]llm.Message, 0, len(turns)+1)
	for _, turn := range turns {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Text})
	}
	messages = append(messages, llm.Message{Role: "user", Content: text})

	return s.llm.Complete(ctx, llm.FreeformSystem, messages)
}

// report generates a daily or weekly work report from the transcript. An
// empty transcript is a normal outcome, answered with a hint instead of a
// report.
func (s *Service) report(ctx context.Context, req Request) (string, error) {
	turns := s.history.Get(req.Key)
	if len(turns) == 0 {
		return "📝 暂无对话历史，无法生成报告。\n\n💡 提示：请先与我进行一些工作相关的对话，我会基于对话内容为您生成报告。", nil
	}

	messages := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Text})
	}

	period := req.Decision.Period
	if period == "" {
		period = intent.PeriodDaily
	}
	return s.llm.Complete(ctx, llm.ReportSystem(period),
		[]llm.Message{{Role: "user", Content: llm.ReportUser(messages, period)}})
}

// clearHistory drops the transcript for the conversation, in memory and in
// the mirror.
func (s *Service) clearHistory(_ context.Context, req Request) string {
	s.history.Clear(req.Key)
	s.mirrorAsync("clear", func(ctx context.Context, m Mirror) error {
		return m.ClearTurns(ctx, req.Key)
	})
	s.logger.Info("conversation history cleared", slog.String("key", req.Key))
	return "✅ 对话历史已清除，我们可以开始新的对话了！"
}
