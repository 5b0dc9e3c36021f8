package actions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deskbotai/larkgw/internal/history"
	"github.com/deskbotai/larkgw/internal/llm"
	"github.com/deskbotai/larkgw/internal/prune"
)

// analyzeDoc fetches and summarizes a linked document, then records it in
// the per-conversation document cache for later "recent docs" queries.
func (s *Service) analyzeDoc(ctx context.Context, req Request) (string, error) {
	content, err := s.platform.DocRawContent(ctx, req.Decision.DocumentID)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", fmt.Errorf("无法读取文档内容")
	}

	truncated := prune.Document(content, prune.DefaultDocMaxBytes)
	reply, err := s.llm.Complete(ctx, llm.DocAnalysisSystem,
		[]llm.Message{{Role: "user", Content: llm.DocAnalysisUser(truncated, req.Text)}})
	if err != nil {
		return "", err
	}

	// The raw-content API returns no title; derive a stable display name from
	// the id so repeat analyses land on the same cache entry.
	docID := req.Decision.DocumentID
	prefix := docID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	title := fmt.Sprintf("文档 %s...", prefix)
	summary := prune.Runes(reply, prune.SummaryMaxRunes)

	s.docs.Touch(req.Key, docID, title, summary)
	s.mirrorAsync("document", func(ctx context.Context, m Mirror) error {
		return m.SaveDocument(ctx, req.Key, history.DocumentEntry{
			DocID:       docID,
			Title:       title,
			Summary:     summary,
			LastTouched: s.now(),
		})
	})

	s.logger.Debug("document analyzed", slog.String("document_id", docID))
	return reply, nil
}

// docPreviewFilled and docPreviewManual bound the body preview shown in the
// creation reply for the filled and manual-copy variants.
const (
	docPreviewFilled = 300
	docPreviewManual = 200
)

// createDoc asks the model for a title/body payload, creates the document,
// and reports the result. When the body could not be written into the
// document the full text is handed back for manual copy.
func (s *Service) createDoc(ctx context.Context, req Request) (string, error) {
	raw, err := s.llm.Complete(ctx, llm.DocCreationSystem,
		[]llm.Message{{Role: "user", Content: llm.DocCreationUser(req.Text)}})
	if err != nil {
		return "", err
	}

	title, body, err := llm.ParseDocPayload(raw)
	if err != nil {
		return "", err
	}

	doc, err := s.platform.CreateDoc(ctx, title, body, req.SenderID)
	if err != nil {
		return "", err
	}

	s.logger.Info("document created",
		slog.String("document_id", doc.DocumentID),
		slog.Bool("content_filled", doc.ContentFilled))

	if doc.ContentFilled {
		return fmt.Sprintf("✅ 文档创建成功！内容已自动填充。\n\n📄 文档标题: %s\n🔗 文档链接: %s\n\n📝 内容预览:\n%s\n\n💡 提示：点击链接查看完整文档。",
			doc.Title, doc.URL, prune.Runes(doc.Body, docPreviewFilled)), nil
	}
	return fmt.Sprintf("✅ 文档创建成功！\n\n📄 文档标题: %s\n🔗 文档链接: %s\n\n⚠️ 自动填充内容失败，请手动复制以下内容到文档中：\n\n📝 内容预览:\n%s\n\n💡 完整内容已生成，请复制下方内容填入文档：\n\n%s",
		doc.Title, doc.URL, prune.Runes(doc.Body, docPreviewManual), doc.Body), nil
}
