package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deskbotai/larkgw/internal/history"
	"github.com/deskbotai/larkgw/internal/prune"
)

// listMembers renders the group member roster.
func (s *Service) listMembers(ctx context.Context, req Request) (string, error) {
	members, err := s.platform.ChatMembers(ctx, req.ChatID)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(members))
	for i, m := range members {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, m.DisplayName()))
	}
	return fmt.Sprintf("👥 当前群组成员列表（共 %d 人）：\n\n%s", len(members), strings.Join(lines, "\n")), nil
}

// recentDocs renders the document cache, MRU first.
func (s *Service) recentDocs(req Request) string {
	docs := s.docs.List(req.Key)
	if len(docs) == 0 {
		return "📄 暂无最近讨论的文档记录。\n\n💡 提示：发送文档链接给我分析后，我会记录下来。"
	}

	entries := make([]string, 0, len(docs))
	for i, doc := range docs {
		entries = append(entries, fmt.Sprintf("%d. %s\n   📅 时间: %s\n   📝 摘要: %s...",
			i+1, doc.Title, doc.LastTouched.Format("01-02 15:04"), prune.Runes(doc.Summary, prune.SummaryDisplayRunes)))
	}
	return fmt.Sprintf("📚 最近讨论的文档（共 %d 个）：\n\n%s\n\n💡 提示：发送文档链接可以重新分析。",
		len(docs), strings.Join(entries, "\n\n"))
}

// fileListScanLimit bounds the history rescan used to rebuild an empty cache.
const fileListScanLimit = 50

// mirrorFileWarmLimit caps the cold-start file reload from the mirror.
const mirrorFileWarmLimit = 100

// fileCategoryRows caps the rows shown per category.
const fileCategoryRows = 20

// fileList renders the file cache grouped by category. An empty cache is
// warmed from the mirror, then rebuilt from chat history if still empty; a
// scan failure fails the whole request rather than presenting an empty
// catalog as truth.
func (s *Service) fileList(ctx context.Context, req Request) (string, error) {
	files := s.files.List(req.Key)
	if len(files) == 0 && s.mirror != nil {
		persisted, err := s.mirror.RecentFiles(ctx, req.Key, mirrorFileWarmLimit)
		if err != nil {
			s.logger.Debug("file cache warm from mirror failed",
				slog.String("chat_id", req.ChatID), slog.String("error", err.Error()))
		} else if len(persisted) > 0 {
			s.files.Backfill(req.Key, persisted)
			files = s.files.List(req.Key)
		}
	}
	if len(files) == 0 && s.scanner != nil {
		scanned, err := s.scanner.Scan(ctx, req.ChatID, fileListScanLimit)
		if err != nil {
			return "", err
		}
		s.files.Backfill(req.Key, scanned)
		files = s.files.List(req.Key)
		s.logger.Debug("file cache rebuilt from history",
			slog.String("chat_id", req.ChatID), slog.Int("files", len(files)))
	}

	if len(files) == 0 {
		return "📁 暂无文件记录。\n\n💡 提示：从现在开始，我会自动记录群里发送的所有文件（不需要@我）。发送文件后再试试\"汇总文件\"吧！", nil
	}

	// Group by category, keeping categories in first-seen (newest file) order.
	var order []string
	byType := make(map[string][]history.FileEntry)
	for _, f := range files {
		if _, seen := byType[f.Type]; !seen {
			order = append(order, f.Type)
		}
		byType[f.Type] = append(byType[f.Type], f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📁 群文件汇总（共 %d 个文件）：\n\n", len(files))
	for _, category := range order {
		group := byType[category]
		fmt.Fprintf(&b, "\n### %s（%d个）\n", category, len(group))
		for i, f := range group {
			if i >= fileCategoryRows {
				fmt.Fprintf(&b, "   ... 还有 %d 个%s\n", len(group)-fileCategoryRows, category)
				break
			}
			fmt.Fprintf(&b, "%d. %s\n   ⏰ %s\n", i+1, f.Name, f.ObservedAt.Format("2006-01-02 15:04:05"))
		}
	}
	b.WriteString("\n\n💡 提示：我会自动记录群里的所有文件（无需@我），最多保留最近100个文件。")
	return b.String(), nil
}
