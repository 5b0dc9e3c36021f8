package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskbotai/larkgw/internal/feishu"
	"github.com/deskbotai/larkgw/internal/intent"
)

func TestParseDocPayload(t *testing.T) {
	t.Parallel()

	title, content, err := ParseDocPayload("===TITLE===\n项目计划\n===CONTENT===\n第一章\n第二章")
	require.NoError(t, err)
	assert.Equal(t, "项目计划", title)
	assert.Equal(t, "第一章\n第二章", content)
}

func TestParseDocPayloadMissingDelimiters(t *testing.T) {
	t.Parallel()

	_, _, err := ParseDocPayload("标题：项目计划\n内容：...")
	require.Error(t, err)

	_, _, err = ParseDocPayload("===TITLE===\n\n===CONTENT===\n正文")
	require.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	raw := `{"tableName":"表"}`
	assert.Equal(t, raw, ExtractJSON(raw))
	assert.Equal(t, raw, ExtractJSON("```json\n"+raw+"\n```"))
	assert.Equal(t, raw, ExtractJSON("```\n"+raw+"\n```"))
}

func TestTableOpLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "筛选", TableOpLabel(intent.OpFilter))
	assert.Equal(t, "统计", TableOpLabel(intent.OpAggregate))
	assert.Equal(t, "分析", TableOpLabel(intent.TableOp("unknown")))
}

func TestReportUserCutsLongLines(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("字", 300)
	out := ReportUser([]Message{
		{Role: "user", Content: long},
		{Role: "assistant", Content: "短回答"},
	}, intent.PeriodDaily)

	assert.Contains(t, out, "今日工作日报")
	assert.Contains(t, out, "1. 我: ")
	assert.Contains(t, out, "2. AI助手: 短回答")
	assert.NotContains(t, out, strings.Repeat("字", 201))
	assert.Contains(t, out, strings.Repeat("字", 200)+"...")
}

func TestAdvancedTableUserCapsRecords(t *testing.T) {
	t.Parallel()

	records := make([]map[string]any, 60)
	for i := range records {
		records[i] = map[string]any{"序号": i}
	}
	out := AdvancedTableUser(feishu.TableSnapshot{TableName: "大表", Records: records}, "筛选", intent.OpFilter)

	assert.Contains(t, out, "共 60 条")
	assert.NotContains(t, out, `"序号": 59`)
	assert.Contains(t, out, `"序号": 49`)
}

func TestQuotedUserMessage(t *testing.T) {
	t.Parallel()

	out := QuotedUserMessage("原始内容", "现在的问题")
	assert.Contains(t, out, "原始内容")
	assert.Contains(t, out, "用户当前的问题：现在的问题")
}
