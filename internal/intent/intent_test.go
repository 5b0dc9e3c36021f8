package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyTableAdvancedFilter(t *testing.T) {
	t.Parallel()

	d := Classify("帮我看下 https://x/base/AbCd12?table=Ef34 并筛选销售额大于100的记录")
	assert.Equal(t, KindTableAdvanced, d.Kind)
	assert.Equal(t, "AbCd12", d.AppToken)
	assert.Equal(t, "Ef34", d.TableID)
	assert.Equal(t, OpFilter, d.TableOp)
}

func TestClassifyTableLinkPlain(t *testing.T) {
	t.Parallel()

	d := Classify("看看这个表 https://example.feishu.cn/base/bascnAbc123")
	assert.Equal(t, KindTableLink, d.Kind)
	assert.Equal(t, "bascnAbc123", d.AppToken)
	assert.Empty(t, d.TableID)
}

func TestClassifyTableOpBuckets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		op   TableOp
	}{
		{"https://x/base/A 统计一下总数", OpAggregate},
		{"https://x/base/A 按金额排序", OpSort},
		{"https://x/base/A 对比上月数据", OpCompare},
		{"https://x/base/A 筛选并统计", OpFilter}, // first bucket wins
	}
	for _, tc := range cases {
		d := Classify(tc.text)
		require.Equal(t, KindTableAdvanced, d.Kind, tc.text)
		assert.Equal(t, tc.op, d.TableOp, tc.text)
	}
}

func TestClassifyTableLinkOutranksCreateDoc(t *testing.T) {
	t.Parallel()

	// Priority: a link is unambiguous evidence; create-doc keywords in the
	// same message must not win.
	d := Classify("帮我根据 https://x/base/AbCd12 创建一个文档")
	assert.Equal(t, KindTableLink, d.Kind)
}

func TestClassifyDocLinkShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text    string
		docType string
		id      string
	}{
		{"总结 https://example.larksuite.com/docx/Dx123abc", "docx", "Dx123abc"},
		{"看看 https://example.feishu.cn/doc/Dold456", "doc", "Dold456"},
		{"https://example.feishu.cn/docs/Dlegacy789 什么内容", "docs", "Dlegacy789"},
	}
	for _, tc := range cases {
		d := Classify(tc.text)
		require.Equal(t, KindDocLink, d.Kind, tc.text)
		assert.Equal(t, tc.id, d.DocumentID, tc.text)
		assert.Equal(t, tc.docType, d.DocType, tc.text)
	}
}

func TestClassifyKeywordBuckets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		kind Kind
	}{
		{"群里有谁？", KindMemberQuery},
		{"帮我创建一个项目计划文档", KindCreateDoc},
		{"新建一个销售表格", KindCreateTable},
		{"帮我写今天的日报", KindReportRequest},
		{"最近讨论过哪些文档", KindRecentDocs},
		{"汇总一下群文件", KindFileList},
		{"清空历史吧", KindClearHistory},
		{"今天天气怎么样", KindFreeform},
		{"", KindFreeform},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, Classify(tc.text).Kind, tc.text)
	}
}

func TestClassifyReportPeriod(t *testing.T) {
	t.Parallel()

	assert.Equal(t, PeriodWeekly, Classify("生成本周的周报").Period)
	assert.Equal(t, PeriodDaily, Classify("帮我写日报").Period)
}

func TestClassifyCreateDocOutranksCreateTable(t *testing.T) {
	t.Parallel()

	// 写...文档 matches the create-doc bucket before the create-table rule
	// ever runs, even when 表格 appears later in the text.
	d := Classify("写一个文档介绍这个表格")
	assert.Equal(t, KindCreateDoc, d.Kind)
}

func TestExtractBitableLinkOptionalTable(t *testing.T) {
	t.Parallel()

	link, ok := ExtractBitableLink("https://f.example/base/Tok123?table=tblX99 请分析")
	require.True(t, ok)
	assert.Equal(t, "Tok123", link.AppToken)
	assert.Equal(t, "tblX99", link.TableID)

	link, ok = ExtractBitableLink("https://f.example/base/Tok123")
	require.True(t, ok)
	assert.Empty(t, link.TableID)

	_, ok = ExtractBitableLink("no link here")
	assert.False(t, ok)
}
