// Package intent turns free-form chat text into a routing decision. The
// classifier is a pure function over an ordered rule table: link-bearing
// rules first, then keyword buckets in a fixed order, first match wins.
// Keyword buckets are heuristic and can collide (for example 创建...表格
// versus a bitable link that also mentions 表格); the total order resolves
// every collision deterministically.
package intent

import "regexp"

// Kind identifies the classified action a message requests.
type Kind string

const (
	KindTableLink     Kind = "table_link"
	KindTableAdvanced Kind = "table_advanced"
	KindDocLink       Kind = "doc_link"
	KindMemberQuery   Kind = "member_query"
	KindCreateDoc     Kind = "create_doc"
	KindCreateTable   Kind = "create_table"
	KindReportRequest Kind = "report_request"
	KindRecentDocs    Kind = "recent_docs_query"
	KindFileList      Kind = "file_list_query"
	KindClearHistory  Kind = "clear_history"
	KindFreeform      Kind = "freeform"
)

// TableOp is the operation requested on a linked table.
type TableOp string

const (
	OpFilter    TableOp = "filter"
	OpAggregate TableOp = "aggregate"
	OpSort      TableOp = "sort"
	OpCompare   TableOp = "compare"
	OpAnalyze   TableOp = "analyze"
)

// ReportPeriod selects the report flavor.
type ReportPeriod string

const (
	PeriodDaily  ReportPeriod = "daily"
	PeriodWeekly ReportPeriod = "weekly"
)

// Decision is the single classification produced for a message. Kind is
// always set; the other fields are populated per kind.
type Decision struct {
	Kind Kind

	// Table link intents.
	AppToken string
	TableID  string
	TableOp  TableOp

	// Document link intent.
	DocumentID string
	DocType    string

	// Report intent.
	Period ReportPeriod
}

// Keyword buckets, verbatim from the production rule set. All matching is
// case-insensitive.
var (
	tableAdvancedRe = regexp.MustCompile(`(?i)筛选|过滤|统计|求和|平均|排序|对比|比较|查找.*满足|多少个|总数|最大|最小|前.*名`)
	tableFilterRe   = regexp.MustCompile(`(?i)筛选|过滤|查找|满足条件`)
	tableAggRe      = regexp.MustCompile(`(?i)统计|求和|平均|计数|总数|多少个`)
	tableSortRe     = regexp.MustCompile(`(?i)排序|从高到低|从低到高|最大|最小|前.*名`)
	tableCompareRe  = regexp.MustCompile(`(?i)对比|比较|差异|变化`)

	memberRe      = regexp.MustCompile(`(?i)群成员|成员列表|有哪些人|谁在群里|查看成员|群里有谁`)
	createDocRe   = regexp.MustCompile(`(?i)(创建|新建|生成|写|整理成?).{0,20}(文档|doc)`)
	createTableRe = regexp.MustCompile(`(?i)(创建|新建|生成).{0,20}(表格|多维表格|bitable)`)
	reportRe      = regexp.MustCompile(`(?i)(生成|写|创建|帮我写).{0,10}(日报|周报|工作总结|今日总结|本周总结)`)
	weeklyRe      = regexp.MustCompile(`(?i)周报|本周|这周|一周`)
	recentDocsRe  = regexp.MustCompile(`(?i)最近.*文档|讨论.*文档|之前.*文档|看过.*文档|文档列表`)
	fileListRe    = regexp.MustCompile(`(?i)汇总.*文件|分类.*文件|整理.*文件|群.*文件|发过.*文件|历史.*文件|文件列表|文件清单`)
	clearRe       = regexp.MustCompile(`(?i)清除对话|重置对话|清空历史|新对话`)
)

// rules is the classification order. Each rule either claims the message and
// returns a decision or passes it to the next rule.
var rules = []func(string) (Decision, bool){
	classifyTableLink,
	classifyDocLink,
	keywordRule(memberRe, Decision{Kind: KindMemberQuery}),
	keywordRule(createDocRe, Decision{Kind: KindCreateDoc}),
	keywordRule(createTableRe, Decision{Kind: KindCreateTable}),
	classifyReport,
	keywordRule(recentDocsRe, Decision{Kind: KindRecentDocs}),
	keywordRule(fileListRe, Decision{Kind: KindFileList}),
	keywordRule(clearRe, Decision{Kind: KindClearHistory}),
}

// Classify maps text to exactly one Decision. Total and deterministic: every
// input lands on a rule or on the freeform default.
func Classify(text string) Decision {
	for _, rule := range rules {
		if d, ok := rule(text); ok {
			return d
		}
	}
	return Decision{Kind: KindFreeform}
}

func keywordRule(re *regexp.Regexp, d Decision) func(string) (Decision, bool) {
	return func(text string) (Decision, bool) {
		if re.MatchString(text) {
			return d, true
		}
		return Decision{}, false
	}
}

func classifyTableLink(text string) (Decision, bool) {
	link, ok := ExtractBitableLink(text)
	if !ok {
		return Decision{}, false
	}
	d := Decision{AppToken: link.AppToken, TableID: link.TableID}
	if tableAdvancedRe.MatchString(text) {
		d.Kind = KindTableAdvanced
		d.TableOp = classifyTableOp(text)
	} else {
		d.Kind = KindTableLink
	}
	return d, true
}

// classifyTableOp picks the first matching operation bucket; the buckets
// overlap in vocabulary, so the order is part of the contract.
func classifyTableOp(text string) TableOp {
	switch {
	case tableFilterRe.MatchString(text):
		return OpFilter
	case tableAggRe.MatchString(text):
		return OpAggregate
	case tableSortRe.MatchString(text):
		return OpSort
	case tableCompareRe.MatchString(text):
		return OpCompare
	default:
		return OpAnalyze
	}
}

func classifyDocLink(text string) (Decision, bool) {
	link, ok := ExtractDocLink(text)
	if !ok {
		return Decision{}, false
	}
	return Decision{Kind: KindDocLink, DocumentID: link.DocumentID, DocType: link.Type}, true
}

func classifyReport(text string) (Decision, bool) {
	if !reportRe.MatchString(text) {
		return Decision{}, false
	}
	period := PeriodDaily
	if weeklyRe.MatchString(text) {
		period = PeriodWeekly
	}
	return Decision{Kind: KindReportRequest, Period: period}, true
}
