package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/deskbotai/larkgw/internal/feishu"
	"github.com/deskbotai/larkgw/internal/intent"
	"github.com/deskbotai/larkgw/internal/prune"
)

// FreeformSystem frames the default conversational behavior.
const FreeformSystem = `你是一个运行在飞书平台上的 AI 助手。

核心能力：
- 回答各类问题、提供信息和建议
- 分析和处理飞书文档、多维表格
- 进行多轮对话，记住上下文
- 创建飞书文档和表格
- 生成工作报告

回答原则：
- 直接、准确、有帮助
- 如果不确定，诚实说明
- 使用中文回答`

// TableAnalysisSystem frames the generic table analysis path.
const TableAnalysisSystem = `你是一个飞书企业 AI 助手机器人，擅长分析多维表格数据。

分析要求：
- 理解表格的结构和内容
- 根据用户的问题提供准确的分析
- 如果用户没有具体问题，提供数据的概览和关键洞察
- 使用清晰的格式，包含具体数字和示例
- 使用中文回答`

// DocAnalysisSystem frames document summarization.
const DocAnalysisSystem = `你是一个飞书企业 AI 助手机器人，擅长分析和总结文档内容。

分析要求：
- 理解文档的主要内容和结构
- 根据用户的问题提供准确的分析或总结
- 如果用户没有具体问题，提供文档的概要和关键要点
- 使用清晰的格式，突出重点信息
- 使用中文回答`

// DocCreationSystem instructs the model to emit a delimiter-framed document
// payload that ParseDocPayload can split without JSON escaping pitfalls.
const DocCreationSystem = `你是一个飞书企业 AI 助手机器人。用户请求创建文档，你需要：
1. 根据用户的描述生成合适的文档标题
2. 生成详细的文档内容
3. 内容要专业、清晰、结构化

返回格式（使用简单分隔符）：
===TITLE===
文档标题
===CONTENT===
文档的详细内容

重要：严格按照上述格式返回，标题和内容之间用 ===TITLE=== 和 ===CONTENT=== 分隔。`

// TableStructureSystem instructs the model to design a table schema plus
// sample records as strict JSON.
const TableStructureSystem = `你是飞书表格结构设计助手。根据用户需求设计表格结构并生成示例数据。

返回格式（必须是有效JSON）：
{
  "tableName": "表格名称",
  "fields": [
    {"field_name": "字段1", "type": 1, "ui_type": "Text"},
    {"field_name": "字段2", "type": 2, "ui_type": "Number"},
    {
      "field_name": "字段3",
      "type": 3,
      "ui_type": "SingleSelect",
      "property": {
        "options": [
          {"name": "选项A"},
          {"name": "选项B"},
          {"name": "选项C"}
        ]
      }
    }
  ],
  "records": [
    {"字段1": "值1", "字段2": 123, "字段3": "选项A"},
    {"字段1": "值2", "字段2": 456, "字段3": "选项B"}
  ]
}

字段类型说明（type 和 ui_type 必须对应）：
- type: 1, ui_type: "Text" (多行文本) - 无需property
- type: 2, ui_type: "Number" (数字) - 无需property
- type: 3, ui_type: "SingleSelect" (单选) - 需要property.options数组
- type: 5, ui_type: "DateTime" (日期) - 无需property

规则：
1. 第一个字段必须是多行文本类型（type: 1, ui_type: "Text"）作为主字段
2. 至少设计3个字段，最多8个字段
3. 生成3-5条示例数据
4. 字段必须包含 field_name、type、ui_type 属性
5. 单选字段(SingleSelect)必须包含 property.options 数组，每个选项只需 name 属性
6. records中的key使用字段的中文名称（不带field_name前缀）
7. 只返回JSON，不要其他内容`

// tableOpLabels maps detected operations to the vocabulary the prompts use.
var tableOpLabels = map[intent.TableOp]string{
	intent.OpFilter:    "筛选",
	intent.OpAggregate: "统计",
	intent.OpSort:      "排序",
	intent.OpCompare:   "对比",
	intent.OpAnalyze:   "分析",
}

// TableOpLabel renders an operation for prompt text.
func TableOpLabel(op intent.TableOp) string {
	if label, ok := tableOpLabels[op]; ok {
		return label
	}
	return tableOpLabels[intent.OpAnalyze]
}

// AdvancedTableSystem frames the filter/aggregate/sort/compare path for one
// concrete operation.
func AdvancedTableSystem(op intent.TableOp) string {
	return fmt.Sprintf(`你是一个专业的数据分析助手。用户提供了一个飞书多维表格的数据，需要你进行「%s」操作。

你的任务：
1. 仔细分析表格的字段和数据
2. 理解用户的具体需求
3. 执行相应的数据处理操作
4. 返回清晰、结构化的结果

支持的操作：
- 筛选：根据条件筛选符合要求的数据行
- 统计：计算总和、平均值、计数、最大值、最小值等
- 排序：按指定字段对数据进行排序
- 对比：对比分析不同数据的差异和趋势

输出要求：
- 使用清晰的表格或列表格式
- 突出关键数据和结论
- 如果数据量大，只显示最相关的前10-20条`, TableOpLabel(op))
}

// AdvancedTableUser builds the data payload for an advanced table operation.
func AdvancedTableUser(snap feishu.TableSnapshot, userMessage string, op intent.TableOp) string {
	var fields strings.Builder
	for _, f := range snap.Fields {
		fmt.Fprintf(&fields, "- %s (%d)\n", f.Name, f.Type)
	}

	sample := snap.Records
	if len(sample) > 50 {
		sample = sample[:50]
	}
	return fmt.Sprintf(`表格名称：%s

字段列表：
%s
数据记录（共 %d 条，展示前50条）：
%s

用户要求：%s

请执行「%s」操作并返回结果：`,
		snap.TableName, fields.String(), len(snap.Records), recordsJSON(sample), userMessage, TableOpLabel(op))
}

// TableAnalysisUser builds the overview payload for generic table analysis.
func TableAnalysisUser(snap feishu.TableSnapshot, userMessage string) string {
	names := make([]string, 0, len(snap.Fields))
	for _, f := range snap.Fields {
		names = append(names, f.Name)
	}

	sample := snap.Records
	if len(sample) > 10 {
		sample = sample[:10]
	}

	question := userMessage
	if question == "" {
		question = "请分析这个表格的数据"
	}
	return fmt.Sprintf(`多维表格数据概览：
- 字段: %s
- 总记录数: %d
- 示例数据（前10条）:
%s

用户问题: %s`,
		strings.Join(names, ", "), len(snap.Records), recordsJSON(sample), question)
}

// DocAnalysisUser pairs a (pre-truncated) document body with the question.
func DocAnalysisUser(content, userMessage string) string {
	question := userMessage
	if question == "" {
		question = "请总结这个文档的主要内容"
	}
	return fmt.Sprintf("文档内容：\n\n%s\n\n用户问题: %s", content, question)
}

// DocCreationUser asks for a delimiter-framed document payload.
func DocCreationUser(userMessage string) string {
	return fmt.Sprintf("用户请求: %s\n\n请按照格式返回文档标题和内容。", userMessage)
}

// TableStructureUser asks for a table schema for the given request.
func TableStructureUser(request string) string {
	return fmt.Sprintf("用户需求：%s\n\n请设计表格结构并生成示例数据（只返回JSON）：", request)
}

// QuotedUserMessage prepends a quoted parent message as explicit context.
func QuotedUserMessage(quoted, userMessage string) string {
	return fmt.Sprintf(`【用户引用了之前的消息】
引用内容："""
%s
"""

用户当前的问题：%s`, quoted, userMessage)
}

// ReportSystem frames daily or weekly report generation.
func ReportSystem(period intent.ReportPeriod) string {
	kind := "工作日报"
	plan := "明日计划"
	if period == intent.PeriodWeekly {
		kind = "工作周报"
		plan = "下周计划"
	}
	return fmt.Sprintf(`你是一个专业的工作报告生成助手。基于用户的对话历史，生成一份%s。

要求：
1. 从对话历史中提取工作相关内容（如讨论的项目、分析的数据、创建的文档等）
2. 忽略闲聊和非工作内容
3. 生成结构化报告

报告格式：
📅 %s - [今天的日期]

## 📌 主要工作内容
- [提取的工作事项1]
- [提取的工作事项2]

## ✅ 完成情况
- [已完成的工作]

## 🔄 进行中/遇到问题
- [正在处理的工作或遇到的问题]

## 📋 %s
- [如果对话中提到了计划，在此列出]

注意：
- 使用清晰的标题和列表
- 简洁专业，突出重点
- 如果某个部分没有内容，可以省略该部分`, kind, kind, plan)
}

// ReportUser renders the transcript for report generation, each line cut to
// the history line cap.
func ReportUser(turns []Message, period intent.ReportPeriod) string {
	kind := "今日工作日报"
	if period == intent.PeriodWeekly {
		kind = "本周工作周报"
	}

	lines := make([]string, 0, len(turns))
	for i, turn := range turns {
		speaker := "我"
		if turn.Role == "assistant" {
			speaker = "AI助手"
		}
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, speaker, prune.Runes(turn.Content, prune.HistoryLineMaxRunes)))
	}

	return fmt.Sprintf("基于以下对话历史，生成一份%s：\n\n对话历史：\n%s\n\n请生成报告：", kind, strings.Join(lines, "\n\n"))
}

var (
	docTitleRe   = regexp.MustCompile(`===TITLE===\s*([\s\S]*?)\s*===CONTENT===`)
	docContentRe = regexp.MustCompile(`===CONTENT===\s*([\s\S]*)$`)

	jsonFenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
)

// ParseDocPayload splits a delimiter-framed completion into title and body.
func ParseDocPayload(text string) (title, content string, err error) {
	text = strings.TrimSpace(text)
	titleMatch := docTitleRe.FindStringSubmatch(text)
	contentMatch := docContentRe.FindStringSubmatch(text)
	if titleMatch == nil || contentMatch == nil {
		return "", "", fmt.Errorf("文档内容格式解析失败，请重新描述您的需求")
	}
	title = strings.TrimSpace(titleMatch[1])
	content = strings.TrimSpace(contentMatch[1])
	if title == "" || content == "" {
		return "", "", fmt.Errorf("文档数据不完整，缺少标题或内容")
	}
	return title, content, nil
}

// ExtractJSON strips an optional markdown code fence from a completion that
// should be raw JSON.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

func recordsJSON(records []map[string]any) string {
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(out)
}
