package ai

import (
	"fmt"
	"strings"

	"github.com/aigcpilot/harvester/internal/models"
)

// PromptTemplates contains the prompt templates for each kind of generated copy.
var PromptTemplates = struct {
	ToolShallow string
	ToolDeep    string
	NewsArticle string
}{
	ToolShallow: `你是一个全球领先的 AIGC 工具评测专家。请根据以下工具的基本信息，生成一个标准的 JSON 格式响应。

工具名称: %s
原始描述: %s

输出要求 (严格遵循 JSON 格式):
{
  "title_zh": "中文工具名",
  "title_en": "English Tool Name",
  "summary_zh": "一句精炼的中文摘要 (35字以内)",
  "summary_en": "One concise English summary (18 words max)",
  "aiScore": 8,
  "content_zh": "## 功能特性\n- 特性1\n- 特性2\n\n## 使用场景\n- 场景1\n- 场景2\n\n## 专家评价\n这里写一段深入的中文 Markdown 评测...",
  "content_en": "## Key Features\n- Feature 1\n- Feature 2\n\n## Use Cases\n- Case 1\n- Case 2\n\n## Expert Review\nProvide a detailed English Markdown review here..."
}

aiScore 为 1 到 10 的综合评分，可省略。`,

	ToolDeep: `你是一个资深的 AIGC 工具导购与评测专家。我现在给你一个 AI 工具的【官方主页真实文本】以及【全网搜索到的第三方评测和新闻摘要】。
请你仔细阅读，然后用你的专业词汇，重新帮我撰写该工具的介绍、核心价值、使用场景和优缺点。
并且利用搜索到的第三方资料，用丰富的 Markdown 格式分别写一段全面的中文和英文深度点评文章(content_zh 和 content_en)。

工具名称: %s
该工具官网提取文本(前2500字):
%s

全网相关评测与新闻资讯:
%s

请输出严格的 JSON:
{
  "summary_zh": "一句精炼的中文摘要 (35字以内)",
  "summary_en": "One concise English summary (18 words max)",
  "coreValue": "该工具最核心的价值体现，一句话概括",
  "useCases": "适用的人群或商业场景。例如：独立开发者起步、自媒体博主分发",
  "prosCons": "优缺点分析。结合全网搜索结果给出客观评价。例如：功能强大，但社区反映有学习门槛。",
  "content_zh": "用 Markdown 格式输出一段全面的中文工具点评文章 (不少于300字)。必须包含「综合评估」、「常见用例」和「相关教程或延伸资料（如果搜索结果里有提到）」。可以插入加粗或列表。",
  "content_en": "A comprehensive English review article in Markdown format (at least 200 words), translating the essence of the Chinese review. Include 'Overall Assessment', 'Common Use Cases', and 'Related Tutorials/Resources'."
}`,

	NewsArticle: `你是一名专业的 AI 科技媒体编辑。请根据下面的英文新闻及相关背景资料，撰写一篇面向中文读者的资讯文章。

原始标题: %s
原文链接: %s
原始摘要: %s

相关背景资料:
%s

请输出严格的 JSON:
{
  "title_zh": "吸引人的中文标题 (30字以内)",
  "content_zh": "Markdown 格式的中文资讯正文 (不少于300字)，包含事件概述、技术要点和行业影响，结尾注明原文链接。"
}`,
}

// BuildShallowPrompt creates the prompt for quick enrichment from a listing description.
func BuildShallowPrompt(name, description string) string {
	return fmt.Sprintf(PromptTemplates.ToolShallow, escapeForPrompt(name), escapeForPrompt(description))
}

// BuildDeepPrompt creates the prompt for a full review from homepage text and search context.
func BuildDeepPrompt(name, homepage, background string) string {
	return fmt.Sprintf(PromptTemplates.ToolDeep, escapeForPrompt(name), homepage, background)
}

// BuildNewsPrompt creates the prompt for a Chinese rewrite of a headline.
func BuildNewsPrompt(title, link, description, background string) string {
	return fmt.Sprintf(PromptTemplates.NewsArticle,
		escapeForPrompt(title), escapeForPrompt(link), escapeForPrompt(description), background)
}

// RenderSearchContext formats search hits as markdown link lines.
func RenderSearchContext(results []models.SearchResult) string {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "- [%s](%s): %s\n", r.Title, r.Href, r.Body)
	}
	return b.String()
}

// escapeForPrompt flattens a single-line value for use in prompts
func escapeForPrompt(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
