package ai

import (
	"regexp"
	"strings"

	"github.com/aigcpilot/harvester/internal/models"
)

var (
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	scriptBlocks  = regexp.MustCompile(`(?is)<(script|style|iframe)[^>]*>.*?</(script|style|iframe)>`)
	dangerousTags = regexp.MustCompile(`(?i)</?(script|iframe|object|embed|link|meta|style)[^>]*>`)
)

// PostProcessor cleans generated copy and fills any blank required field from a fallback.
type PostProcessor struct {
	maxTitleLength   int
	maxSummaryLength int
}

func NewPostProcessor() *PostProcessor {
	return &PostProcessor{
		maxTitleLength:   80,
		maxSummaryLength: 200,
	}
}

// ProcessEnrichment cleans e in place and completes it field-by-field from fallback.
func (p *PostProcessor) ProcessEnrichment(e *models.Enrichment, fallback models.Enrichment) {
	e.TitleZh = truncateRunes(p.cleanText(e.TitleZh), p.maxTitleLength)
	e.TitleEn = truncateRunes(p.cleanText(e.TitleEn), p.maxTitleLength)
	e.SummaryZh = truncateRunes(p.cleanText(e.SummaryZh), p.maxSummaryLength)
	e.SummaryEn = truncateRunes(p.cleanText(e.SummaryEn), p.maxSummaryLength)
	e.CoreValue = p.cleanText(e.CoreValue)
	e.UseCases = p.cleanMarkdown(e.UseCases)
	e.ProsCons = p.cleanMarkdown(e.ProsCons)
	e.ContentZh = p.cleanMarkdown(e.ContentZh)
	e.ContentEn = p.cleanMarkdown(e.ContentEn)

	fill(&e.TitleZh, fallback.TitleZh)
	fill(&e.TitleEn, fallback.TitleEn)
	fill(&e.SummaryZh, fallback.SummaryZh)
	fill(&e.SummaryEn, fallback.SummaryEn)
	fill(&e.ContentZh, fallback.ContentZh)
	fill(&e.ContentEn, fallback.ContentEn)
}

// ProcessDeep cleans a deep enrichment in place. It never invents content.
func (p *PostProcessor) ProcessDeep(d *models.DeepEnrichment) {
	d.SummaryZh = truncateRunes(p.cleanText(d.SummaryZh), p.maxSummaryLength)
	d.SummaryEn = truncateRunes(p.cleanText(d.SummaryEn), p.maxSummaryLength)
	d.CoreValue = p.cleanText(d.CoreValue)
	d.UseCases = p.cleanMarkdown(d.UseCases)
	d.ProsCons = p.cleanMarkdown(d.ProsCons)
	d.ContentZh = p.cleanMarkdown(d.ContentZh)
	d.ContentEn = p.cleanMarkdown(d.ContentEn)
}

// ProcessNews cleans generated news copy and fills blanks from fallback.
func (p *PostProcessor) ProcessNews(n *models.NewsCopy, fallback models.NewsCopy) {
	n.TitleZh = truncateRunes(p.cleanText(n.TitleZh), p.maxTitleLength)
	n.ContentZh = p.cleanMarkdown(n.ContentZh)
	fill(&n.TitleZh, fallback.TitleZh)
	fill(&n.ContentZh, fallback.ContentZh)
}

// cleanText removes control characters and normalizes whitespace
func (p *PostProcessor) cleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = controlChars.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// cleanMarkdown strips executable HTML and normalizes line endings
func (p *PostProcessor) cleanMarkdown(content string) string {
	content = scriptBlocks.ReplaceAllString(content, "")
	content = dangerousTags.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = controlChars.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

func fill(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	return string(r[:max])
}
