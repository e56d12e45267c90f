package models

import "strings"

// DiscoveredItem is a candidate tool as seen on a source page, before enrichment.
type DiscoveredItem struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Logo        string `json:"logo,omitempty"`
	Video       string `json:"video,omitempty"`
	SourceTag   string `json:"source_tag"`
}

// Key returns the identity used for deduplication.
func (d DiscoveredItem) Key() string {
	return NormalizeURL(d.URL)
}

// NormalizeURL trims the URL. The content API keys tools on the exact URL string,
// so nothing beyond whitespace is rewritten.
func NormalizeURL(raw string) string {
	return strings.TrimSpace(raw)
}

// NewsEntry is an AI-related headline pulled from an RSS feed.
type NewsEntry struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Feed        string `json:"feed"`
}

// SearchResult is one web search hit used as enrichment context.
type SearchResult struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Body  string `json:"body"`
}
