package source

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/aigcpilot/harvester/internal/models"
)

// Cleaner normalizes scraped text and listing items.
type Cleaner struct {
	htmlTagRegex *regexp.Regexp
}

func NewCleaner() *Cleaner {
	return &Cleaner{
		htmlTagRegex: regexp.MustCompile(`<[^>]*>`),
	}
}

// CleanHTML removes HTML tags and normalizes whitespace
func (p *Cleaner) CleanHTML(input string) string {
	// Remove HTML tags
	cleaned := p.htmlTagRegex.ReplaceAllString(input, " ")
	// Unescape HTML entities
	cleaned = html.UnescapeString(cleaned)
	// Normalize whitespace
	return strings.Join(strings.Fields(cleaned), " ")
}

// NormalizeItem cleans a discovered item in place of the raw card text.
func (p *Cleaner) NormalizeItem(item models.DiscoveredItem) models.DiscoveredItem {
	return models.DiscoveredItem{
		Name:        p.CleanHTML(item.Name),
		URL:         models.NormalizeURL(item.URL),
		Description: p.CleanHTML(item.Description),
		Logo:        strings.TrimSpace(item.Logo),
		Video:       strings.TrimSpace(item.Video),
		SourceTag:   item.SourceTag,
	}
}

// ValidateItem checks if the item has the fields every pipeline step relies on.
func (p *Cleaner) ValidateItem(item models.DiscoveredItem) error {
	if item.Name == "" {
		return fmt.Errorf("missing required field: name")
	}
	if item.URL == "" {
		return fmt.Errorf("missing required field: url")
	}
	if !strings.HasPrefix(item.URL, "http://") && !strings.HasPrefix(item.URL, "https://") {
		return fmt.Errorf("unsupported url %q", item.URL)
	}
	return nil
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ContainsAny reports whether the lower-cased text contains any keyword.
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
