package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/aigcpilot/harvester/internal/models"
)

// DefaultProductHuntFeed is Product Hunt's public daily feed.
const DefaultProductHuntFeed = "https://www.producthunt.com/feed"

const productHuntDefaultDesc = "A trending AI product from ProductHunt."

var productHuntKeywords = []string{"ai", "gpt", "model", "llm", "deepseek", "claude", "generate", "agent"}

// ProductHuntSource picks AI launches from the Product Hunt feed.
type ProductHuntSource struct {
	feedURL string
	fetcher *Fetcher
	cleaner *Cleaner
}

func NewProductHuntSource(feedURL string, fetcher *Fetcher) *ProductHuntSource {
	if feedURL == "" {
		feedURL = DefaultProductHuntFeed
	}
	if fetcher == nil {
		fetcher = NewFetcher()
	}
	return &ProductHuntSource{
		feedURL: feedURL,
		fetcher: fetcher,
		cleaner: NewCleaner(),
	}
}

func (p *ProductHuntSource) Profile() Profile {
	return Profile{
		Tag:          TagProductHunt,
		Region:       "Global",
		CategorySlug: "hot",
		Limit:        5,
		Delay:        3 * time.Second,
	}
}

// Discover returns AI-related feed entries in feed order.
func (p *ProductHuntSource) Discover(ctx context.Context) ([]models.DiscoveredItem, error) {
	body, err := p.fetcher.Fetch(ctx, p.feedURL)
	if err != nil {
		return nil, err
	}
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse product hunt feed: %w", err)
	}

	var items []models.DiscoveredItem
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		desc := entry.Description
		if strings.TrimSpace(desc) == "" {
			desc = entry.Content
		}
		if !ContainsAny(entry.Title, productHuntKeywords) && !ContainsAny(desc, productHuntKeywords) {
			continue
		}

		name := entry.Title
		if i := strings.Index(name, "-"); i >= 0 {
			name = name[:i]
		}
		if strings.TrimSpace(p.cleaner.CleanHTML(desc)) == "" {
			desc = productHuntDefaultDesc
		}

		item := p.cleaner.NormalizeItem(models.DiscoveredItem{
			Name:        name,
			URL:         entry.Link,
			Description: desc,
			SourceTag:   TagProductHunt,
		})
		if err := p.cleaner.ValidateItem(item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
