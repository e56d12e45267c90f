package source

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/models"
)

const (
	newsDescriptionLimit = 200
	// NewsLimit caps how many headlines one run turns into articles.
	NewsLimit = 8
)

var newsKeywords = []string{
	"ai", "llm", "openai", "chatgpt", "deepseek", "claude", "midjourney", "gemini",
	"anthropic", "llama", "artificial intelligence", "machine learning",
}

// NewsFeeds collects AI headlines from RSS and Atom feeds.
type NewsFeeds struct {
	feeds   []string
	fetcher *Fetcher
	cleaner *Cleaner
	limit   int
	log     *zerolog.Logger
}

func NewNewsFeeds(feeds []string, fetcher *Fetcher) *NewsFeeds {
	if fetcher == nil {
		fetcher = NewFetcher()
	}
	return &NewsFeeds{
		feeds:   feeds,
		fetcher: fetcher,
		cleaner: NewCleaner(),
		limit:   NewsLimit,
		log:     logger.Component("source.news"),
	}
}

// Fetch reads every feed in order and returns at most the first limit AI headlines.
// A failing feed is logged and skipped.
func (n *NewsFeeds) Fetch(ctx context.Context) []models.NewsEntry {
	parser := gofeed.NewParser()
	var entries []models.NewsEntry

	for _, feedURL := range n.feeds {
		if ctx.Err() != nil {
			break
		}
		log := n.log.With().Str("feed", feedURL).Logger()

		body, err := n.fetcher.Fetch(ctx, feedURL)
		if err != nil {
			log.Warn().Err(err).Msg("Feed fetch failed")
			continue
		}
		feed, err := parser.ParseString(string(body))
		if err != nil {
			log.Warn().Err(err).Msg("Feed parse failed")
			continue
		}
		if len(feed.Items) == 0 {
			log.Warn().Msg("Empty feed")
			continue
		}

		for _, item := range feed.Items {
			if item == nil || !ContainsAny(item.Title, newsKeywords) {
				continue
			}
			entries = append(entries, models.NewsEntry{
				Title:       strings.TrimSpace(item.Title),
				Link:        strings.TrimSpace(item.Link),
				Description: Truncate(n.cleaner.CleanHTML(item.Description), newsDescriptionLimit),
				Feed:        feedURL,
			})
		}
	}

	n.log.Info().Int("matched", len(entries)).Msg("AI headlines collected")
	if n.limit > 0 && len(entries) > n.limit {
		entries = entries[:n.limit]
	}
	return entries
}
