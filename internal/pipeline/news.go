package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/ai"
	"github.com/aigcpilot/harvester/internal/cache"
	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/models"
)

const (
	newsSearchResults = 4
	newsDelay         = 3 * time.Second
)

// NewsFeed yields AI headlines.
type NewsFeed interface {
	Fetch(ctx context.Context) []models.NewsEntry
}

// NewsDeps are the collaborators of a NewsIngestor. Cache and Search may be nil.
type NewsDeps struct {
	Feed     NewsFeed
	Enricher Enricher
	Search   Searcher
	API      NewsAPI
	Cache    cache.SeenCache
	Pause    PauseFunc
	Delay    time.Duration
}

// NewsIngestor turns headlines into published Chinese articles.
type NewsIngestor struct {
	deps NewsDeps
	log  *zerolog.Logger
}

func NewNewsIngestor(deps NewsDeps) *NewsIngestor {
	if deps.Pause == nil {
		deps.Pause = Sleep
	}
	if deps.Delay <= 0 {
		deps.Delay = newsDelay
	}
	return &NewsIngestor{deps: deps, log: logger.Component("news")}
}

// Run processes the current headlines.
func (n *NewsIngestor) Run(ctx context.Context) Summary {
	summary := Summary{}
	seen := make(map[string]struct{})

	for _, entry := range n.deps.Feed.Fetch(ctx) {
		if ctx.Err() != nil {
			break
		}
		key := models.NormalizeURL(entry.Link)
		if _, dup := seen[key]; dup || n.alreadyPublished(ctx, key) {
			n.log.Debug().Str("url", key).Msg("Skipping, already published")
			summary.add(Duplicate)
			continue
		}
		seen[key] = struct{}{}

		summary.add(n.ProcessOne(ctx, entry))
		if err := n.deps.Pause(ctx, n.deps.Delay); err != nil {
			break
		}
	}

	summary.Log(n.log.Info()).Msg("News run finished")
	return summary
}

// ProcessOne writes and injects one article.
func (n *NewsIngestor) ProcessOne(ctx context.Context, entry models.NewsEntry) Outcome {
	log := n.log.With().Str("url", entry.Link).Str("title", entry.Title).Logger()
	log.Info().Msg("Processing news")

	var background string
	if n.deps.Search != nil {
		query := fmt.Sprintf("%s AI technology news OR review", entry.Title)
		results, err := n.deps.Search.Search(ctx, query, newsSearchResults)
		if err != nil {
			log.Warn().Err(err).Msg("Web search failed")
		} else {
			background = ai.RenderSearchContext(results)
		}
	}

	article := n.deps.Enricher.News(ctx, entry.Title, entry.Link, entry.Description, background)
	payload := models.NewsPayload{
		Title:     article.TitleZh,
		Content:   article.ContentZh,
		SourceURL: entry.Link,
		Status:    models.NewsStatusPublished,
	}
	if err := models.Validate(payload); err != nil {
		log.Warn().Err(err).Msg("News payload failed validation")
		return Invalid
	}

	res := n.deps.API.InjectNews(ctx, payload)
	outcome := outcomeOf(res)
	if outcome != Processed {
		log.Warn().Err(res.Err).Int("status", res.Status).Msg("News injection failed")
		return outcome
	}

	if n.deps.Cache != nil {
		if err := n.deps.Cache.MarkProcessed(ctx, models.NormalizeURL(entry.Link)); err != nil {
			log.Warn().Err(err).Msg("Could not record published link")
		}
	}
	log.Info().Str("headline", payload.Title).Msg("News injected")
	return Processed
}

func (n *NewsIngestor) alreadyPublished(ctx context.Context, url string) bool {
	if n.deps.Cache == nil {
		return false
	}
	seen, err := n.deps.Cache.IsProcessed(ctx, url)
	if err != nil {
		n.log.Warn().Err(err).Str("url", url).Msg("Seen cache unavailable, treating as new")
		return false
	}
	return seen
}
