// Package app wires configuration into the crawl, news and repair pipelines.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/ai"
	"github.com/aigcpilot/harvester/internal/browser"
	"github.com/aigcpilot/harvester/internal/cache"
	"github.com/aigcpilot/harvester/internal/config"
	"github.com/aigcpilot/harvester/internal/dedup"
	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/media"
	"github.com/aigcpilot/harvester/internal/pipeline"
	"github.com/aigcpilot/harvester/internal/portal"
	"github.com/aigcpilot/harvester/internal/scheduler"
	"github.com/aigcpilot/harvester/internal/scrape"
	"github.com/aigcpilot/harvester/internal/source"
	"github.com/aigcpilot/harvester/internal/storage"
)

// Crawl targets accepted by Crawl.
const (
	TargetTools       = "tools"
	TargetGitHub      = "github"
	TargetProductHunt = "producthunt"
	TargetNews        = "news"
	TargetAll         = "all"
	// JobHeal names the repair cycle in the scheduler.
	JobHeal = "heal"
)

// Targets lists the crawl targets in the order "all" runs them.
var Targets = []string{TargetTools, TargetGitHub, TargetProductHunt, TargetNews}

// ErrUnknownTarget is returned for a crawl target that does not exist.
var ErrUnknownTarget = errors.New("unknown crawl target")

// App owns the long-lived clients shared by every run.
type App struct {
	cfg       *config.Config
	portal    *portal.Client
	enricher  *ai.Enricher
	searcher  *scrape.Searcher
	relocator *media.Relocator
	browser   *browser.Browser
	capturer  pipeline.Capturer
	prober    pipeline.Prober
	seen      cache.SeenCache
	fetcher   *source.Fetcher
	pause     pipeline.PauseFunc
	log       *zerolog.Logger
}

// New builds the application from cfg. Chrome is started lazily on first use.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Component("app")

	gen, err := ai.NewGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("init text generator: %w", err)
	}
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	searcher := scrape.NewSearcher(cfg.SearchEndpoint, cfg.HTTPTimeout)
	homepage := scrape.NewHomepageReader(cfg.HTTPTimeout)

	a := &App{
		cfg:       cfg,
		portal:    portal.NewClient(cfg.PortalAPIURL, cfg.APISecretKey, cfg.HTTPTimeout),
		enricher:  ai.NewEnricher(gen, homepage, searcher),
		searcher:  searcher,
		relocator: media.NewRelocator(store),
		browser:   browser.New(browser.Config{UserAgent: source.BrowserUA}),
		prober:    pipeline.NewHTTPProber(),
		seen:      cache.New(cfg),
		fetcher:   source.NewFetcher(),
		pause:     pipeline.Sleep,
		log:       log,
	}
	if cfg.ScreenshotsEnabled {
		a.capturer = media.NewCapturer(a.browser)
	}

	log.Info().
		Str("ai_provider", cfg.AIProvider).
		Str("storage", cfg.StorageDriver).
		Bool("screenshots", cfg.ScreenshotsEnabled).
		Msg("Application initialised")
	return a, nil
}

// Close releases the browser and the seen cache.
func (a *App) Close() {
	a.browser.Close()
	if err := a.seen.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Error closing seen cache")
	}
}

// ClearSeen forgets every news link recorded by the seen cache so the next news run
// reconsiders them.
func (a *App) ClearSeen(ctx context.Context) error {
	if err := a.seen.ClearProcessed(ctx); err != nil {
		return fmt.Errorf("clear seen cache: %w", err)
	}
	a.log.Info().Msg("Seen cache cleared")
	return nil
}

// Crawl runs one target. Tool sources of an "all" run share one dedup index.
func (a *App) Crawl(ctx context.Context, target string) error {
	switch target {
	case TargetTools:
		return a.runTools(ctx, a.directorySources()...)
	case TargetGitHub:
		return a.runTools(ctx, a.githubSource())
	case TargetProductHunt:
		return a.runTools(ctx, a.productHuntSource())
	case TargetNews:
		return a.runNews(ctx)
	case TargetAll:
		srcs := append(a.directorySources(), a.githubSource(), a.productHuntSource())
		toolsErr := a.runTools(ctx, srcs...)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Join(toolsErr, a.runNews(ctx))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
}

// Heal runs one repair cycle over at most limit records. A non-positive limit uses
// HEAL_LIMIT.
func (a *App) Heal(ctx context.Context, limit int) error {
	if limit <= 0 {
		limit = a.cfg.HealLimit
	}
	healer := pipeline.NewHealer(pipeline.HealerDeps{
		API:      a.portal,
		Prober:   a.prober,
		Capturer: a.capturer,
		Media:    a.relocator,
		Enricher: a.enricher,
		Pause:    a.pause,
		Cooldown: a.cfg.HealCooldown,
	})
	summary, err := healer.Run(ctx, limit)
	if err != nil {
		return err
	}
	a.log.Info().Str("summary", summary.String()).Msg("Heal finished")
	return nil
}

// Jobs returns the scheduled jobs served by the ops server.
func (a *App) Jobs() []scheduler.Job {
	crawl := func(target string) scheduler.JobFunc {
		return func(ctx context.Context, _ int) error { return a.Crawl(ctx, target) }
	}
	return []scheduler.Job{
		{Name: TargetTools, Spec: "@every 24h", Run: crawl(TargetTools)},
		{Name: TargetProductHunt, Spec: "@every 24h", RunOnStart: true, Run: crawl(TargetProductHunt)},
		{Name: TargetGitHub, Spec: "@every 12h", Run: crawl(TargetGitHub)},
		{Name: JobHeal, Spec: "@every 6h", RunOnStart: true, Run: a.Heal},
		{Name: TargetNews, Spec: "@every 4h", RunOnStart: true, Run: crawl(TargetNews)},
	}
}

func (a *App) directorySources() []source.Source {
	return []source.Source{
		source.NewDirectorySource(a.cfg.DirectoryURL),
		source.NewScrollSource(a.cfg.ScrollURL, a.browser),
	}
}

func (a *App) githubSource() source.Source {
	return source.NewGitHubSource(a.cfg.GitHubAPIURL, a.cfg.GitHubToken)
}

func (a *App) productHuntSource() source.Source {
	return source.NewProductHuntSource(a.cfg.ProductHuntFeed, a.fetcher)
}

func (a *App) runTools(ctx context.Context, srcs ...source.Source) error {
	index := dedup.New()
	index.Load(ctx, a.portal)

	ingestor := pipeline.NewIngestor(pipeline.IngestorDeps{
		Enricher:  a.enricher,
		Capturer:  a.capturer,
		Media:     a.relocator,
		API:       a.portal,
		Pause:     a.pause,
		ItemDelay: a.cfg.ItemDelay,
	}, index)

	var errs []error
	for _, src := range srcs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		tag := src.Profile().Tag
		summary, err := ingestor.Run(ctx, src)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			a.log.Error().Err(err).Str("source", tag).Msg("Source failed")
			errs = append(errs, err)
			continue
		}
		a.log.Info().Str("source", tag).Str("summary", summary.String()).Msg("Source done")
	}
	return errors.Join(errs...)
}

func (a *App) runNews(ctx context.Context) error {
	news := pipeline.NewNewsIngestor(pipeline.NewsDeps{
		Feed:     source.NewNewsFeeds(a.cfg.NewsFeeds, a.fetcher),
		Enricher: a.enricher,
		Search:   a.searcher,
		API:      a.portal,
		Cache:    a.seen,
		Pause:    a.pause,
		Delay:    a.cfg.ItemDelay,
	})
	summary := news.Run(ctx)
	a.log.Info().Str("summary", summary.String()).Msg("News done")
	return ctx.Err()
}
