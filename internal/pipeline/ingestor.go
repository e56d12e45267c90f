package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/classify"
	"github.com/aigcpilot/harvester/internal/dedup"
	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/models"
	"github.com/aigcpilot/harvester/internal/source"
)

// Media folders in owned storage.
const (
	FolderScreenshots = "screenshots"
	FolderLogos       = "logos"
	FolderVideos      = "videos"
)

// IngestorDeps are the collaborators of an Ingestor. Capturer may be nil to skip screenshots.
type IngestorDeps struct {
	Enricher Enricher
	Capturer Capturer
	Media    MediaStore
	API      ToolAPI
	Pause    PauseFunc
	// ItemDelay overrides every profile's delay when positive.
	ItemDelay time.Duration
}

// Ingestor submits new tools. It owns the dedup index of one run and is not safe for
// concurrent use.
type Ingestor struct {
	deps  IngestorDeps
	index *dedup.Index
	log   *zerolog.Logger
}

func NewIngestor(deps IngestorDeps, index *dedup.Index) *Ingestor {
	if deps.Pause == nil {
		deps.Pause = Sleep
	}
	if index == nil {
		index = dedup.New()
	}
	return &Ingestor{deps: deps, index: index, log: logger.Component("ingestor")}
}

// ProcessOne runs a single item through the pipeline. A duplicate makes no external call.
func (in *Ingestor) ProcessOne(ctx context.Context, item models.DiscoveredItem, profile source.Profile) Outcome {
	key := item.Key()
	log := in.log.With().Str("name", item.Name).Str("url", key).Str("source", profile.Tag).Logger()

	if in.index.Contains(key) {
		log.Info().Msg("Skipping, already exists")
		return Duplicate
	}

	log.Info().Msg("Processing new tool")
	enrichment := in.deps.Enricher.Shallow(ctx, item.Name, item.Description)

	var screenshot string
	if in.deps.Capturer != nil {
		if png, ok := in.deps.Capturer.Capture(ctx, key); ok {
			screenshot, _ = in.deps.Media.Store(ctx, png, item.Name, FolderScreenshots, ".png")
		}
	}
	logo, _ := in.deps.Media.Relocate(ctx, item.Logo, FolderLogos, ".png")
	video, _ := in.deps.Media.Relocate(ctx, item.Video, FolderVideos, ".mp4")

	category := categoryFor(item, profile)

	payload := models.ToolPayload{
		Enrichment:     enrichment,
		URL:            key,
		Logo:           logo,
		VideoURL:       video,
		ScreenshotURL:  screenshot,
		CategoryNameZh: category.NameZh,
		CategoryNameEn: category.NameEn,
		CategorySlug:   category.Slug,
		Region:         profile.Region,
		IsHot:          profile.Hot,
		Rate:           profile.Rate,
		Source:         profile.Tag,
	}
	if err := models.Validate(payload); err != nil {
		log.Warn().Err(err).Msg("Payload failed validation, not submitting")
		return Invalid
	}

	res := in.deps.API.SubmitTool(ctx, payload)
	outcome := outcomeOf(res)
	switch outcome {
	case Processed:
		in.index.Record(key)
		log.Info().Str("category", category.Slug).Bool("screenshot", screenshot != "").Msg("Tool submitted")
	case Rejected:
		log.Warn().Int("status", res.Status).Msg("Tool rejected by content API")
	default:
		log.Error().Err(res.Err).Msg("Tool submission failed")
	}
	return outcome
}

// Run discovers items from src and processes them one at a time, pausing after every
// item that reached an external service.
func (in *Ingestor) Run(ctx context.Context, src source.Source) (Summary, error) {
	profile := src.Profile()
	log := in.log.With().Str("source", profile.Tag).Logger()
	summary := Summary{}

	items, err := src.Discover(ctx)
	if err != nil {
		return summary, fmt.Errorf("discover %s: %w", profile.Tag, err)
	}
	if profile.Limit > 0 && len(items) > profile.Limit {
		items = items[:profile.Limit]
	}
	log.Info().Int("items", len(items)).Int("known", in.index.Len()).Msg("Starting source")

	delay := profile.Delay
	if in.deps.ItemDelay > 0 {
		delay = in.deps.ItemDelay
	}

	for i, item := range items {
		if ctx.Err() != nil {
			log.Warn().Msg("Run cancelled")
			break
		}
		outcome := in.ProcessOne(ctx, item, profile)
		summary.add(outcome)

		if outcome == Duplicate || i == len(items)-1 {
			continue
		}
		if err := in.deps.Pause(ctx, delay); err != nil {
			break
		}
	}

	summary.Log(log.Info()).Msg("Source finished")
	return summary, ctx.Err()
}

func categoryFor(item models.DiscoveredItem, profile source.Profile) classify.Category {
	if profile.CategorySlug != "" {
		if c, ok := classify.BySlug(profile.CategorySlug); ok {
			return c
		}
	}
	return classify.Classify(item.SourceTag + item.Name + item.Description)
}
