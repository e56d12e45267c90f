package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/models"
)

const (
	// HomepageUnavailable replaces homepage text the deep prompt could not obtain.
	HomepageUnavailable = "Homepage text unavailable. Rely strictly on external search data."

	homepageLimit     = 2500
	toolSearchResults = 5
	fallbackSummaryEn = "AI-powered innovation tool for creative workflows."
	unnamedTool       = "Untitled AI Tool"
)

// ErrEmptyResult is returned by Deep when the model answered with no usable field.
var ErrEmptyResult = errors.New("model returned no content")

// HomepageReader fetches the visible text of a page.
type HomepageReader interface {
	Read(ctx context.Context, url string, limit int) (string, error)
}

// Searcher runs a web search and returns at most max hits.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]models.SearchResult, error)
}

// Enricher turns raw listings into bilingual copy using a Generator.
type Enricher struct {
	gen      Generator
	homepage HomepageReader
	search   Searcher
	post     *PostProcessor
	log      *zerolog.Logger
}

func NewEnricher(gen Generator, homepage HomepageReader, search Searcher) *Enricher {
	return &Enricher{
		gen:      gen,
		homepage: homepage,
		search:   search,
		post:     NewPostProcessor(),
		log:      logger.Component("enricher"),
	}
}

// Shallow generates copy from a name and a short description. It always returns a
// complete enrichment: on any failure the deterministic fallback is used instead.
func (e *Enricher) Shallow(ctx context.Context, name, description string) models.Enrichment {
	fallback := Fallback(name, description)

	raw, err := e.gen.Generate(ctx, BuildShallowPrompt(name, description))
	if err != nil {
		e.log.Warn().Err(err).Str("name", name).Msg("Shallow enrichment failed, using fallback")
		return fallback
	}
	obj, err := DecodeObject(raw)
	if err != nil {
		e.log.Warn().Err(err).Str("name", name).Msg("Unparsable shallow enrichment, using fallback")
		return fallback
	}

	out := models.Enrichment{
		TitleZh:   stringField(obj, "title_zh"),
		TitleEn:   stringField(obj, "title_en"),
		SummaryZh: stringField(obj, "summary_zh"),
		SummaryEn: stringField(obj, "summary_en"),
		CoreValue: stringField(obj, "coreValue"),
		UseCases:  stringField(obj, "useCases"),
		ProsCons:  stringField(obj, "prosCons"),
		AIScore:   scoreField(obj, "aiScore"),
		ContentZh: stringField(obj, "content_zh"),
		ContentEn: stringField(obj, "content_en"),
	}
	e.post.ProcessEnrichment(&out, fallback)
	return out
}

// Deep reads the homepage, gathers search context and asks for a full review. A nil
// result means nothing should be merged.
func (e *Enricher) Deep(ctx context.Context, name, url string) (*models.DeepEnrichment, error) {
	log := e.log.With().Str("name", name).Str("url", url).Logger()

	text := HomepageUnavailable
	if e.homepage != nil {
		got, err := e.homepage.Read(ctx, url, homepageLimit)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("Homepage fetch failed")
		case strings.TrimSpace(got) != "":
			text = got
		}
	}

	var background string
	if e.search != nil {
		query := fmt.Sprintf("%s AI tool tutorial OR review OR news", name)
		results, err := e.search.Search(ctx, query, toolSearchResults)
		if err != nil {
			log.Warn().Err(err).Msg("Web search failed")
		} else {
			background = RenderSearchContext(results)
		}
	}

	log.Debug().Int("homepage_chars", len([]rune(text))).Msg("Requesting deep review")
	raw, err := e.gen.Generate(ctx, BuildDeepPrompt(name, text, background))
	if err != nil {
		return nil, fmt.Errorf("deep generation: %w", err)
	}
	obj, err := DecodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("deep generation: %w", err)
	}

	out := &models.DeepEnrichment{
		SummaryZh: stringField(obj, "summary_zh"),
		SummaryEn: stringField(obj, "summary_en"),
		CoreValue: stringField(obj, "coreValue"),
		UseCases:  stringField(obj, "useCases"),
		ProsCons:  stringField(obj, "prosCons"),
		ContentZh: stringField(obj, "content_zh"),
		ContentEn: stringField(obj, "content_en"),
	}
	e.post.ProcessDeep(out)
	if out.Empty() {
		return nil, ErrEmptyResult
	}
	return out, nil
}

// News writes a Chinese headline and article for an English news entry.
func (e *Enricher) News(ctx context.Context, title, link, description, background string) models.NewsCopy {
	fallback := models.NewsCopy{
		TitleZh:   title,
		ContentZh: fmt.Sprintf("Source: %s\n%s", link, description),
	}

	raw, err := e.gen.Generate(ctx, BuildNewsPrompt(title, link, description, background))
	if err != nil {
		e.log.Warn().Err(err).Str("url", link).Msg("News generation failed, using source text")
		return fallback
	}
	obj, err := DecodeObject(raw)
	if err != nil {
		e.log.Warn().Err(err).Str("url", link).Msg("Unparsable news generation, using source text")
		return fallback
	}

	out := models.NewsCopy{
		TitleZh:   stringField(obj, "title_zh"),
		ContentZh: stringField(obj, "content_zh"),
	}
	e.post.ProcessNews(&out, fallback)
	return out
}

// Fallback is the degraded enrichment built only from the listing text.
func Fallback(name, description string) models.Enrichment {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		name = unnamedTool
	}
	if description == "" {
		description = name + " AI tool"
	}

	return models.Enrichment{
		TitleZh:   name,
		TitleEn:   name,
		SummaryZh: truncateRunes(description, 50),
		SummaryEn: fallbackSummaryEn,
		ContentZh: fmt.Sprintf("# %s\n\n%s\n\n(AI 解析失败，保留原始描述)", name, description),
		ContentEn: fmt.Sprintf("# %s\n\n%s\n\n(AI generation failed, raw desc preserved)", name, description),
	}
}
