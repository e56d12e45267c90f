package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/models"
)

// DefaultDirectoryURL is the aigc.cn navigation page.
const DefaultDirectoryURL = "https://www.aigc.cn/"

// DirectorySource scrapes the static card grid of aigc.cn.
type DirectorySource struct {
	url     string
	timeout time.Duration
	cleaner *Cleaner
	log     *zerolog.Logger
}

func NewDirectorySource(url string) *DirectorySource {
	if url == "" {
		url = DefaultDirectoryURL
	}
	return &DirectorySource{
		url:     url,
		timeout: 30 * time.Second,
		cleaner: NewCleaner(),
		log:     logger.Component("source.aigc"),
	}
}

func (d *DirectorySource) Profile() Profile {
	return directoryProfile(TagAIGC)
}

// Discover fetches the directory page and returns one item per usable card.
func (d *DirectorySource) Discover(ctx context.Context) ([]models.DiscoveredItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := colly.NewCollector(colly.Async(false))
	c.UserAgent = BrowserUA
	c.IgnoreRobotsTxt = true
	c.SetRequestTimeout(d.timeout)

	var (
		items    []models.DiscoveredItem
		cards    int
		fetchErr error
	)
	c.OnHTML(".url-card", func(e *colly.HTMLElement) {
		cards++
		item, ok := d.parseCard(e.DOM, e.Request.AbsoluteURL)
		if !ok {
			return
		}
		items = append(items, item)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch %s: status %d: %w", d.url, r.StatusCode, err)
	})

	if err := c.Visit(d.url); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("fetch %s: %w", d.url, err)
	}
	c.Wait()
	if fetchErr != nil {
		return nil, fetchErr
	}

	d.log.Info().Int("cards", cards).Int("items", len(items)).Msg("Directory page parsed")
	return items, nil
}

func (d *DirectorySource) parseCard(card *goquery.Selection, absolute func(string) string) (models.DiscoveredItem, bool) {
	name := strings.TrimSpace(card.Find(".item-title, strong, h4").First().Text())
	if name == "" {
		return models.DiscoveredItem{}, false
	}

	link := ""
	if a := card.Find("a").First(); a.Length() > 0 {
		link = strings.TrimSpace(a.AttrOr("data-url", ""))
		if link == "" {
			link = strings.TrimSpace(a.AttrOr("href", ""))
		}
	}
	if link == "" || strings.Contains(strings.ToLower(link), "javascript") {
		return models.DiscoveredItem{}, false
	}
	if absolute != nil {
		if abs := absolute(link); abs != "" {
			link = abs
		}
	}

	desc := strings.TrimSpace(card.Find(".item-desc, .xe-content").First().Text())
	if desc == "" {
		desc = name + " AI tool"
	}

	logo := ""
	if img := card.Find("img").First(); img.Length() > 0 {
		logo = img.AttrOr("data-src", "")
		if logo == "" {
			logo = img.AttrOr("src", "")
		}
		if logo != "" && absolute != nil {
			logo = absolute(logo)
		}
	}

	item := d.cleaner.NormalizeItem(models.DiscoveredItem{
		Name:        name,
		URL:         link,
		Description: desc,
		Logo:        logo,
		SourceTag:   TagAIGC,
	})
	if err := d.cleaner.ValidateItem(item); err != nil {
		d.log.Debug().Err(err).Str("name", name).Msg("Skipping card")
		return models.DiscoveredItem{}, false
	}
	return item, true
}
