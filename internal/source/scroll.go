package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/browser"
	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/models"
)

// DefaultScrollURL is the aigc.izzi.cn listing, which loads cards as the page scrolls.
const DefaultScrollURL = "https://aigc.izzi.cn/"

const (
	scrollWait      = 2 * time.Second
	maxScrollRounds = 40
)

// ScrollSource renders an infinite-scroll listing in headless Chrome.
type ScrollSource struct {
	url     string
	browser *browser.Browser
	cleaner *Cleaner
	log     *zerolog.Logger
}

func NewScrollSource(url string, b *browser.Browser) *ScrollSource {
	if url == "" {
		url = DefaultScrollURL
	}
	return &ScrollSource{
		url:     url,
		browser: b,
		cleaner: NewCleaner(),
		log:     logger.Component("source.izzi"),
	}
}

func (s *ScrollSource) Profile() Profile {
	return directoryProfile(TagIzzi)
}

// Discover scrolls until the page height stops growing, then parses every card.
func (s *ScrollSource) Discover(ctx context.Context) ([]models.DiscoveredItem, error) {
	tabCtx, cancel := s.browser.Tab(ctx)
	defer cancel()

	var (
		html   string
		height int64
	)
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(s.url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`document.body.scrollHeight`, &height),
	); err != nil {
		return nil, fmt.Errorf("load %s: %w", s.url, err)
	}

	for round := 0; round < maxScrollRounds; round++ {
		var scrolled, next int64
		if err := chromedp.Run(tabCtx,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight); document.body.scrollHeight`, &scrolled),
			chromedp.Sleep(scrollWait),
			chromedp.Evaluate(`document.body.scrollHeight`, &next),
		); err != nil {
			s.log.Warn().Err(err).Int("round", round).Msg("Scrolling stopped early")
			break
		}
		if next == height {
			break
		}
		height = next
		s.log.Debug().Int64("height", height).Msg("Scrolling for more data")
	}

	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read rendered page: %w", err)
	}

	items, err := s.ParseCards([]byte(html))
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("items", len(items)).Msg("Scroll listing parsed")
	return items, nil
}

// ParseCards extracts items from the rendered listing HTML.
func (s *ScrollSource) ParseCards(html []byte) ([]models.DiscoveredItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}
	base, _ := url.Parse(s.url)

	var items []models.DiscoveredItem
	doc.Find(".card").Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find(".card-title").First().Text())
		href := strings.TrimSpace(card.Find("a[href]").First().AttrOr("href", ""))
		if base != nil && href != "" {
			if ref, err := url.Parse(href); err == nil {
				href = base.ResolveReference(ref).String()
			}
		}

		item := s.cleaner.NormalizeItem(models.DiscoveredItem{
			Name:        name,
			URL:         href,
			Description: card.Find(".card-text").First().Text(),
			SourceTag:   TagIzzi,
		})
		if err := s.cleaner.ValidateItem(item); err != nil {
			return
		}
		items = append(items, item)
	})
	return items, nil
}
