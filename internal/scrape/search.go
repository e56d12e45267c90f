package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/aigcpilot/harvester/internal/models"
)

// DefaultSearchEndpoint is the JavaScript-free DuckDuckGo results page.
const DefaultSearchEndpoint = "https://html.duckduckgo.com/html/"

// Searcher queries the DuckDuckGo HTML endpoint.
type Searcher struct {
	client   *resty.Client
	endpoint string
}

func NewSearcher(endpoint string, timeout time.Duration) *Searcher {
	if endpoint == "" {
		endpoint = DefaultSearchEndpoint
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Searcher{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", BrowserUA),
		endpoint: endpoint,
	}
}

// Search returns at most max results for query.
func (s *Searcher) Search(ctx context.Context, query string, max int) ([]models.SearchResult, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		Get(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search request: status %d", resp.StatusCode())
	}
	return ParseResults(resp.Body(), max)
}

// ParseResults extracts hits from a DuckDuckGo HTML results page.
func ParseResults(html []byte, max int) ([]models.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse search results: %w", err)
	}

	var results []models.SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if max > 0 && len(results) >= max {
			return false
		}
		link := s.Find(".result__a").First()
		href, _ := link.Attr("href")
		href = unwrapRedirect(href)
		title := strings.TrimSpace(link.Text())
		if href == "" || title == "" {
			return true
		}
		results = append(results, models.SearchResult{
			Title: title,
			Href:  href,
			Body:  strings.Join(strings.Fields(s.Find(".result__snippet").First().Text()), " "),
		})
		return true
	})
	return results, nil
}

// unwrapRedirect returns the target of a DuckDuckGo /l/?uddg= redirect link.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if !strings.Contains(href, "uddg=") {
		return href
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("uddg")
}
