// Package scrape reads tool homepages and web search results for deep enrichment.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// BrowserUA is sent to sites that refuse obvious bots.
const BrowserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// noise holds elements whose text never describes the product.
const noise = "script, style, nav, footer, header, noscript"

// HomepageReader fetches a page and returns its visible text.
type HomepageReader struct {
	client *resty.Client
}

func NewHomepageReader(timeout time.Duration) *HomepageReader {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HomepageReader{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", BrowserUA),
	}
}

// Read returns at most limit runes of the page text. limit <= 0 means no limit.
func (h *HomepageReader) Read(ctx context.Context, url string, limit int) (string, error) {
	resp, err := h.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch homepage: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch homepage: status %d", resp.StatusCode())
	}
	return VisibleText(resp.Body(), limit)
}

// VisibleText strips non-content elements from an HTML document and collapses whitespace.
func VisibleText(html []byte, limit int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse homepage: %w", err)
	}
	doc.Find(noise).Remove()

	var parts []string
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, textWithSpaces(s))
	})
	if len(parts) == 0 {
		parts = append(parts, textWithSpaces(doc.Selection))
	}

	text := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if limit > 0 {
		if r := []rune(text); len(r) > limit {
			text = string(r[:limit])
		}
	}
	return text, nil
}

// textWithSpaces joins text nodes with a space so adjacent block elements do not fuse.
func textWithSpaces(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		} else {
			b.WriteString(textWithSpaces(c))
		}
		b.WriteByte(' ')
	})
	return b.String()
}
