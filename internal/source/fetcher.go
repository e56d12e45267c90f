package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Fetcher downloads raw documents such as RSS feeds.
type Fetcher struct {
	client *resty.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(15*time.Second).
			SetHeader("User-Agent", BrowserUA).
			SetRetryCount(2).
			SetRetryWaitTime(2 * time.Second).
			SetRetryMaxWaitTime(10 * time.Second),
	}
}

// Fetch retrieves url and returns the body of a 200 response.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), url)
	}

	return resp.Body(), nil
}
