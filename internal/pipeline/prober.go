package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const probeTimeout = 10 * time.Second

// Prober checks whether a tool's homepage still answers.
type Prober interface {
	Probe(ctx context.Context, url string) (alive bool, status int, err error)
}

// HTTPProber sends a HEAD request with a browser user agent, following redirects.
type HTTPProber struct {
	client *resty.Client
}

func NewHTTPProber() *HTTPProber {
	return &HTTPProber{
		client: resty.New().
			SetTimeout(probeTimeout).
			SetHeader("User-Agent", "Mozilla/5.0").
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)),
	}
}

// Probe reports a page as dead on a transport error or a status of 400 or more.
// 403 counts as alive since bot protection often answers HEAD requests with it.
func (p *HTTPProber) Probe(ctx context.Context, url string) (bool, int, error) {
	resp, err := p.client.R().SetContext(ctx).Head(url)
	if err != nil {
		return false, 0, fmt.Errorf("probe %s: %w", url, err)
	}
	return Alive(resp.StatusCode()), resp.StatusCode(), nil
}

// Alive applies the liveness rule to an HTTP status.
func Alive(status int) bool {
	return status < http.StatusBadRequest || status == http.StatusForbidden
}
