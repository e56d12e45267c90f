// Package portal is the client for the directory site's content API.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/models"
)

var (
	// ErrTransport means the request never produced an HTTP response.
	ErrTransport = errors.New("content api unreachable")
	// ErrRejected means the API answered with a non-200 status.
	ErrRejected = errors.New("content api rejected request")
)

// Outcome classifies a write call.
type Outcome int

const (
	Success Outcome = iota
	Rejected
	TransportFailure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Rejected:
		return "rejected"
	case TransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Result describes the response to a write call. Err wraps ErrRejected or ErrTransport
// when Outcome is not Success.
type Result struct {
	Outcome Outcome
	Status  int
	Body    string
	Err     error
}

// OK reports whether the API accepted the request.
func (r Result) OK() bool { return r.Outcome == Success }

// Client calls the content API with the shared bearer credential. It never retries.
type Client struct {
	client *resty.Client
	log    *zerolog.Logger
}

type repairBatch struct {
	Tools []models.RepairRecord `json:"tools"`
}

func NewClient(baseURL, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetAuthToken(secret).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout).
			SetRetryCount(0),
		log: logger.Component("portal"),
	}
}

// ListURLs returns the URL of every tool the API already stores.
func (c *Client) ListURLs(ctx context.Context) ([]string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("urlsOnly", "true").
		Get("/tools")
	if err != nil {
		return nil, fmt.Errorf("%w: list urls: %v", ErrTransport, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: list urls: status %d", ErrRejected, resp.StatusCode())
	}
	var urls []string
	if err := json.Unmarshal(resp.Body(), &urls); err != nil {
		return nil, fmt.Errorf("decode url list: %w", err)
	}
	return urls, nil
}

// SubmitTool creates a new tool.
func (c *Client) SubmitTool(ctx context.Context, payload models.ToolPayload) Result {
	req := c.client.R().SetContext(ctx).SetBody(payload)
	res := c.result(req.Post("/tools"))
	c.logResult(res, "submit tool", payload.URL)
	return res
}

// PatchTool applies repairs to an existing tool.
func (c *Client) PatchTool(ctx context.Context, payload models.PatchPayload) Result {
	req := c.client.R().SetContext(ctx).SetBody(payload)
	res := c.result(req.Patch("/tools/enrich"))
	c.logResult(res, "patch tool", payload.ID)
	return res
}

// RepairBatch fetches up to limit tools that need healing.
func (c *Client) RepairBatch(ctx context.Context, limit int) ([]models.RepairRecord, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/tools/enrich")
	if err != nil {
		return nil, fmt.Errorf("%w: repair batch: %v", ErrTransport, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: repair batch: status %d: %s", ErrRejected, resp.StatusCode(), resp.String())
	}
	var out repairBatch
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode repair batch: %w", err)
	}
	return out.Tools, nil
}

// InjectNews publishes a news article.
func (c *Client) InjectNews(ctx context.Context, payload models.NewsPayload) Result {
	req := c.client.R().SetContext(ctx).SetBody(payload)
	res := c.result(req.Post("/news/inject"))
	c.logResult(res, "inject news", payload.SourceURL)
	return res
}

func (c *Client) result(resp *resty.Response, err error) Result {
	if err != nil {
		return Result{Outcome: TransportFailure, Err: fmt.Errorf("%w: %v", ErrTransport, err)}
	}
	res := Result{Status: resp.StatusCode(), Body: resp.String()}
	if res.Status != http.StatusOK {
		res.Outcome = Rejected
		res.Err = fmt.Errorf("%w: status %d", ErrRejected, res.Status)
		return res
	}
	res.Outcome = Success
	return res
}

func (c *Client) logResult(res Result, op, ref string) {
	switch res.Outcome {
	case Success:
		c.log.Debug().Str("op", op).Str("ref", ref).Msg("Content API accepted request")
	case Rejected:
		c.log.Warn().Str("op", op).Str("ref", ref).Int("status", res.Status).Str("body", res.Body).Msg("Content API rejected request")
	case TransportFailure:
		c.log.Error().Err(res.Err).Str("op", op).Str("ref", ref).Msg("Content API request failed")
	}
}
