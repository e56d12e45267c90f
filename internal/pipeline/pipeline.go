// Package pipeline runs discovered items through enrichment, media relocation,
// classification and submission, and heals incomplete records.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/models"
	"github.com/aigcpilot/harvester/internal/portal"
)

// Outcome is the result of handling one item or record.
type Outcome int

const (
	Processed Outcome = iota
	Duplicate
	Invalid
	Rejected
	Failed
	Offline
	Unchanged
)

var outcomeNames = []string{"processed", "duplicate", "invalid", "rejected", "failed", "offline", "unchanged"}

func (o Outcome) String() string {
	if int(o) < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Summary counts outcomes for one run.
type Summary map[Outcome]int

func (s Summary) add(o Outcome) { s[o]++ }

// Total returns the number of handled items.
func (s Summary) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// Log writes the counts as one event.
func (s Summary) Log(e *zerolog.Event) *zerolog.Event {
	for o, c := range s {
		e = e.Int(o.String(), c)
	}
	return e
}

func (s Summary) String() string {
	parts := make([]string, 0, len(outcomeNames))
	for i, name := range outcomeNames {
		if c := s[Outcome(i)]; c > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", name, c))
		}
	}
	return strings.Join(parts, " ")
}

// Enricher produces generated copy.
type Enricher interface {
	Shallow(ctx context.Context, name, description string) models.Enrichment
	Deep(ctx context.Context, name, url string) (*models.DeepEnrichment, error)
	News(ctx context.Context, title, link, description, background string) models.NewsCopy
}

// Capturer screenshots a page.
type Capturer interface {
	Capture(ctx context.Context, url string) ([]byte, bool)
}

// MediaStore moves media into owned storage.
type MediaStore interface {
	Relocate(ctx context.Context, sourceURL, folder, defaultExt string) (string, bool)
	Store(ctx context.Context, data []byte, name, folder, ext string) (string, bool)
}

// ToolAPI is the part of the content API used for tools.
type ToolAPI interface {
	SubmitTool(ctx context.Context, payload models.ToolPayload) portal.Result
	PatchTool(ctx context.Context, payload models.PatchPayload) portal.Result
	RepairBatch(ctx context.Context, limit int) ([]models.RepairRecord, error)
}

// NewsAPI publishes news articles.
type NewsAPI interface {
	InjectNews(ctx context.Context, payload models.NewsPayload) portal.Result
}

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]models.SearchResult, error)
}

// PauseFunc waits d or until ctx is done.
type PauseFunc func(ctx context.Context, d time.Duration) error

// Sleep is the production PauseFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func outcomeOf(res portal.Result) Outcome {
	switch res.Outcome {
	case portal.Success:
		return Processed
	case portal.Rejected:
		return Rejected
	default:
		return Failed
	}
}
