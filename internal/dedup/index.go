// Package dedup holds the per-run set of tool URLs the portal already knows about.
package dedup

import (
	"context"

	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/models"
)

// URLLister returns every URL the content API already stores.
type URLLister interface {
	ListURLs(ctx context.Context) ([]string, error)
}

// Index is owned by a single run and is not safe for concurrent use.
type Index struct {
	urls map[string]struct{}
}

// New returns an empty index.
func New() *Index {
	return &Index{urls: make(map[string]struct{})}
}

// Load replaces the index contents with the lister's URLs. On failure the index is left
// empty and the run proceeds; the content API still rejects true duplicates.
func (i *Index) Load(ctx context.Context, lister URLLister) {
	log := logger.Component("dedup")
	urls, err := lister.ListURLs(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not load existing URLs, continuing with empty index")
		i.urls = make(map[string]struct{})
		return
	}
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if k := models.NormalizeURL(u); k != "" {
			set[k] = struct{}{}
		}
	}
	i.urls = set
	log.Info().Int("count", len(set)).Msg("Loaded existing tools for deduplication")
}

// Contains reports whether url is already known.
func (i *Index) Contains(url string) bool {
	_, ok := i.urls[models.NormalizeURL(url)]
	return ok
}

// Record marks url as submitted.
func (i *Index) Record(url string) {
	if k := models.NormalizeURL(url); k != "" {
		i.urls[k] = struct{}{}
	}
}

// Len returns the number of known URLs.
func (i *Index) Len() int {
	return len(i.urls)
}
