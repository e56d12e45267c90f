package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/aigcpilot/harvester/internal/ai"
	"github.com/aigcpilot/harvester/internal/models"
	"github.com/aigcpilot/harvester/internal/portal"
	"github.com/aigcpilot/harvester/internal/source"
)

type spyEnricher struct {
	shallow, deep, news int
	deepResult          *models.DeepEnrichment
	deepErr             error
	newsCopy            *models.NewsCopy
}

func (s *spyEnricher) Shallow(_ context.Context, name, description string) models.Enrichment {
	s.shallow++
	return ai.Fallback(name, description)
}

func (s *spyEnricher) Deep(context.Context, string, string) (*models.DeepEnrichment, error) {
	s.deep++
	return s.deepResult, s.deepErr
}

func (s *spyEnricher) News(_ context.Context, title, link, description, _ string) models.NewsCopy {
	s.news++
	if s.newsCopy != nil {
		return *s.newsCopy
	}
	return models.NewsCopy{TitleZh: "译：" + title, ContentZh: description + " " + link}
}

type spyCapturer struct {
	calls int
	ok    bool
}

func (s *spyCapturer) Capture(context.Context, string) ([]byte, bool) {
	s.calls++
	if !s.ok {
		return nil, false
	}
	return []byte("png"), true
}

type spyMedia struct {
	relocations []string
	stores      int
	storeOK     bool
}

func (s *spyMedia) Relocate(_ context.Context, src, folder, _ string) (string, bool) {
	if src == "" {
		return "", false
	}
	s.relocations = append(s.relocations, src)
	return "https://cdn.example.com/" + folder + "/x", true
}

func (s *spyMedia) Store(_ context.Context, _ []byte, _, folder, _ string) (string, bool) {
	s.stores++
	if !s.storeOK {
		return "", false
	}
	return "https://cdn.example.com/" + folder + "/shot.png", true
}

type spyAPI struct {
	submits  []models.ToolPayload
	patches  []models.PatchPayload
	news     []models.NewsPayload
	records  []models.RepairRecord
	batchErr error
	result   portal.Result
}

func (s *spyAPI) SubmitTool(_ context.Context, p models.ToolPayload) portal.Result {
	s.submits = append(s.submits, p)
	return s.result
}

func (s *spyAPI) PatchTool(_ context.Context, p models.PatchPayload) portal.Result {
	s.patches = append(s.patches, p)
	return s.result
}

func (s *spyAPI) RepairBatch(context.Context, int) ([]models.RepairRecord, error) {
	return s.records, s.batchErr
}

func (s *spyAPI) InjectNews(_ context.Context, p models.NewsPayload) portal.Result {
	s.news = append(s.news, p)
	return s.result
}

func (s *spyAPI) calls() int { return len(s.submits) + len(s.patches) + len(s.news) }

type stubSource struct {
	profile source.Profile
	items   []models.DiscoveredItem
	err     error
}

func (s stubSource) Profile() source.Profile { return s.profile }

func (s stubSource) Discover(context.Context) ([]models.DiscoveredItem, error) {
	return s.items, s.err
}

type stubFeed []models.NewsEntry

func (f stubFeed) Fetch(context.Context) []models.NewsEntry { return f }

type stubProber struct {
	alive  map[string]bool
	probes int
}

func (p *stubProber) Probe(_ context.Context, url string) (bool, int, error) {
	p.probes++
	if alive, ok := p.alive[url]; ok && alive {
		return true, 200, nil
	}
	return false, 0, errors.New("dial tcp: connection refused")
}

type pauseRecorder struct {
	pauses []time.Duration
}

func (p *pauseRecorder) pause(_ context.Context, d time.Duration) error {
	p.pauses = append(p.pauses, d)
	return nil
}

func success() portal.Result { return portal.Result{Outcome: portal.Success, Status: 200} }
