package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigcpilot/harvester/internal/ai"
	"github.com/aigcpilot/harvester/internal/models"
	"github.com/aigcpilot/harvester/internal/portal"
)

func newHealer(alive ...string) (*Healer, *spyAPI, *spyEnricher, *spyCapturer, *pauseRecorder) {
	probe := &stubProber{alive: map[string]bool{}}
	for _, u := range alive {
		probe.alive[u] = true
	}
	api := &spyAPI{result: success()}
	enricher := &spyEnricher{deepErr: ai.ErrParse}
	capturer := &spyCapturer{}
	pauses := &pauseRecorder{}
	h := NewHealer(HealerDeps{
		API:      api,
		Prober:   probe,
		Capturer: capturer,
		Media:    &spyMedia{storeOK: true},
		Enricher: enricher,
		Pause:    pauses.pause,
	})
	return h, api, enricher, capturer, pauses
}

func TestHealOneDeadPageGoesOffline(t *testing.T) {
	h, api, enricher, capturer, _ := newHealer()

	outcome := h.HealOne(context.Background(), models.RepairRecord{ID: "t1", URL: "https://gone.ai", TitleEn: "Gone"})

	assert.Equal(t, Offline, outcome)
	require.Len(t, api.patches, 1)
	assert.Equal(t, models.PatchPayload{ID: "t1", Status: models.ToolStatusOffline}, api.patches[0])
	assert.Zero(t, enricher.deep)
	assert.Zero(t, capturer.calls)
}

func TestHealOneNothingToPatch(t *testing.T) {
	h, api, enricher, capturer, _ := newHealer("https://live.ai")

	outcome := h.HealOne(context.Background(), models.RepairRecord{
		ID: "t2", URL: "https://live.ai", TitleZh: "活", ScreenshotURL: "https://cdn/s.png",
	})

	assert.Equal(t, Unchanged, outcome)
	assert.Empty(t, api.patches)
	assert.Equal(t, 1, enricher.deep)
	assert.Zero(t, capturer.calls)
}

func TestHealOneScreenshotAndDeepCopy(t *testing.T) {
	h, api, enricher, capturer, _ := newHealer("https://live.ai")
	capturer.ok = true
	enricher.deepErr = nil
	enricher.deepResult = &models.DeepEnrichment{SummaryEn: "Sharp review", ContentZh: "深度评测"}

	outcome := h.HealOne(context.Background(), models.RepairRecord{ID: "t3", URL: "https://live.ai", TitleEn: "Live"})

	assert.Equal(t, Processed, outcome)
	require.Len(t, api.patches, 1)
	p := api.patches[0]
	assert.Equal(t, "t3", p.ID)
	assert.Equal(t, "https://cdn.example.com/screenshots/shot.png", p.ScreenshotURL)
	assert.Equal(t, "Sharp review", p.SummaryEn)
	assert.Equal(t, "深度评测", p.ContentZh)
	assert.Empty(t, p.Status)
	assert.Equal(t, []string{"screenshotUrl", "summary_en", "content_zh"}, p.ChangedFields())
}

func TestHealOnePatchRejected(t *testing.T) {
	h, api, enricher, _, _ := newHealer("https://live.ai")
	enricher.deepErr = nil
	enricher.deepResult = &models.DeepEnrichment{CoreValue: "fast"}
	api.result = portal.Result{Outcome: portal.Rejected, Status: 404}

	assert.Equal(t, Rejected, h.HealOne(context.Background(), models.RepairRecord{ID: "t4", URL: "https://live.ai", ScreenshotURL: "x"}))
}

func TestHealerRunCooldownAfterEveryRecord(t *testing.T) {
	h, api, _, _, pauses := newHealer("https://live.ai")
	api.records = []models.RepairRecord{
		{ID: "a", URL: "https://gone.ai"},
		{ID: "b", URL: "https://live.ai", ScreenshotURL: "x"},
	}

	summary, err := h.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary[Offline])
	assert.Equal(t, 1, summary[Unchanged])
	assert.Equal(t, []time.Duration{DefaultCooldown, DefaultCooldown}, pauses.pauses)
}

func TestHealerRunBatchFailure(t *testing.T) {
	h, api, _, _, _ := newHealer()
	api.batchErr = portal.ErrTransport

	summary, err := h.Run(context.Background(), 10)
	assert.ErrorIs(t, err, portal.ErrTransport)
	assert.Zero(t, summary.Total())
}

func TestAlive(t *testing.T) {
	assert.True(t, Alive(http.StatusOK))
	assert.True(t, Alive(http.StatusMovedPermanently))
	assert.True(t, Alive(http.StatusForbidden))
	assert.False(t, Alive(http.StatusNotFound))
	assert.False(t, Alive(http.StatusBadRequest))
	assert.False(t, Alive(http.StatusServiceUnavailable))
}

func TestHTTPProber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/moved":
			http.Redirect(w, r, "/ok", http.StatusFound)
		case "/blocked":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := NewHTTPProber()
	ctx := context.Background()

	alive, status, err := p.Probe(ctx, srv.URL+"/ok")
	require.NoError(t, err)
	assert.True(t, alive)
	assert.Equal(t, http.StatusOK, status)

	alive, status, _ = p.Probe(ctx, srv.URL+"/moved")
	assert.True(t, alive)
	assert.Equal(t, http.StatusOK, status)

	alive, _, _ = p.Probe(ctx, srv.URL+"/blocked")
	assert.True(t, alive)

	alive, status, _ = p.Probe(ctx, srv.URL+"/missing")
	assert.False(t, alive)
	assert.Equal(t, http.StatusNotFound, status)

	alive, _, err = p.Probe(ctx, "http://127.0.0.1:1")
	assert.False(t, alive)
	assert.Error(t, err)
}
