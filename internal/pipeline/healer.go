package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/models"
)

// DefaultCooldown separates healed records.
const DefaultCooldown = 5 * time.Second

// HealerDeps are the collaborators of a Healer. Capturer may be nil to skip screenshots.
type HealerDeps struct {
	API      ToolAPI
	Prober   Prober
	Capturer Capturer
	Media    MediaStore
	Enricher Enricher
	Pause    PauseFunc
	Cooldown time.Duration
}

// Healer repairs records the content API reports as incomplete.
type Healer struct {
	deps HealerDeps
	log  *zerolog.Logger
}

func NewHealer(deps HealerDeps) *Healer {
	if deps.Pause == nil {
		deps.Pause = Sleep
	}
	if deps.Cooldown <= 0 {
		deps.Cooldown = DefaultCooldown
	}
	if deps.Prober == nil {
		deps.Prober = NewHTTPProber()
	}
	return &Healer{deps: deps, log: logger.Component("healer")}
}

// Run fetches up to limit records and heals them one by one.
func (h *Healer) Run(ctx context.Context, limit int) (Summary, error) {
	summary := Summary{}
	h.log.Info().Int("limit", limit).Msg("Starting repair cycle")

	records, err := h.deps.API.RepairBatch(ctx, limit)
	if err != nil {
		return summary, fmt.Errorf("fetch repair batch: %w", err)
	}
	if len(records) == 0 {
		h.log.Info().Msg("No tools need repair")
		return summary, nil
	}
	h.log.Info().Int("records", len(records)).Msg("Found tools needing repair")

	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}
		summary.add(h.HealOne(ctx, rec))
		if err := h.deps.Pause(ctx, h.deps.Cooldown); err != nil {
			break
		}
	}

	summary.Log(h.log.Info()).Msg("Repair cycle finished")
	return summary, ctx.Err()
}

// HealOne checks liveness, fills a missing screenshot and rewrites copy for one record.
func (h *Healer) HealOne(ctx context.Context, rec models.RepairRecord) Outcome {
	name := rec.DisplayName()
	log := h.log.With().Str("id", rec.ID).Str("name", name).Str("url", rec.URL).Logger()
	log.Info().Msg("Healing tool")

	alive, status, err := h.deps.Prober.Probe(ctx, rec.URL)
	if !alive {
		log.Warn().Err(err).Int("status", status).Msg("Homepage appears dead, marking offline")
		res := h.deps.API.PatchTool(ctx, models.PatchPayload{ID: rec.ID, Status: models.ToolStatusOffline})
		if !res.OK() {
			return outcomeOf(res)
		}
		return Offline
	}

	patch := models.PatchPayload{ID: rec.ID}

	if rec.ScreenshotURL == "" && h.deps.Capturer != nil {
		if png, ok := h.deps.Capturer.Capture(ctx, rec.URL); ok {
			if stored, ok := h.deps.Media.Store(ctx, png, name, FolderScreenshots, ".png"); ok {
				patch.ScreenshotURL = stored
				log.Info().Msg("Screenshot repaired")
			}
		}
	}

	deep, err := h.deps.Enricher.Deep(ctx, name, rec.URL)
	if err != nil {
		log.Warn().Err(err).Msg("Deep rewrite failed, keeping existing copy")
	} else if deep != nil {
		patch.Merge(*deep)
	}

	if !patch.HasChanges() {
		log.Info().Msg("No repairs were necessary or possible")
		return Unchanged
	}

	res := h.deps.API.PatchTool(ctx, patch)
	outcome := outcomeOf(res)
	if outcome == Processed {
		log.Info().Strs("fields", patch.ChangedFields()).Msg("Tool healed")
	} else {
		log.Warn().Int("status", res.Status).Err(res.Err).Msg("Patch failed")
	}
	return outcome
}
