// Package api serves the ops endpoints of the harvester: health, job listing and manual
// job triggers.
package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/middleware"
	"github.com/aigcpilot/harvester/internal/scheduler"
)

// Version is reported by the health endpoint.
var Version = "dev"

// JobRunner is the scheduler surface used by the handlers.
type JobRunner interface {
	Jobs() []scheduler.JobInfo
	Trigger(name string, limit int) error
}

// SeenCleaner resets the news seen cache.
type SeenCleaner interface {
	ClearSeen(ctx context.Context) error
}

// TriggerRequest is the optional body of a manual trigger.
type TriggerRequest struct {
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}

type Handlers struct {
	jobs    JobRunner
	seen    SeenCleaner
	started time.Time
}

func NewHandlers(jobs JobRunner, seen SeenCleaner) *Handlers {
	return &Handlers{jobs: jobs, seen: seen, started: time.Now()}
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": Version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"time":    time.Now().Format(time.RFC3339),
	})
}

// ListJobs handles GET /api/v1/jobs
func (h *Handlers) ListJobs(c *fiber.Ctx) error {
	jobs := h.jobs.Jobs()
	return c.JSON(fiber.Map{
		"total": len(jobs),
		"items": jobs,
	})
}

// TriggerJob handles POST /api/v1/admin/jobs/:name
func (h *Handlers) TriggerJob(c *fiber.Ctx) error {
	name := c.Params("name")
	req := middleware.Validated[TriggerRequest](c)
	limit := 0
	if req != nil {
		limit = req.Limit
	}

	if err := h.jobs.Trigger(name, limit); err != nil {
		if errors.Is(err, scheduler.ErrUnknownJob) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Unknown job: " + name,
			})
		}
		return err
	}

	logger.Component("http").Info().
		Str("job", name).
		Int("limit", limit).
		Str("ip", c.IP()).
		Msg("Job triggered manually")

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "queued",
		"job":    name,
		"limit":  limit,
	})
}

// ClearSeen handles DELETE /api/v1/admin/cache
func (h *Handlers) ClearSeen(c *fiber.Ctx) error {
	if err := h.seen.ClearSeen(c.UserContext()); err != nil {
		return err
	}

	logger.Component("http").Info().
		Str("ip", c.IP()).
		Msg("Seen cache cleared manually")

	return c.JSON(fiber.Map{
		"status": "cleared",
	})
}
