package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/aigcpilot/harvester/internal/middleware"
)

// NewServer returns a fiber app with the shared error handler and every route mounted.
func NewServer(cfg fiber.Config, jobs JobRunner, seen SeenCleaner, adminKey string) *fiber.App {
	cfg.ErrorHandler = middleware.ErrorHandler
	cfg.DisableStartupMessage = true
	app := fiber.New(cfg)
	SetupRoutes(app, NewHandlers(jobs, seen), adminKey)
	return app
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, handlers *Handlers, adminKey string) {
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")
	api.Get("/health", handlers.HealthCheck)
	api.Get("/jobs", handlers.ListJobs)

	admin := api.Group("/admin", middleware.AdminOnly(adminKey))
	admin.Post("/jobs/:name", middleware.ValidateRequest[TriggerRequest](), handlers.TriggerJob)
	admin.Delete("/cache", handlers.ClearSeen)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
