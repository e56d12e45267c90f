package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/aigcpilot/harvester/internal/api"
	"github.com/aigcpilot/harvester/internal/config"
	"github.com/aigcpilot/harvester/internal/logger"
	"github.com/aigcpilot/harvester/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the job scheduler and the ops API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cfg, err := bootstrap(cmd, config.FeatureCrawl, config.FeatureServe)
			if err != nil {
				return err
			}
			defer a.Close()
			log := logger.Get()

			sched := scheduler.New()
			for _, job := range a.Jobs() {
				if err := sched.Add(job); err != nil {
					return err
				}
			}
			sched.Start(cmd.Context())

			server := api.NewServer(fiber.Config{
				ReadTimeout:  cfg.HTTPTimeout,
				WriteTimeout: cfg.HTTPTimeout,
				IdleTimeout:  120 * time.Second,
			}, sched, a, cfg.AdminAPIKey)

			serveErr := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.Port).Msg("Starting ops server")
				serveErr <- server.Listen(":" + cfg.Port)
			}()

			select {
			case <-cmd.Context().Done():
				log.Info().Msg("Shutting down...")
			case err := <-serveErr:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("Server error")
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			if err := server.ShutdownWithContext(ctx); err != nil {
				log.Error().Err(err).Msg("Server forced to shutdown")
			}
			if err := sched.Stop(ctx); err != nil {
				log.Error().Err(err).Msg("Jobs did not stop in time")
			}
			log.Info().Msg("Server exited properly")
			return nil
		},
	}
}
