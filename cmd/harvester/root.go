package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aigcpilot/harvester/internal/app"
	"github.com/aigcpilot/harvester/internal/config"
	"github.com/aigcpilot/harvester/internal/logger"
)

type ctxKey string

const cfgKey ctxKey = "config"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "Collects AI tools and news and publishes them to the directory's content API.",
		Long: `harvester crawls AI tool directories, GitHub, Product Hunt and AI news feeds,
writes bilingual copy with an LLM, moves media into owned storage and submits the
results to the content API. It also repairs incomplete records already stored.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if err := logger.Init(logger.Config{
				Level:  cfg.LogLevel,
				Output: cfg.LogFile,
				Pretty: cfg.LogPretty,
			}); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), cfgKey, cfg))
			return nil
		},
	}

	cmd.AddCommand(newCrawlCmd(), newHealCmd(), newServeCmd())
	return cmd
}

// bootstrap validates the configuration for the given features and builds the app.
// Callers must Close the app.
func bootstrap(cmd *cobra.Command, features ...config.Feature) (*app.App, *config.Config, error) {
	cfg, ok := cmd.Context().Value(cfgKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, nil, errors.New("configuration not loaded")
	}
	log := logger.Get()
	if err := cfg.Validate(features...); err != nil {
		log.Error().Err(err).Msg("Configuration incomplete")
		return nil, nil, err
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize application services: %w", err)
	}
	return a, cfg, nil
}
