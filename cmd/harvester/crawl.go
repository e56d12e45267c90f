package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aigcpilot/harvester/internal/app"
	"github.com/aigcpilot/harvester/internal/config"
	"github.com/aigcpilot/harvester/internal/logger"
)

func newCrawlCmd() *cobra.Command {
	targets := append(append([]string{}, app.Targets...), app.TargetAll)
	return &cobra.Command{
		Use:       fmt.Sprintf("crawl <%s>", strings.Join(targets, "|")),
		Short:     "Runs one crawl target now",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: targets,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := bootstrap(cmd, config.FeatureCrawl)
			if err != nil {
				return err
			}
			defer a.Close()

			log := logger.Get().With().Str("target", args[0]).Logger()
			log.Info().Msg("Crawl started")
			if err := a.Crawl(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, context.Canceled) {
					log.Warn().Msg("Crawl interrupted")
					return nil
				}
				return fmt.Errorf("crawl %s: %w", args[0], err)
			}
			log.Info().Msg("Crawl finished")
			return nil
		},
	}
}
