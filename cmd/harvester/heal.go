package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aigcpilot/harvester/internal/config"
	"github.com/aigcpilot/harvester/internal/logger"
)

func newHealCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "heal",
		Short: "Repairs incomplete tools: liveness, screenshots and rewritten copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := bootstrap(cmd, config.FeatureCrawl)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.Heal(cmd.Context(), limit); err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Get().Warn().Msg("Heal interrupted")
					return nil
				}
				return fmt.Errorf("heal: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of tools to repair (default HEAL_LIMIT)")
	return cmd
}
