// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestauk/ai-research/internal/collect"
	"github.com/nestauk/ai-research/internal/mag"
)

var fosLevelsCmd = &cobra.Command{
	Use:   "fos-levels",
	Short: "Fetch the level and hierarchy of stored fields of study",
	Long: `Fos-levels looks up every stored field of study that has no level yet,
packing the ids into as few Evaluate expressions as the length limit
allows, and stores the level, parent and child ids of each.`,
	RunE: runFosLevels,
}

func init() {
	rootCmd.AddCommand(fosLevelsCmd)
}

func runFosLevels(cmd *cobra.Command, _ []string) error {
	cfg := pipelineCfg.MAG
	if err := requireKey("MAG subscription key", cfg.SubscriptionKey); err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	client := mag.NewClient(cfg, metrics)
	summary, err := collect.FosLevels(cmd.Context(), client, s, cfg, logger.With().Str("stage", "fos-levels").Logger())
	printSummary(cmd.OutOrStdout(), "fos-levels", summary)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d field of study expression(s) failed", summary.Failed)
	}
	return nil
}
