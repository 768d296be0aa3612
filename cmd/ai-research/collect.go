// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nestauk/ai-research/internal/collect"
	"github.com/nestauk/ai-research/internal/mag"
	"github.com/nestauk/ai-research/internal/store"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Fetch papers matching the configured terms into page dumps",
	Long: `Collect queries the Evaluate API for papers tagged with any of the
configured field-of-study terms, one half-year window at a time from the
end year back to the start year. Every result page is written to the dump
directory as it arrives. Windows already recorded in the collection
manifest are skipped.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().Int("start-year", 0, "first publication year to collect (overrides mag.start_year)")
	collectCmd.Flags().Int("end-year", 0, "last publication year to collect (overrides mag.end_year)")
	collectCmd.Flags().String("terms-file", "", "YAML file with a top-level terms list (overrides mag.terms)")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	cfg := pipelineCfg.MAG
	if v, _ := cmd.Flags().GetInt("start-year"); v != 0 {
		cfg.StartYear = v
	}
	if v, _ := cmd.Flags().GetInt("end-year"); v != 0 {
		cfg.EndYear = v
	}
	if v, _ := cmd.Flags().GetString("terms-file"); v != "" {
		cfg.TermsFile = v
	}
	if cfg.StartYear > cfg.EndYear {
		return fmt.Errorf("start year %d is after end year %d", cfg.StartYear, cfg.EndYear)
	}
	if err := requireKey("MAG subscription key", cfg.SubscriptionKey); err != nil {
		return err
	}

	client := mag.NewClient(cfg, metrics)
	summary, err := collect.Papers(cmd.Context(), client, cfg, dumpDir(cfg), logger.With().Str("stage", "collect").Logger())
	printSummary(cmd.OutOrStdout(), "collect", summary)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d collection job(s) failed", summary.Failed)
	}
	return nil
}

// requireKey fails when an API key needed by a stage is missing.
func requireKey(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is not set: add it to the secrets directory or the config", name)
	}
	return nil
}

// openStore opens the configured database.
func openStore() (*store.Store, error) {
	return store.Open(pipelineCfg.Store, metrics)
}

func printSummary(w io.Writer, stage string, s collect.Summary) {
	fmt.Fprintf(w, "%s: %d completed, %d skipped, %d failed", stage, s.Completed, s.Skipped, s.Failed)
	if s.Pages > 0 {
		fmt.Fprintf(w, " (%d pages, %d entities)", s.Pages, s.Entities)
	}
	fmt.Fprintln(w)
}
