// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestauk/ai-research/internal/collect"
	"github.com/nestauk/ai-research/internal/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve stored affiliations to places",
	Long: `Geocode looks up every stored affiliation without a place by name,
fetches the details of the best candidate and stores its coordinates and
address parts. Affiliations with no matching place are skipped and tried
again on the next run.`,
	RunE: runGeocode,
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}

func runGeocode(cmd *cobra.Command, _ []string) error {
	cfg := pipelineCfg.Geocode
	if err := requireKey("Places API key", cfg.APIKey); err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := collect.GeocodeAffiliations(cmd.Context(), geocode.NewClient(cfg), s,
		logger.With().Str("stage", "geocode").Logger(), metrics)
	printSummary(cmd.OutOrStdout(), "geocode", summary)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d affiliation(s) failed geocoding", summary.Failed)
	}
	return nil
}
