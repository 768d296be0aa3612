// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestauk/ai-research/internal/collect"
	"github.com/nestauk/ai-research/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show collection progress and row counts per table",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg := pipelineCfg.MAG
	w := cmd.OutOrStdout()

	manifest, err := collect.LoadManifest(dumpDir(cfg).ManifestPath())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "collection: %d of %d jobs complete\n", len(manifest.Jobs()), len(collect.Jobs(cfg)))

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	counts, err := s.Counts(cmd.Context())
	if err != nil {
		return err
	}
	for _, table := range store.Tables {
		fmt.Fprintf(w, "  %-30s %d\n", table, counts[table])
	}

	pendingFos, err := s.PendingFosMetadata(cmd.Context())
	if err != nil {
		return err
	}
	pendingAffs, err := s.PendingAffiliations(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "pending: %d fields of study, %d affiliations\n", len(pendingFos), len(pendingAffs))
	return nil
}
