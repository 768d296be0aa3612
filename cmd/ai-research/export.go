// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const defaultExportPath = "data/processed/affiliation_places.yaml"

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write geocoded affiliations with paper counts to YAML or JSON",
	Long: `Export writes one entry per geocoded affiliation with its place,
coordinates, address parts and number of papers. A path ending in .json
is written as JSON; any other path as YAML.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := defaultExportPath
	if len(args) == 1 {
		path = args[0]
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.Export(cmd.Context(), path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "export: %d affiliations written to %s\n", n, path)
	return nil
}
