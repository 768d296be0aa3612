// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestauk/ai-research/internal/collect"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Load collected page dumps into the database",
	Long: `Parse reads every page dump, drops papers repeated across pages, and
stores papers, journals, conferences, authors, affiliations and fields of
study with their links. Rows already in the database are left unchanged,
so parsing the same dumps twice adds nothing.`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := collect.Ingest(cmd.Context(), dumpDir(pipelineCfg.MAG), s, logger.With().Str("stage", "parse").Logger())
	if err != nil {
		return err
	}

	saved := summary.Saved
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "parse: %d files, %d entities (%d unique)\n", summary.Files, summary.Entities, summary.Unique)
	fmt.Fprintf(w, "  papers %d, journals %d, conferences %d\n", saved.Papers, saved.Journals, saved.Conferences)
	fmt.Fprintf(w, "  authors %d, paper authors %d\n", saved.Authors, saved.PaperAuthors)
	fmt.Fprintf(w, "  affiliations %d, author affiliations %d\n", saved.Affiliations, saved.AuthorAffiliations)
	fmt.Fprintf(w, "  fields of study %d, paper fields of study %d\n", saved.FieldsOfStudy, saved.PaperFieldsOfStudy)
	return nil
}
