// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nestauk/ai-research/internal/collect"
	"github.com/nestauk/ai-research/internal/mag"
	"github.com/nestauk/ai-research/internal/pending"
)

var exprCmd = &cobra.Command{
	Use:   "expr",
	Short: "Print the Evaluate expressions a stage would send",
	Long: `Expr prints query expressions without sending them. By default it lists
the expressions of every collection job, one per line as
"<year> <window> <expr>"; a job split into batches prints one line per
batch. With --ids it packs the given ids into id-list
expressions bounded by mag.max_expr_length instead.`,
	RunE: runExpr,
}

func init() {
	exprCmd.Flags().Int64Slice("ids", nil, "ids to pack into id-list expressions")
	exprCmd.Flags().String("field", "Id", "attribute the ids are matched against")
	exprCmd.Flags().Bool("pending", false, "list only collection jobs not yet in the manifest")

	rootCmd.AddCommand(exprCmd)
}

func runExpr(cmd *cobra.Command, _ []string) error {
	cfg := pipelineCfg.MAG
	w := cmd.OutOrStdout()

	if ids, _ := cmd.Flags().GetInt64Slice("ids"); len(ids) > 0 {
		field, _ := cmd.Flags().GetString("field")
		exprs, err := mag.BuildExpr(ids, field, cfg.MaxExprLength)
		if err != nil {
			return err
		}
		for _, e := range exprs {
			fmt.Fprintln(w, e)
		}
		return nil
	}

	terms, err := collect.ResolveTerms(cfg)
	if err != nil {
		return err
	}
	jobs := collect.Jobs(cfg)
	if onlyPending, _ := cmd.Flags().GetBool("pending"); onlyPending {
		manifest, err := collect.LoadManifest(dumpDir(cfg).ManifestPath())
		if err != nil {
			return err
		}
		jobs = pending.Select(jobs, manifest.Jobs())
	}
	for _, job := range jobs {
		exprs, err := collect.JobExprs(cfg, terms, job)
		if err != nil {
			return err
		}
		for _, e := range exprs {
			fmt.Fprintf(w, "%d %d %s\n", job.Year, job.Window, e)
		}
	}
	return nil
}
