// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect runs the pipeline stages: paper collection into page
// dumps, ingestion of dumps into the store, field-of-study level lookup and
// affiliation geocoding. Every stage computes its pending work from what is
// already recorded, so a rerun only does what is left.
package collect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nestauk/ai-research/internal/mag"
	"github.com/nestauk/ai-research/internal/observability"
	"github.com/nestauk/ai-research/internal/pending"
	"github.com/nestauk/ai-research/pkg/types"
)

// Summary reports the outcome of a pipeline stage.
type Summary struct {
	Completed int
	Skipped   int
	Failed    int
	Pages     int
	Entities  int
}

// Total returns the number of work items the stage considered.
func (s Summary) Total() int {
	return s.Completed + s.Skipped + s.Failed
}

// HasFailures reports whether any work item failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Jobs returns the collection jobs of cfg: every year from EndYear down to
// StartYear, each split into the configured windows in order.
func Jobs(cfg types.MAGConfig) []Job {
	windows := cfg.Windows
	if len(windows) == 0 {
		windows = mag.DefaultWindows()
	}
	var jobs []Job
	for year := cfg.EndYear; year >= cfg.StartYear; year-- {
		for w := range windows {
			jobs = append(jobs, Job{Year: year, Window: w})
		}
	}
	return jobs
}

// JobExprs returns the query expressions of job. The terms are split over
// as many expressions as it takes to keep each within cfg.MaxExprLength.
func JobExprs(cfg types.MAGConfig, terms []string, job Job) ([]string, error) {
	windows := cfg.Windows
	if len(windows) == 0 {
		windows = mag.DefaultWindows()
	}
	return mag.BuildCompositeExprsDate(terms, cfg.EntityName, job.Year, windows[job.Window], cfg.MaxExprLength)
}

// Papers fetches every pending collection job of cfg and dumps each page as
// it arrives. A job whose terms do not fit one expression runs as several
// batches, one per expression. A job is recorded in the manifest once the
// last page of its last batch is dumped; jobs already in the manifest are
// skipped. A failed job is logged and counted and the remaining jobs still
// run. A term too long for any expression stops the collection, as does
// cancellation.
func Papers(ctx context.Context, q mag.Querier, cfg types.MAGConfig, dumps DumpDir, logger zerolog.Logger) (Summary, error) {
	var summary Summary

	terms, err := ResolveTerms(cfg)
	if err != nil {
		return summary, err
	}

	manifestPath := dumps.ManifestPath()
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return summary, err
	}

	all := Jobs(cfg)
	todo := pending.Select(all, manifest.Jobs())
	summary.Skipped = len(all) - len(todo)
	logger.Info().
		Int("jobs", len(all)).
		Int("pending", len(todo)).
		Int("terms", len(terms)).
		Msg("collecting papers")

	for _, job := range todo {
		jobLogger := observability.WithExprContext(logger, job.Year, job.Window)
		exprs, err := JobExprs(cfg, terms, job)
		if err != nil {
			return summary, fmt.Errorf("building expressions for job %d/%d: %w", job.Year, job.Window, err)
		}
		start := time.Now()

		stats, err := fetchJob(ctx, q, cfg, dumps, job, exprs, jobLogger)
		summary.Pages += stats.Pages
		summary.Entities += stats.Entities

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return summary, ctxErr
			}
			summary.Failed++
			jobLogger.Error().Err(err).Int("pages", stats.Pages).Msg("collection job failed")
			continue
		}

		manifest.Add(ManifestEntry{
			Job:         job,
			Exprs:       exprs,
			Pages:       stats.Pages,
			Entities:    stats.Entities,
			CompletedAt: time.Now().UTC(),
		})
		if err := manifest.Save(manifestPath); err != nil {
			return summary, fmt.Errorf("recording job %d/%d: %w", job.Year, job.Window, err)
		}
		summary.Completed++
		jobLogger.Info().
			Int("batches", len(exprs)).
			Int("pages", stats.Pages).
			Int("entities", stats.Entities).
			Dur("elapsed", time.Since(start)).
			Msg("collection job complete")
	}

	return summary, nil
}

// fetchJob fetches the batches of job in order, stopping at the first
// failed batch.
func fetchJob(ctx context.Context, q mag.Querier, cfg types.MAGConfig, dumps DumpDir, job Job, exprs []string, logger zerolog.Logger) (mag.FetchStats, error) {
	var total mag.FetchStats
	for batch, expr := range exprs {
		stats, err := mag.FetchAll(ctx, q, mag.FetchRequest{
			Expr:       expr,
			Attributes: cfg.Attributes,
			PageSize:   cfg.PageSize,
			MaxPages:   cfg.MaxPages,
		}, func(page mag.Page) error {
			path, err := dumps.WritePage(job, batch, page)
			if err != nil {
				return err
			}
			logger.Debug().
				Int("batch", batch).
				Int("offset", page.Offset).
				Int("entities", len(page.Entities)).
				Str("path", path).
				Msg("page dumped")
			return nil
		})
		total.Pages += stats.Pages
		total.Entities += stats.Entities
		if err != nil {
			return total, fmt.Errorf("batch %d: %w", batch, err)
		}
	}
	return total, nil
}
