// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nestauk/ai-research/internal/mag"
	"github.com/nestauk/ai-research/pkg/types"
)

// FosStore reads pending fields of study and stores their metadata.
type FosStore interface {
	PendingFosMetadata(ctx context.Context) ([]int64, error)
	SaveFosMetadata(ctx context.Context, fos []types.FosMetadata) (int64, error)
}

// FosLevels looks up the level and hierarchy of every field of study that
// has no stored metadata. The pending ids are packed into as few id-list
// expressions as MaxExprLength allows; each expression is fetched and its
// pages saved as they arrive. A failed expression is logged and counted and
// the remaining expressions still run.
func FosLevels(ctx context.Context, q mag.Querier, fs FosStore, cfg types.MAGConfig, logger zerolog.Logger) (Summary, error) {
	var summary Summary

	ids, err := fs.PendingFosMetadata(ctx)
	if err != nil {
		return summary, fmt.Errorf("reading pending fields of study: %w", err)
	}
	if len(ids) == 0 {
		logger.Info().Msg("no fields of study pending")
		return summary, nil
	}

	exprs, err := mag.BuildExpr(ids, "Id", cfg.MaxExprLength)
	if err != nil {
		return summary, err
	}
	logger.Info().
		Int("pending", len(ids)).
		Int("expressions", len(exprs)).
		Msg("fetching field of study levels")

	for i, expr := range exprs {
		exprLogger := logger.With().Int("expr", i).Logger()

		var saved int64
		stats, err := mag.FetchAll(ctx, q, mag.FetchRequest{
			Expr:       expr,
			Attributes: mag.FosAttributes,
			PageSize:   cfg.PageSize,
			MaxPages:   cfg.MaxPages,
		}, func(page mag.Page) error {
			n, err := fs.SaveFosMetadata(ctx, mag.ParseFosMetadata(page.Entities))
			saved += n
			return err
		})
		summary.Pages += stats.Pages
		summary.Entities += stats.Entities

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return summary, ctxErr
			}
			summary.Failed++
			exprLogger.Error().Err(err).Int("pages", stats.Pages).Msg("field of study lookup failed")
			continue
		}
		summary.Completed++
		exprLogger.Info().
			Int("entities", stats.Entities).
			Int64("saved", saved).
			Msg("field of study levels stored")
	}

	return summary, nil
}
