// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nestauk/ai-research/internal/mag"
	"github.com/nestauk/ai-research/internal/store"
	"github.com/nestauk/ai-research/pkg/types"
)

// BatchSaver persists parsed paper batches.
type BatchSaver interface {
	SaveBatch(ctx context.Context, b types.Batch) (store.SaveSummary, error)
}

// IngestSummary reports what Ingest read and stored.
type IngestSummary struct {
	Files    int
	Entities int
	Unique   int
	Saved    store.SaveSummary
}

// Ingest loads every page dump, drops entities repeated across pages
// (keeping the first occurrence of each Id), parses the rest into relational
// records and saves them in one batch. Rows already stored are left
// untouched, so ingesting the same dumps twice stores nothing new.
func Ingest(ctx context.Context, dumps DumpDir, saver BatchSaver, logger zerolog.Logger) (IngestSummary, error) {
	var summary IngestSummary

	files, err := dumps.Files()
	if err != nil {
		return summary, err
	}
	summary.Files = len(files)
	if len(files) == 0 {
		logger.Warn().Str("dir", dumps.Dir).Msg("no page dumps found")
		return summary, nil
	}

	var entities []mag.Entity
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		page, err := ReadPage(path)
		if err != nil {
			return summary, err
		}
		entities = append(entities, page.Entities...)
	}
	summary.Entities = len(entities)

	entities = mag.UniqueEntities(entities)
	summary.Unique = len(entities)

	batch := mag.ParseEntities(entities)
	logger.Info().
		Int("files", summary.Files).
		Int("entities", summary.Entities).
		Int("unique", summary.Unique).
		Int("papers", len(batch.Papers)).
		Int("authors", len(batch.Authors)).
		Int("affiliations", len(batch.Affiliations)).
		Int("fields_of_study", len(batch.FieldsOfStudy)).
		Msg("parsed page dumps")

	saved, err := saver.SaveBatch(ctx, batch)
	if err != nil {
		return summary, fmt.Errorf("saving batch: %w", err)
	}
	summary.Saved = saved
	logger.Info().Int64("rows", saved.Total()).Msg("batch stored")
	return summary, nil
}
