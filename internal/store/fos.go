// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nestauk/ai-research/internal/pending"
	"github.com/nestauk/ai-research/pkg/types"
)

// FieldOfStudyIDs returns the ids of every stored field of study.
func (s *Store) FieldOfStudyIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.queryInt64s(ctx, `SELECT id FROM mag_fields_of_study ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing fields of study: %w", err)
	}
	return ids, nil
}

// FosMetadataIDs returns the ids of fields of study whose level is known.
func (s *Store) FosMetadataIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.queryInt64s(ctx, `SELECT id FROM mag_field_of_study_metadata ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing field of study metadata: %w", err)
	}
	return ids, nil
}

// PendingFosMetadata returns the fields of study whose level has not been
// collected yet, read from the current database state.
func (s *Store) PendingFosMetadata(ctx context.Context) ([]int64, error) {
	all, err := s.FieldOfStudyIDs(ctx)
	if err != nil {
		return nil, err
	}
	done, err := s.FosMetadataIDs(ctx)
	if err != nil {
		return nil, err
	}
	return pending.Select(all, done), nil
}

// SaveFosMetadata stores the level and hierarchy of a page of fields of
// study in one transaction and returns the number of metadata rows
// inserted. Fields whose metadata already exists are left unchanged. The
// paper frequency of each field is computed from the stored paper links.
func (s *Store) SaveFosMetadata(ctx context.Context, fos []types.FosMetadata) (int64, error) {
	if len(fos) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var inserted, hierarchy int64
	for _, f := range fos {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO mag_field_of_study_metadata (id, level, frequency)
			 VALUES (?, ?, (SELECT count(*) FROM mag_paper_fields_of_study WHERE field_of_study_id = ?))`,
			f.ID, f.Level, f.ID,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting metadata for %d: %w", f.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += n

		parents, err := encodeIDs(f.ParentIDs)
		if err != nil {
			return 0, err
		}
		children, err := encodeIDs(f.ChildIDs)
		if err != nil {
			return 0, err
		}
		res, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO mag_field_of_study_hierarchy (id, parent_ids, child_ids) VALUES (?, ?, ?)`,
			f.ID, parents, children,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting hierarchy for %d: %w", f.ID, err)
		}
		n, err = res.RowsAffected()
		if err != nil {
			return 0, err
		}
		hierarchy += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing field of study metadata: %w", err)
	}

	s.metrics.RecordRowsInserted(TableFosMetadata, inserted)
	s.metrics.RecordRowsInserted(TableFosHierarchy, hierarchy)
	return inserted, nil
}

// FosMetadata returns the stored metadata of one field of study, or nil when
// none exists.
func (s *Store) FosMetadata(ctx context.Context, id int64) (*types.FosMetadata, error) {
	f := types.FosMetadata{ID: id}
	var parents, children sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT coalesce(fos.name, ''), m.level, h.parent_ids, h.child_ids
		 FROM mag_field_of_study_metadata m
		 JOIN mag_fields_of_study fos ON fos.id = m.id
		 LEFT JOIN mag_field_of_study_hierarchy h ON h.id = m.id
		 WHERE m.id = ?`, id,
	).Scan(&f.Name, &f.Level, &parents, &children)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata for %d: %w", id, err)
	}
	if f.ParentIDs, err = decodeIDs(parents); err != nil {
		return nil, err
	}
	if f.ChildIDs, err = decodeIDs(children); err != nil {
		return nil, err
	}
	return &f, nil
}
