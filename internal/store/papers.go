// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nestauk/ai-research/pkg/types"
)

// SaveSummary counts the rows a write actually inserted, per table. Rows
// that already existed are not counted.
type SaveSummary struct {
	Papers             int64
	Journals           int64
	Conferences        int64
	Authors            int64
	PaperAuthors       int64
	Affiliations       int64
	AuthorAffiliations int64
	FieldsOfStudy      int64
	PaperFieldsOfStudy int64
}

// Total returns the number of rows inserted across all tables.
func (s SaveSummary) Total() int64 {
	return s.Papers + s.Journals + s.Conferences + s.Authors + s.PaperAuthors +
		s.Affiliations + s.AuthorAffiliations + s.FieldsOfStudy + s.PaperFieldsOfStudy
}

// SaveBatch inserts every record of b in one transaction. Records whose key
// already exists are ignored, so saving the same batch twice inserts nothing
// the second time. Referenced rows are written before the rows linking them.
func (s *Store) SaveBatch(ctx context.Context, b types.Batch) (SaveSummary, error) {
	var sum SaveSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return sum, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	steps := []struct {
		table string
		n     *int64
		run   func(*sql.Stmt) (int64, error)
		query string
	}{
		{TablePapers, &sum.Papers, func(st *sql.Stmt) (int64, error) {
			return execEach(ctx, st, b.Papers, func(p types.Paper) ([]any, error) {
				refs, err := encodeIDs(p.References)
				if err != nil {
					return nil, err
				}
				return []any{p.ID, p.Prob, p.Title, p.PublicationType, p.Year, p.Date,
					p.Citations, refs, p.DOI, p.Publisher, p.BibtexDocType, p.Abstract}, nil
			})
		}, `INSERT OR IGNORE INTO mag_papers
			(id, prob, title, publication_type, year, date, citations, reference_ids, doi, publisher, bibtex_doc_type, abstract)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`},
		{TableJournals, &sum.Journals, func(st *sql.Stmt) (int64, error) {
			return execEach(ctx, st, b.Journals, func(j types.Journal) ([]any, error) {
				return []any{j.PaperID, j.ID, j.Name}, nil
			})
		}, `INSERT OR IGNORE INTO mag_paper_journal (paper_id, id, journal_name) VALUES (?, ?, ?)`},
		{TableConferences, &sum.Conferences, func(st *sql.Stmt) (int64, error) {
			return execEach(ctx, st, b.Conferences, func(c types.Conference) ([]any, error) {
				return []any{c.PaperID, c.ID, c.Name}, nil
			})
		}, `INSERT OR IGNORE INTO mag_paper_conferences (paper_id, id, conference_name) VALUES (?, ?, ?)`},
		{TableAuthors, &sum.Authors, func(st *sql.Stmt) (int64, error) {
			return execEach(ctx, st, b.Authors, func(a types.Author) ([]any, error) {
				return []any{a.ID, a.Name}, nil
			})
		}, `INSERT OR IGNORE INTO mag_authors (id, name) VALUES (?, ?)`},
		{TablePaperAuthors, &sum.PaperAuthors, func(st *sql.Stmt) (int64, error) {
			return execEach(ctx, st, b.PaperAuthors, func(pa types.PaperAuthor) ([]any, error) {
				return []any{pa.PaperID, pa.AuthorID, pa.Order}, nil
			})
		}, `INSERT OR IGNORE INTO mag_paper_authors (paper_id, author_id, author_order) VALUES (?, ?, ?)`},
		{TableAffiliations, &sum.Affiliations, func(st *sql.Stmt) (int64, error) {
			return execEach(ctx, st, b.Affiliations, func(a types.Affiliation) ([]any, error) {
				return []any{a.ID, a.Name}, nil
			})
		}, `INSERT OR IGNORE INTO mag_affiliation (id, affiliation) VALUES (?, ?)`},
		{TableAuthorAffiliations, &sum.AuthorAffiliations, func(st *sql.Stmt) (int64, error) {
			return execEach(ctx, st, b.AuthorAffiliations, func(aa types.AuthorAffiliation) ([]any, error) {
				return []any{aa.PaperID, aa.AuthorID, aa.AffiliationID}, nil
			})
		}, `INSERT OR IGNORE INTO mag_author_affiliation (paper_id, author_id, affiliation_id) VALUES (?, ?, ?)`},
		{TableFieldsOfStudy, &sum.FieldsOfStudy, func(st *sql.Stmt) (int64, error) {
			return execEach(ctx, st, b.FieldsOfStudy, func(f types.FieldOfStudy) ([]any, error) {
				return []any{f.ID, f.Name}, nil
			})
		}, `INSERT OR IGNORE INTO mag_fields_of_study (id, name) VALUES (?, ?)`},
		{TablePaperFieldsOfStudy, &sum.PaperFieldsOfStudy, func(st *sql.Stmt) (int64, error) {
			return execEach(ctx, st, b.PaperFieldsOfStudy, func(pf types.PaperFieldOfStudy) ([]any, error) {
				return []any{pf.PaperID, pf.FieldOfStudyID}, nil
			})
		}, `INSERT OR IGNORE INTO mag_paper_fields_of_study (paper_id, field_of_study_id) VALUES (?, ?)`},
	}

	for _, step := range steps {
		stmt, err := tx.PrepareContext(ctx, step.query)
		if err != nil {
			return SaveSummary{}, fmt.Errorf("preparing %s insert: %w", step.table, err)
		}
		n, err := step.run(stmt)
		stmt.Close()
		if err != nil {
			return SaveSummary{}, fmt.Errorf("inserting into %s: %w", step.table, err)
		}
		*step.n = n
	}

	if err := tx.Commit(); err != nil {
		return SaveSummary{}, fmt.Errorf("committing batch: %w", err)
	}

	for _, step := range steps {
		s.metrics.RecordRowsInserted(step.table, *step.n)
	}
	return sum, nil
}

// execEach executes stmt once per item and returns the number of rows
// inserted.
func execEach[T any](ctx context.Context, stmt *sql.Stmt, items []T, args func(T) ([]any, error)) (int64, error) {
	var inserted int64
	for _, it := range items {
		a, err := args(it)
		if err != nil {
			return inserted, err
		}
		res, err := stmt.ExecContext(ctx, a...)
		if err != nil {
			return inserted, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += n
	}
	return inserted, nil
}

// encodeIDs stores an id list as a JSON array; an empty list is NULL.
func encodeIDs(ids []int64) (*string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encoding ids: %w", err)
	}
	s := string(data)
	return &s, nil
}

// decodeIDs is the inverse of encodeIDs.
func decodeIDs(s sql.NullString) ([]int64, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var ids []int64
	if err := json.Unmarshal([]byte(s.String), &ids); err != nil {
		return nil, fmt.Errorf("decoding ids: %w", err)
	}
	return ids, nil
}
