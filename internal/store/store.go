// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists parsed academic graph records, field-of-study
// hierarchy metadata and geocoded affiliations in a SQLite database.
// Every write is idempotent: rows are keyed on academic graph ids (and place
// ids for geocoded places) and duplicates are ignored, so rerunning a stage
// after a partial failure never duplicates data.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nestauk/ai-research/internal/observability"
	"github.com/nestauk/ai-research/pkg/types"
)

// Table names.
const (
	TablePapers             = "mag_papers"
	TableJournals           = "mag_paper_journal"
	TableConferences        = "mag_paper_conferences"
	TableAuthors            = "mag_authors"
	TablePaperAuthors       = "mag_paper_authors"
	TableAffiliations       = "mag_affiliation"
	TableAuthorAffiliations = "mag_author_affiliation"
	TableFieldsOfStudy      = "mag_fields_of_study"
	TablePaperFieldsOfStudy = "mag_paper_fields_of_study"
	TableFosMetadata        = "mag_field_of_study_metadata"
	TableFosHierarchy       = "mag_field_of_study_hierarchy"
	TableGeocodedPlaces     = "geocoded_places"
)

// Tables lists every table in schema order.
var Tables = []string{
	TablePapers, TableJournals, TableConferences, TableAuthors, TablePaperAuthors,
	TableAffiliations, TableAuthorAffiliations, TableFieldsOfStudy, TablePaperFieldsOfStudy,
	TableFosMetadata, TableFosHierarchy, TableGeocodedPlaces,
}

// Store manages the pipeline's SQLite database.
type Store struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// Open opens or creates the database at cfg.Path, creating its directory
// and schema when missing. A nil metrics disables row counting.
func Open(cfg types.StoreConfig, metrics *observability.Metrics) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps writes serialised.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, metrics: metrics}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS mag_papers (
			id INTEGER PRIMARY KEY,
			prob REAL,
			title TEXT,
			publication_type TEXT,
			year INTEGER,
			date TEXT,
			citations INTEGER,
			reference_ids TEXT,
			doi TEXT,
			publisher TEXT,
			bibtex_doc_type TEXT,
			abstract TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS mag_paper_journal (
			paper_id INTEGER PRIMARY KEY REFERENCES mag_papers(id),
			id INTEGER NOT NULL,
			journal_name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS mag_paper_conferences (
			paper_id INTEGER PRIMARY KEY REFERENCES mag_papers(id),
			id INTEGER NOT NULL,
			conference_name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS mag_authors (
			id INTEGER PRIMARY KEY,
			name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS mag_paper_authors (
			paper_id INTEGER NOT NULL REFERENCES mag_papers(id),
			author_id INTEGER NOT NULL REFERENCES mag_authors(id),
			author_order INTEGER,
			PRIMARY KEY (paper_id, author_id)
		)`,
		`CREATE TABLE IF NOT EXISTS mag_affiliation (
			id INTEGER PRIMARY KEY,
			affiliation TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS mag_author_affiliation (
			paper_id INTEGER NOT NULL REFERENCES mag_papers(id),
			author_id INTEGER NOT NULL REFERENCES mag_authors(id),
			affiliation_id INTEGER NOT NULL REFERENCES mag_affiliation(id),
			PRIMARY KEY (paper_id, author_id, affiliation_id)
		)`,
		`CREATE TABLE IF NOT EXISTS mag_fields_of_study (
			id INTEGER PRIMARY KEY,
			name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS mag_paper_fields_of_study (
			paper_id INTEGER NOT NULL REFERENCES mag_papers(id),
			field_of_study_id INTEGER NOT NULL REFERENCES mag_fields_of_study(id),
			PRIMARY KEY (paper_id, field_of_study_id)
		)`,
		`CREATE TABLE IF NOT EXISTS mag_field_of_study_metadata (
			id INTEGER PRIMARY KEY REFERENCES mag_fields_of_study(id),
			level INTEGER NOT NULL,
			frequency INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS mag_field_of_study_hierarchy (
			id INTEGER PRIMARY KEY REFERENCES mag_fields_of_study(id),
			parent_ids TEXT,
			child_ids TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS geocoded_places (
			id TEXT NOT NULL,
			affiliation_id INTEGER NOT NULL REFERENCES mag_affiliation(id),
			lat REAL,
			lng REAL,
			address TEXT,
			name TEXT,
			types TEXT,
			website TEXT,
			postal_town TEXT,
			administrative_area_level_2 TEXT,
			administrative_area_level_1 TEXT,
			country TEXT,
			PRIMARY KEY (id, affiliation_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_geocoded_places_affiliation ON geocoded_places(affiliation_id)`,
		`CREATE INDEX IF NOT EXISTS idx_paper_fos_fos ON mag_paper_fields_of_study(field_of_study_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Counts returns the number of rows in every table.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(Tables))
	for _, table := range Tables {
		var n int64
		// Table names come from the fixed Tables list.
		if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM `+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// queryInt64s runs a query returning a single integer column.
func (s *Store) queryInt64s(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
