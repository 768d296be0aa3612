// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nestauk/ai-research/internal/pending"
	"github.com/nestauk/ai-research/pkg/types"
)

// Affiliations returns every stored affiliation ordered by id.
func (s *Store) Affiliations(ctx context.Context) ([]types.Affiliation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, coalesce(affiliation, '') FROM mag_affiliation ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing affiliations: %w", err)
	}
	defer rows.Close()

	var out []types.Affiliation
	for rows.Next() {
		var a types.Affiliation
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scanning affiliation: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GeocodedAffiliationIDs returns the affiliations that already have a place.
func (s *Store) GeocodedAffiliationIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.queryInt64s(ctx, `SELECT DISTINCT affiliation_id FROM geocoded_places ORDER BY affiliation_id`)
	if err != nil {
		return nil, fmt.Errorf("listing geocoded affiliations: %w", err)
	}
	return ids, nil
}

// PendingAffiliations returns the affiliations without a geocoded place,
// read from the current database state.
func (s *Store) PendingAffiliations(ctx context.Context) ([]types.Affiliation, error) {
	all, err := s.Affiliations(ctx)
	if err != nil {
		return nil, err
	}
	done, err := s.GeocodedAffiliationIDs(ctx)
	if err != nil {
		return nil, err
	}
	return pending.SelectBy(all, done, func(a types.Affiliation) int64 { return a.ID }), nil
}

// SaveAffiliationLocation stores one geocoded place in its own transaction.
// It reports whether a row was inserted; an existing (place, affiliation)
// pair is left unchanged.
func (s *Store) SaveAffiliationLocation(ctx context.Context, loc types.AffiliationLocation) (bool, error) {
	var placeTypes *string
	if len(loc.Types) > 0 {
		data, err := json.Marshal(loc.Types)
		if err != nil {
			return false, fmt.Errorf("encoding place types: %w", err)
		}
		encoded := string(data)
		placeTypes = &encoded
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO geocoded_places
			(id, affiliation_id, lat, lng, address, name, types, website,
			 postal_town, administrative_area_level_2, administrative_area_level_1, country)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loc.PlaceID, loc.AffiliationID, loc.Lat, loc.Lng, loc.Address, loc.Name, placeTypes, loc.Website,
		loc.PostalTown, loc.AdministrativeAreaLevel2, loc.AdministrativeAreaLevel1, loc.Country,
	)
	if err != nil {
		return false, fmt.Errorf("inserting place %s for affiliation %d: %w", loc.PlaceID, loc.AffiliationID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing place: %w", err)
	}

	s.metrics.RecordRowsInserted(TableGeocodedPlaces, n)
	return n > 0, nil
}

// AffiliationLocations returns the places stored for an affiliation.
func (s *Store) AffiliationLocations(ctx context.Context, affiliationID int64) ([]types.AffiliationLocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, affiliation_id, lat, lng, coalesce(address, ''), coalesce(name, ''), types, website,
			postal_town, administrative_area_level_2, administrative_area_level_1, country
		 FROM geocoded_places WHERE affiliation_id = ? ORDER BY id`, affiliationID)
	if err != nil {
		return nil, fmt.Errorf("listing places: %w", err)
	}
	defer rows.Close()

	var out []types.AffiliationLocation
	for rows.Next() {
		var loc types.AffiliationLocation
		var placeTypes, website, town, aa2, aa1, country sql.NullString
		if err := rows.Scan(&loc.PlaceID, &loc.AffiliationID, &loc.Lat, &loc.Lng, &loc.Address, &loc.Name,
			&placeTypes, &website, &town, &aa2, &aa1, &country); err != nil {
			return nil, fmt.Errorf("scanning place: %w", err)
		}
		if placeTypes.Valid {
			if err := json.Unmarshal([]byte(placeTypes.String), &loc.Types); err != nil {
				return nil, fmt.Errorf("decoding place types: %w", err)
			}
		}
		loc.Website = stringPtr(website)
		loc.PostalTown = stringPtr(town)
		loc.AdministrativeAreaLevel2 = stringPtr(aa2)
		loc.AdministrativeAreaLevel1 = stringPtr(aa1)
		loc.Country = stringPtr(country)
		out = append(out, loc)
	}
	return out, rows.Err()
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
