// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ExportEntry is one geocoded affiliation in an export file.
type ExportEntry struct {
	AffiliationID int64   `json:"affiliation_id" yaml:"affiliation_id"`
	Affiliation   string  `json:"affiliation" yaml:"affiliation"`
	Papers        int64   `json:"papers" yaml:"papers"`
	PlaceID       string  `json:"place_id" yaml:"place_id"`
	Name          string  `json:"name" yaml:"name"`
	Lat           float64 `json:"lat" yaml:"lat"`
	Lng           float64 `json:"lng" yaml:"lng"`
	Country       string  `json:"country,omitempty" yaml:"country,omitempty"`
	Region        string  `json:"region,omitempty" yaml:"region,omitempty"`
	PostalTown    string  `json:"postal_town,omitempty" yaml:"postal_town,omitempty"`
}

// Export writes every geocoded affiliation with its paper count to path.
// The format follows the extension: .json writes indented JSON, anything
// else YAML. It returns the number of entries written.
func (s *Store) Export(ctx context.Context, path string) (int, error) {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return 0, err
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(entries, "", "  ")
	} else {
		data, err = yaml.Marshal(entries)
	}
	if err != nil {
		return 0, fmt.Errorf("marshaling export: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("writing export: %w", err)
	}
	return len(entries), nil
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, coalesce(a.affiliation, ''),
			(SELECT count(DISTINCT aa.paper_id) FROM mag_author_affiliation aa WHERE aa.affiliation_id = a.id),
			g.id, coalesce(g.name, ''), g.lat, g.lng,
			coalesce(g.country, ''), coalesce(g.administrative_area_level_1, ''), coalesce(g.postal_town, '')
		 FROM geocoded_places g
		 JOIN mag_affiliation a ON a.id = g.affiliation_id
		 ORDER BY a.id, g.id`)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	entries := []ExportEntry{}
	for rows.Next() {
		var e ExportEntry
		if err := rows.Scan(&e.AffiliationID, &e.Affiliation, &e.Papers, &e.PlaceID, &e.Name,
			&e.Lat, &e.Lng, &e.Country, &e.Region, &e.PostalTown); err != nil {
			return nil, fmt.Errorf("scanning export row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
