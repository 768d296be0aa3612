// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AffiliationLocation is the geocoded place of an affiliation. The place ID
// and the affiliation ID together identify a row; attributes the places API
// did not return are nil.
type AffiliationLocation struct {
	// PlaceID is the places API identifier.
	PlaceID string `json:"id" yaml:"id"`

	// AffiliationID is the academic graph affiliation this place resolves.
	AffiliationID int64 `json:"affiliation_id" yaml:"affiliation_id"`

	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
	Address string  `json:"address" yaml:"address"`
	Name    string  `json:"name" yaml:"name"`

	Types   []string `json:"types,omitempty" yaml:"types,omitempty"`
	Website *string  `json:"website,omitempty" yaml:"website,omitempty"`

	PostalTown               *string `json:"postal_town,omitempty" yaml:"postal_town,omitempty"`
	AdministrativeAreaLevel2 *string `json:"administrative_area_level_2,omitempty" yaml:"administrative_area_level_2,omitempty"`
	AdministrativeAreaLevel1 *string `json:"administrative_area_level_1,omitempty" yaml:"administrative_area_level_1,omitempty"`
	Country                  *string `json:"country,omitempty" yaml:"country,omitempty"`
}
