// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geocode

import (
	"slices"

	"github.com/nestauk/ai-research/pkg/types"
)

// PlaceDetails is the result object of a place details response.
type PlaceDetails struct {
	PlaceID           string             `json:"place_id"`
	Name              string             `json:"name"`
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          *Geometry          `json:"geometry"`
	Types             []string           `json:"types"`
	Website           *string            `json:"website"`
	AddressComponents []AddressComponent `json:"address_components"`
}

// Geometry holds the location of a place.
type Geometry struct {
	Location *LatLng `json:"location"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AddressComponent is one part of a structured address.
type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// ParseDetails converts place details into the stored location of
// affiliationID. Place id and coordinates are required; every other
// attribute is optional. Of the address components, the postal town, the
// two administrative areas and the country are kept; when several
// components carry the same type the last one wins.
func ParseDetails(d *PlaceDetails, affiliationID int64) (types.AffiliationLocation, error) {
	if d == nil {
		return types.AffiliationLocation{}, &MalformedResponseError{Reason: "nil place details"}
	}
	if d.PlaceID == "" {
		return types.AffiliationLocation{}, &MalformedResponseError{Reason: "missing place_id"}
	}
	if d.Geometry == nil || d.Geometry.Location == nil {
		return types.AffiliationLocation{}, &MalformedResponseError{Reason: "missing geometry for " + d.PlaceID}
	}

	loc := types.AffiliationLocation{
		PlaceID:       d.PlaceID,
		AffiliationID: affiliationID,
		Lat:           d.Geometry.Location.Lat,
		Lng:           d.Geometry.Location.Lng,
		Address:       d.FormattedAddress,
		Name:          d.Name,
		Types:         d.Types,
		Website:       d.Website,
	}

	for _, c := range d.AddressComponents {
		name := c.LongName
		switch {
		case slices.Contains(c.Types, "postal_town"):
			loc.PostalTown = &name
		case slices.Contains(c.Types, "administrative_area_level_2"):
			loc.AdministrativeAreaLevel2 = &name
		case slices.Contains(c.Types, "administrative_area_level_1"):
			loc.AdministrativeAreaLevel1 = &name
		case slices.Contains(c.Types, "country"):
			loc.Country = &name
		}
	}
	return loc, nil
}
