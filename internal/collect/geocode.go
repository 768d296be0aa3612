// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nestauk/ai-research/internal/geocode"
	"github.com/nestauk/ai-research/internal/observability"
	"github.com/nestauk/ai-research/pkg/types"
)

// PlaceStore reads affiliations without a place and stores found places.
type PlaceStore interface {
	PendingAffiliations(ctx context.Context) ([]types.Affiliation, error)
	SaveAffiliationLocation(ctx context.Context, loc types.AffiliationLocation) (bool, error)
}

// GeocodeAffiliations resolves every affiliation without a stored place:
// the affiliation name is looked up, the best candidate's details fetched
// and parsed, and the place saved. An affiliation without a match is
// skipped and left pending, so a later run tries it again. Any other
// failure is logged and counted and the remaining affiliations still run.
func GeocodeAffiliations(ctx context.Context, g geocode.Geocoder, ps PlaceStore, logger zerolog.Logger, metrics *observability.Metrics) (Summary, error) {
	var summary Summary

	affiliations, err := ps.PendingAffiliations(ctx)
	if err != nil {
		return summary, fmt.Errorf("reading pending affiliations: %w", err)
	}
	logger.Info().Int("pending", len(affiliations)).Msg("geocoding affiliations")

	for _, aff := range affiliations {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		affLogger := observability.WithEntityContext(logger, "affiliation", aff.ID)

		err := geocodeOne(ctx, g, ps, aff)
		switch {
		case err == nil:
			summary.Completed++
			metrics.RecordGeocodeLookup(observability.GeocodeFound)
			affLogger.Debug().Str("name", aff.Name).Msg("affiliation geocoded")
		case errors.Is(err, geocode.ErrNoMatch):
			summary.Skipped++
			metrics.RecordGeocodeLookup(observability.GeocodeNoMatch)
			affLogger.Debug().Str("name", aff.Name).Msg("no place found")
		default:
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return summary, ctxErr
			}
			summary.Failed++
			metrics.RecordGeocodeLookup(observability.GeocodeError)
			affLogger.Error().Err(err).Str("name", aff.Name).Msg("geocoding failed")
		}
	}

	logger.Info().
		Int("geocoded", summary.Completed).
		Int("no_match", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("geocoding complete")
	return summary, nil
}

func geocodeOne(ctx context.Context, g geocode.Geocoder, ps PlaceStore, aff types.Affiliation) error {
	placeID, err := g.PlaceByName(ctx, aff.Name)
	if err != nil {
		return err
	}
	details, err := g.PlaceByID(ctx, placeID)
	if err != nil {
		return err
	}
	loc, err := geocode.ParseDetails(details, aff.ID)
	if err != nil {
		return err
	}
	if _, err := ps.SaveAffiliationLocation(ctx, loc); err != nil {
		return err
	}
	return nil
}
