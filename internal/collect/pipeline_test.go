// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestauk/ai-research/internal/geocode"
	"github.com/nestauk/ai-research/internal/mag"
	"github.com/nestauk/ai-research/internal/observability"
	"github.com/nestauk/ai-research/internal/store"
	"github.com/nestauk/ai-research/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(types.StoreConfig{Path: filepath.Join(t.TempDir(), "ai.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func paperEntity(id, fieldID, affID int64, affName string) mag.Entity {
	return mag.Entity{
		ID:    ptr(id),
		Title: ptr("paper " + strconv.FormatInt(id, 10)),
		Year:  ptr(2020),
		Authors: []mag.AuthorEntry{{
			AuthorID:        ptr(id + 1000),
			Name:            ptr("author"),
			AffiliationID:   ptr(affID),
			AffiliationName: ptr(affName),
			Order:           ptr(1),
		}},
		Fields: []mag.FieldEntry{{ID: ptr(fieldID), DisplayName: ptr("Field " + strconv.FormatInt(fieldID, 10))}},
	}
}

// writeDumps stores two pages that share paper 2.
func writeDumps(t *testing.T) DumpDir {
	t.Helper()
	dumps := DumpDir{Dir: t.TempDir(), Prefix: "mag"}
	pages := []mag.Page{
		{Offset: 0, Entities: []mag.Entity{
			paperEntity(1, 500, 10, "Univ A"),
			paperEntity(2, 501, 11, "Lab B"),
		}},
		{Offset: 2, Entities: []mag.Entity{
			paperEntity(2, 501, 11, "Lab B"),
			paperEntity(3, 500, 10, "Univ A"),
		}},
	}
	for _, p := range pages {
		_, err := dumps.WritePage(Job{Year: 2020}, 0, p)
		require.NoError(t, err)
	}
	return dumps
}

func TestIngest_StoresDumpsOnce(t *testing.T) {
	dumps := writeDumps(t)
	s := testStore(t)
	ctx := context.Background()

	summary, err := Ingest(ctx, dumps, s, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 4, summary.Entities)
	assert.Equal(t, 3, summary.Unique)
	assert.Equal(t, int64(3), summary.Saved.Papers)
	assert.Equal(t, int64(2), summary.Saved.Affiliations)
	assert.Equal(t, int64(2), summary.Saved.FieldsOfStudy)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[store.TablePapers])
	assert.Equal(t, int64(3), counts[store.TableAuthors])

	again, err := Ingest(ctx, dumps, s, zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, again.Saved.Total())
}

func TestIngest_NoDumps(t *testing.T) {
	summary, err := Ingest(context.Background(), DumpDir{Dir: t.TempDir(), Prefix: "mag"}, testStore(t), zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, summary.Files)
}

type failingSaver struct{}

func (failingSaver) SaveBatch(context.Context, types.Batch) (store.SaveSummary, error) {
	return store.SaveSummary{}, errors.New("disk full")
}

func TestIngest_SaveError(t *testing.T) {
	_, err := Ingest(context.Background(), writeDumps(t), failingSaver{}, zerolog.Nop())
	assert.ErrorContains(t, err, "disk full")
}

var idPattern = regexp.MustCompile(`Id=(\d+)`)

// fosQuerier answers id-list expressions with a level for every id listed.
type fosQuerier struct {
	levels   map[int64]int
	requests []mag.Request
}

func (q *fosQuerier) Query(_ context.Context, req mag.Request) (mag.Page, error) {
	q.requests = append(q.requests, req)
	var entities []mag.Entity
	for _, m := range idPattern.FindAllStringSubmatch(req.Expr, -1) {
		id, _ := strconv.ParseInt(m[1], 10, 64)
		level, ok := q.levels[id]
		if !ok {
			continue
		}
		entities = append(entities, mag.Entity{
			ID:          ptr(id),
			DisplayName: ptr("field"),
			Level:       ptr(level),
			Parents:     []mag.FieldLink{{ID: ptr(int64(1))}},
		})
	}
	return mag.Page{Expr: req.Expr, Offset: req.Offset, Entities: entities}, nil
}

func TestFosLevels_StoresPendingOnly(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := Ingest(ctx, writeDumps(t), s, zerolog.Nop())
	require.NoError(t, err)

	// Id=500 and Id=501 do not fit one expression.
	cfg := types.MAGConfig{PageSize: 100, MaxExprLength: len("expr=OR(Id=500)")}
	q := &fosQuerier{levels: map[int64]int{500: 2, 501: 3}}

	summary, err := FosLevels(ctx, q, s, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 2, summary.Entities)
	require.Len(t, q.requests, 2)
	assert.Equal(t, "expr=OR(Id=500)", q.requests[0].Expr)
	assert.Equal(t, mag.FosAttributes, q.requests[0].Attributes)

	meta, err := s.FosMetadata(ctx, 501)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, 3, meta.Level)
	assert.Equal(t, []int64{1}, meta.ParentIDs)

	again := &fosQuerier{levels: q.levels}
	summary, err = FosLevels(ctx, again, s, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, summary.Total())
	assert.Empty(t, again.requests)
}

func TestFosLevels_FailedExpressionCounted(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	_, err := Ingest(ctx, writeDumps(t), s, zerolog.Nop())
	require.NoError(t, err)

	q := &pageQuerier{fail: func(mag.Request) error {
		return &mag.RequestError{StatusCode: 401, Body: "bad key"}
	}}
	summary, err := FosLevels(ctx, q, s, types.MAGConfig{MaxExprLength: 1000}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	pendingIDs, err := s.PendingFosMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{500, 501}, pendingIDs)
}

// fakeGeocoder resolves names through fixed tables.
type fakeGeocoder struct {
	places  map[string]string
	failFor string
	lookups []string
}

func (g *fakeGeocoder) PlaceByName(_ context.Context, name string) (string, error) {
	g.lookups = append(g.lookups, name)
	if name == g.failFor {
		return "", &geocode.RequestError{Status: "OVER_QUERY_LIMIT"}
	}
	id, ok := g.places[name]
	if !ok {
		return "", geocode.ErrNoMatch
	}
	return id, nil
}

func (g *fakeGeocoder) PlaceByID(_ context.Context, placeID string) (*geocode.PlaceDetails, error) {
	return &geocode.PlaceDetails{
		PlaceID:  placeID,
		Name:     "place " + placeID,
		Geometry: &geocode.Geometry{Location: &geocode.LatLng{Lat: 51.5, Lng: -0.1}},
		AddressComponents: []geocode.AddressComponent{
			{LongName: "United Kingdom", ShortName: "GB", Types: []string{"country", "political"}},
		},
	}, nil
}

func TestGeocodeAffiliations(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	dumps := writeDumps(t)
	_, err := dumps.WritePage(Job{Year: 2019}, 0, mag.Page{Entities: []mag.Entity{paperEntity(4, 500, 12, "Broken Co")}})
	require.NoError(t, err)
	_, err = Ingest(ctx, dumps, s, zerolog.Nop())
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	g := &fakeGeocoder{places: map[string]string{"Univ A": "place-a"}, failFor: "Broken Co"}

	summary, err := GeocodeAffiliations(ctx, g, s, zerolog.Nop(), metrics)
	require.NoError(t, err)
	assert.Equal(t, Summary{Completed: 1, Skipped: 1, Failed: 1}, summary)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeLookups.WithLabelValues(observability.GeocodeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeLookups.WithLabelValues(observability.GeocodeNoMatch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeLookups.WithLabelValues(observability.GeocodeError)))

	locs, err := s.AffiliationLocations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "place-a", locs[0].PlaceID)
	assert.Equal(t, "United Kingdom", *locs[0].Country)

	// Unmatched and failed affiliations stay pending; the geocoded one does not.
	again := &fakeGeocoder{places: g.places}
	summary, err = GeocodeAffiliations(ctx, again, s, zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Skipped)
	assert.ElementsMatch(t, []string{"Lab B", "Broken Co"}, again.lookups)
}

func TestGeocodeAffiliations_Cancelled(t *testing.T) {
	s := testStore(t)
	_, err := Ingest(context.Background(), writeDumps(t), s, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := &fakeGeocoder{}
	_, err = GeocodeAffiliations(ctx, g, s, zerolog.Nop(), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, g.lookups)
}
