// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestauk/ai-research/pkg/types"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNewLogger_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, types.LoggingConfig{Level: "warn", Format: "json"})

	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Str("k", "v").Msg("shown")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "v", entry["k"])
	assert.Equal(t, "warn", entry["level"])
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger(&buf, types.LoggingConfig{Level: "debug", Format: "json"})

	exprLogger := WithExprContext(base, 2019, 1)
	exprLogger.Info().Msg("page")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(2019), entry["year"])
	assert.Equal(t, float64(1), entry["window"])

	buf.Reset()
	entityLogger := WithEntityContext(base, "affiliation", 42)
	entityLogger.Info().Msg("geocoded")
	entry = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "affiliation", entry["entity"])
	assert.Equal(t, float64(42), entry["entity_id"])
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordMAGRequest(200, 0.3)
	m.RecordMAGRequest(200, 0.1)
	m.RecordMAGRequest(0, 0.0)
	m.RecordMAGPage(1000)
	m.RecordMAGPage(12)
	m.RecordGeocodeLookup(GeocodeFound)
	m.RecordGeocodeLookup(GeocodeNoMatch)
	m.RecordRowsInserted("mag_papers", 3)
	m.RecordRowsInserted("mag_papers", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MAGRequests.WithLabelValues("200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MAGRequests.WithLabelValues("error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MAGPages))
	assert.Equal(t, 1012.0, testutil.ToFloat64(m.MAGEntities))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GeocodeLookups.WithLabelValues(GeocodeFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GeocodeLookups.WithLabelValues(GeocodeNoMatch)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.StoreRowsInserted.WithLabelValues("mag_papers")))

	var metric dto.Metric
	require.NoError(t, m.MAGRequestDuration.Write(&metric))
	assert.Equal(t, uint64(3), metric.GetHistogram().GetSampleCount())
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordMAGRequest(500, 1)
		m.RecordMAGPage(3)
		m.RecordGeocodeLookup(GeocodeError)
		m.RecordRowsInserted("mag_authors", 1)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RecordMAGPage(5)

	path := filepath.Join(t.TempDir(), "ai_research.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ai_research_mag_pages_total 1")
	assert.Contains(t, string(data), "ai_research_mag_entities_total 5")

	assert.NoError(t, WriteTextfile("", reg))
}
