// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ai_research"

// Metrics holds the pipeline counters. A nil *Metrics is valid and records
// nothing, so components can be used without a registry.
type Metrics struct {
	// MAGRequests counts Evaluate requests by HTTP status ("error" when no
	// response was received).
	MAGRequests *prometheus.CounterVec

	// MAGRequestDuration observes Evaluate round trips in seconds.
	MAGRequestDuration prometheus.Histogram

	// MAGPages counts pages received.
	MAGPages prometheus.Counter

	// MAGEntities counts entities received.
	MAGEntities prometheus.Counter

	// GeocodeLookups counts affiliation lookups by result (found, no_match, error).
	GeocodeLookups *prometheus.CounterVec

	// StoreRowsInserted counts rows written, by table.
	StoreRowsInserted *prometheus.CounterVec
}

// NewMetrics creates the pipeline counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		MAGRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mag_requests_total",
			Help:      "Evaluate API requests by HTTP status",
		}, []string{"status"}),
		MAGRequestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mag_request_duration_seconds",
			Help:      "Evaluate API request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		MAGPages: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mag_pages_total",
			Help:      "Evaluate API result pages received",
		}),
		MAGEntities: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mag_entities_total",
			Help:      "Evaluate API entities received",
		}),
		GeocodeLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_lookups_total",
			Help:      "Affiliation geocoding lookups by result",
		}, []string{"result"}),
		StoreRowsInserted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_rows_inserted_total",
			Help:      "Rows inserted into the store by table",
		}, []string{"table"}),
	}
}

// RecordMAGRequest counts one Evaluate request. status is 0 when the request
// failed before a response arrived.
func (m *Metrics) RecordMAGRequest(status int, seconds float64) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.MAGRequests.WithLabelValues(label).Inc()
	m.MAGRequestDuration.Observe(seconds)
}

// RecordMAGPage counts one page and its entities.
func (m *Metrics) RecordMAGPage(entities int) {
	if m == nil {
		return
	}
	m.MAGPages.Inc()
	m.MAGEntities.Add(float64(entities))
}

// Geocode lookup results.
const (
	GeocodeFound   = "found"
	GeocodeNoMatch = "no_match"
	GeocodeError   = "error"
)

// RecordGeocodeLookup counts one affiliation lookup.
func (m *Metrics) RecordGeocodeLookup(result string) {
	if m == nil {
		return
	}
	m.GeocodeLookups.WithLabelValues(result).Inc()
}

// RecordRowsInserted adds n inserted rows for table.
func (m *Metrics) RecordRowsInserted(table string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.StoreRowsInserted.WithLabelValues(table).Add(float64(n))
}

// WriteTextfile writes every metric gathered by g to path in the Prometheus
// text exposition format. An empty path is a no-op.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, g)
}
