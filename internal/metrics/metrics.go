// Package metrics exposes Prometheus instrumentation for catalog fetches and
// browsing sessions.
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CatalogFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mangashelf_catalog_fetch_duration_seconds",
			Help:    "Duration of catalog fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	CatalogFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangashelf_catalog_fetch_errors_total",
			Help: "Total number of failed catalog fetches",
		},
		[]string{"source"},
	)

	RecordsNormalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mangashelf_records_normalized_total",
			Help: "Total number of raw records turned into catalog items",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mangashelf_sessions_active",
			Help: "Current number of open browsing sessions",
		},
	)

	SessionsOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangashelf_sessions_opened_total",
			Help: "Total number of sessions opened, by final load status",
		},
		[]string{"status"},
	)

	ActionsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangashelf_actions_total",
			Help: "Total number of facet actions dispatched",
		},
		[]string{"type"},
	)

	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mangashelf_live_clients",
			Help: "Current number of connected live view websocket clients",
		},
	)
)

// RecordFetch records one catalog fetch.
func RecordFetch(source string, duration time.Duration, records int, err error) {
	CatalogFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		CatalogFetchErrors.WithLabelValues(source).Inc()
		return
	}
	RecordsNormalized.Add(float64(records))
}

func RecordSessionOpened(status string) {
	SessionsOpened.WithLabelValues(status).Inc()
	SessionsActive.Inc()
}

func RecordSessionClosed() {
	SessionsActive.Dec()
}

func RecordAction(actionType string) {
	ActionsApplied.WithLabelValues(actionType).Inc()
}

// TrackLiveClient adjusts the live client gauge.
func TrackLiveClient(inc bool) {
	if inc {
		LiveClients.Inc()
	} else {
		LiveClients.Dec()
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
