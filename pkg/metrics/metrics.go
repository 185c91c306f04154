// Package metrics exposes Prometheus instrumentation for analysis runs,
// chat searches, and WebSocket connections. Metrics are registered on the
// default registry and served by Handler on GET /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for finished analysis runs.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

var (
	// Analysis metrics
	analysesStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clippnj_analyses_started_total",
		Help: "Total number of analysis runs accepted",
	})

	analysesFinishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clippnj_analyses_finished_total",
		Help: "Total number of finished analysis runs by outcome",
	}, []string{"outcome"})

	analysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "clippnj_analysis_duration_seconds",
		Help:    "Wall-clock duration of analysis runs",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	analysesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clippnj_analyses_active",
		Help: "Number of analysis runs currently in flight",
	})

	pagesProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clippnj_pages_processed_total",
		Help: "Total number of comment pages ingested across all runs",
	})

	messagesScannedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clippnj_messages_scanned_total",
		Help: "Total number of chat messages scored across all runs",
	})

	momentsDetectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clippnj_moments_detected_total",
		Help: "Total number of clip-worthy moments surfaced",
	})

	// Search metrics
	searchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clippnj_searches_total",
		Help: "Total number of chat searches served",
	})

	searchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "clippnj_search_duration_seconds",
		Help:    "Wall-clock duration of chat searches",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120},
	})

	// WebSocket metrics
	wsConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clippnj_ws_connections_total",
		Help: "Total number of WebSocket connections accepted",
	})

	wsConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clippnj_ws_connections_active",
		Help: "Current number of active WebSocket connections",
	})
)

func init() {
	// Register all metrics with Prometheus
	prometheus.MustRegister(analysesStartedTotal)
	prometheus.MustRegister(analysesFinishedTotal)
	prometheus.MustRegister(analysisDuration)
	prometheus.MustRegister(analysesActive)
	prometheus.MustRegister(pagesProcessedTotal)
	prometheus.MustRegister(messagesScannedTotal)
	prometheus.MustRegister(momentsDetectedTotal)

	prometheus.MustRegister(searchesTotal)
	prometheus.MustRegister(searchDuration)

	prometheus.MustRegister(wsConnectionsTotal)
	prometheus.MustRegister(wsConnectionsActive)
}

// RecordAnalysisStarted marks an accepted analysis run.
func RecordAnalysisStarted() {
	analysesStartedTotal.Inc()
	analysesActive.Inc()
}

// RecordAnalysisFinished marks a finished run with its outcome and totals.
// Must be paired with a prior RecordAnalysisStarted.
func RecordAnalysisFinished(outcome string, duration time.Duration, pages, messages, moments int) {
	analysesActive.Dec()
	analysesFinishedTotal.WithLabelValues(outcome).Inc()
	analysisDuration.Observe(duration.Seconds())
	pagesProcessedTotal.Add(float64(pages))
	messagesScannedTotal.Add(float64(messages))
	momentsDetectedTotal.Add(float64(moments))
}

// RecordSearch marks a served chat search.
func RecordSearch(duration time.Duration) {
	searchesTotal.Inc()
	searchDuration.Observe(duration.Seconds())
}

// WSConnectionOpened tracks an accepted WebSocket connection.
func WSConnectionOpened() {
	wsConnectionsTotal.Inc()
	wsConnectionsActive.Inc()
}

// WSConnectionClosed tracks a closed WebSocket connection.
func WSConnectionClosed() {
	wsConnectionsActive.Dec()
}

// Handler returns the Prometheus scrape handler for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
