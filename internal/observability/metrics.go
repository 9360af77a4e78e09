// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Quote metrics
	QuotesServed  *prometheus.CounterVec
	QuoteErrors   *prometheus.CounterVec
	QuoteDuration prometheus.Histogram

	// Reserve metrics
	SnapshotAge        prometheus.Histogram
	SnapshotsFetched   prometheus.Counter
	SnapshotsStale     prometheus.Counter
	CacheInvalidations prometheus.Counter

	// Chain metrics
	RPCCallLatency *prometheus.HistogramVec
	WSReconnects   prometheus.Counter

	// Settlement metrics
	SettlementsSubmitted *prometheus.CounterVec
	SettlementsRejected  *prometheus.CounterVec

	// Health metrics
	LastSnapshotTimestamp prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "amm_settlement"
	}

	return &Metrics{
		// Quote metrics
		QuotesServed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "served_total",
			Help:      "Total number of quotes served by direction and route kind",
		}, []string{"direction", "route"}),
		QuoteErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "errors_total",
			Help:      "Total number of quote failures by reason",
		}, []string{"reason"}),
		QuoteDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "duration_seconds",
			Help:      "Quote computation duration in seconds, snapshot fetch included",
			Buckets:   prometheus.DefBuckets,
		}),

		// Reserve metrics
		SnapshotAge: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "reserve",
			Name:      "snapshot_age_seconds",
			Help:      "Age of reserve snapshots at quote time in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		}),
		SnapshotsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reserve",
			Name:      "snapshots_fetched_total",
			Help:      "Total number of reserve snapshots fetched from chain",
		}),
		SnapshotsStale: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reserve",
			Name:      "snapshots_stale_total",
			Help:      "Total number of snapshots rejected for staleness",
		}),
		CacheInvalidations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reserve",
			Name:      "cache_invalidations_total",
			Help:      "Total number of snapshot cache invalidations from pool notifications",
		}),

		// Chain metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "rpc_call_latency_seconds",
			Help:      "Chain RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "ws_reconnects_total",
			Help:      "Total number of WebSocket reconnects",
		}),

		// Settlement metrics
		SettlementsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "submitted_total",
			Help:      "Total number of settlement requests submitted by kind",
		}, []string{"kind"}),
		SettlementsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "rejected_total",
			Help:      "Total number of settlement requests rejected by program code",
		}, []string{"kind", "code"}),

		// Health metrics
		LastSnapshotTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_snapshot_timestamp",
			Help:      "Unix timestamp of the last successfully fetched snapshot",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordQuote increments the quotes served counter.
func RecordQuote(direction, route string) {
	DefaultMetrics.QuotesServed.WithLabelValues(direction, route).Inc()
}

// RecordQuoteError records a quote failure by reason.
func RecordQuoteError(reason string) {
	DefaultMetrics.QuoteErrors.WithLabelValues(reason).Inc()
}

// RecordSnapshot records a fetched snapshot and its age.
func RecordSnapshot(ageSeconds float64, observedAt int64) {
	DefaultMetrics.SnapshotsFetched.Inc()
	DefaultMetrics.SnapshotAge.Observe(ageSeconds)
	DefaultMetrics.LastSnapshotTimestamp.Set(float64(observedAt))
}

// RecordStaleSnapshot increments the stale snapshot counter.
func RecordStaleSnapshot() {
	DefaultMetrics.SnapshotsStale.Inc()
}

// RecordCacheInvalidation increments the cache invalidation counter.
func RecordCacheInvalidation() {
	DefaultMetrics.CacheInvalidations.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordWSReconnect increments the WebSocket reconnect counter.
func RecordWSReconnect() {
	DefaultMetrics.WSReconnects.Inc()
}

// RecordSettlement records a submitted settlement request and, when
// code is non-zero, its rejection.
func RecordSettlement(kind string, code int) {
	DefaultMetrics.SettlementsSubmitted.WithLabelValues(kind).Inc()
	if code != 0 {
		DefaultMetrics.SettlementsRejected.WithLabelValues(kind, strconv.Itoa(code)).Inc()
	}
}
