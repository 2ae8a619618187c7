// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cinesync"

// Sync outcomes
const (
	OutcomeSynced        = "synced"
	OutcomeEmpty         = "empty"
	OutcomeFailed        = "failed"
	OutcomeMisconfigured = "misconfigured"
)

// Metrics groups every collector. Create one per registry.
type Metrics struct {
	SyncRuns             *prometheus.CounterVec
	SyncedMovies         prometheus.Counter
	SyncDuplicates       prometheus.Counter
	SyncDuration         prometheus.Histogram
	CatalogQueryDuration prometheus.Histogram
	CatalogCache         *prometheus.CounterVec
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// New registers all collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SyncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "TMDB sync attempts by outcome.",
		}, []string{"outcome"}),
		SyncedMovies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_movies_upserted_total",
			Help:      "Movies written by TMDB syncs.",
		}),
		SyncDuplicates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_duplicates_total",
			Help:      "Provider records dropped as duplicates across pages.",
		}),
		SyncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of TMDB sync attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		CatalogQueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_query_duration_seconds",
			Help:      "Duration of catalog list queries.",
			Buckets:   prometheus.DefBuckets,
		}),
		CatalogCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_requests_total",
			Help:      "Catalog result cache lookups by result.",
		}, []string{"result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}
