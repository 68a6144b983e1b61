package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	URLsInQueue         prometheus.Gauge
	DocumentsTotal      *prometheus.CounterVec
	FetchDuration       *prometheus.HistogramVec
	EdgesResolvedTotal  prometheus.Counter
	DuplicatesDeleted   prometheus.Counter
)

func Init() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	URLsInQueue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "urls_in_queue",
			Help: "Current number of URLs in the crawl queue.",
		},
	)

	DocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_processed_total",
			Help: "Total number of documents processed per session outcome.",
		},
		[]string{"outcome"}, // new, updated, unchanged, failed
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "page_fetch_duration_seconds",
			Help:    "Duration of page fetch operations.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		},
		[]string{"host"},
	)

	EdgesResolvedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relationship_edges_resolved_total",
			Help: "Total number of relationship edges backfilled with a target id.",
		},
	)

	DuplicatesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_duplicates_deleted_total",
			Help: "Total number of duplicate catalog entries removed.",
		},
	)
}
