package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staylytics_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	IngestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staylytics_ingests_total",
		Help: "CSV ingest outcomes",
	}, []string{"outcome"})

	IngestRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "staylytics_ingest_rows",
		Help:    "Rows per ingested dataset",
		Buckets: prometheus.ExponentialBuckets(10, 10, 6),
	})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "staylytics_ingest_duration_seconds",
		Help:    "End-to-end ingest duration",
		Buckets: prometheus.DefBuckets,
	})

	AnalyticsQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "staylytics_analytics_queries_total",
		Help: "Analytics query executions",
	}, []string{"query", "cache"})
)
