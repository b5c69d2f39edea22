package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_http_requests_total",
			Help: "Total number of HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lookout_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// DecodeFailures counts requests rejected before reaching a handler.
	// Labels:
	//   - route: the route name
	//   - stage: "schema", "unmarshal" or "validate"
	DecodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_decode_failures_total",
			Help: "Total number of requests rejected by request decoding",
		},
		[]string{"route", "stage"},
	)

	ElasticsearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_elasticsearch_requests_total",
			Help: "Total number of Elasticsearch requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ElasticsearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lookout_elasticsearch_request_duration_seconds",
			Help:    "Time spent waiting for Elasticsearch",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"operation"},
	)

	AnnotationOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_annotation_operations_total",
			Help: "Total number of annotation operations by type and outcome",
		},
		[]string{"operation", "outcome"},
	)

	LicenseChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_license_checks_total",
			Help: "Total number of license gate checks",
		},
		[]string{"result"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_cache_errors_total",
			Help: "Total number of cache errors",
		},
		[]string{"cache", "op"},
	)

	FieldLookupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lookout_field_lookup_failures_total",
			Help: "Total number of field lookups answered with an empty list after a failure",
		},
	)
)

// RecordElasticsearch records the outcome and latency of one Elasticsearch call
func RecordElasticsearch(operation string, err error, durationSec float64) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ElasticsearchRequests.WithLabelValues(operation, outcome).Inc()
	ElasticsearchDuration.WithLabelValues(operation).Observe(durationSec)
}

// RecordAnnotationOperation records an annotation operation outcome
func RecordAnnotationOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	AnnotationOperations.WithLabelValues(operation, outcome).Inc()
}
