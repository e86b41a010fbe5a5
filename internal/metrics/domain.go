package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Text encoder metrics.
var (
	ExtractorRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "extractor_requests_total",
			Help:      "Total number of text encoder requests",
		},
		[]string{"model", "status"},
	)

	ExtractorRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "extractor_request_duration_seconds",
			Help:      "Text encoder request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"model"},
	)

	ExtractorCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "extractor_cache_total",
			Help:      "Query vector cache lookups",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

// Thumbnail cache metrics.
var (
	ThumbnailCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "thumbnail_cache_total",
			Help:      "Thumbnail cache lookups",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ThumbnailRenderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "thumbnail_render_duration_seconds",
			Help:      "Time to render a missing thumbnail",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"media_type"},
	)
)

// Ingest metrics.
var (
	IngestSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ingest_submissions_total",
			Help:      "Ingest jobs submitted, by pipeline and outcome",
		},
		[]string{"pipeline", "status"},
	)

	IngestUploadedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "ingest_uploaded_bytes_total",
			Help:      "Bytes uploaded to the asset bucket",
		},
	)
)

var registerOnce sync.Once

// RegisterDomainMetrics registers encoder, thumbnail and ingest metrics.
// Safe to call more than once.
func RegisterDomainMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ExtractorRequestsTotal,
			ExtractorRequestDuration,
			ExtractorCacheTotal,
			ThumbnailCacheTotal,
			ThumbnailRenderDuration,
			IngestSubmissionsTotal,
			IngestUploadedBytes,
		)
	})
}
