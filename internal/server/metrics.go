package server

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MeKo-Tech/frameocr/internal/frame"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameocr_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frameocr_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Frame metrics
	framesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameocr_frames_processed_total",
			Help: "Frames processed by outcome",
		},
		[]string{"outcome"}, // text, empty, error, timeout
	)

	frameProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frameocr_frame_processing_duration_seconds",
			Help:    "Frame processing duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"transport"}, // http, websocket
	)

	frameAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "frameocr_frame_recognizer_attempts",
			Help:    "Recognizer calls per frame",
			Buckets: []float64{1, 2, 3, 4},
		},
	)

	winningVariantTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameocr_winning_variant_total",
			Help: "Frames won by each preprocessing variant",
		},
		[]string{"variant"},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameocr_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"},
	)

	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "frameocr_upload_size_bytes",
			Help:    "Size of uploaded frames in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 5 * 1024 * 1024, 20 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frameocr_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frameocr_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // sent, received
	)
)

func recordOutcome(out *frame.Outcome, err error) {
	switch {
	case errors.Is(err, errTimeout):
		framesProcessedTotal.WithLabelValues("timeout").Inc()
	case err != nil:
		framesProcessedTotal.WithLabelValues("error").Inc()
	case out == nil || out.Result == nil:
		framesProcessedTotal.WithLabelValues("empty").Inc()
	default:
		framesProcessedTotal.WithLabelValues("text").Inc()
		winningVariantTotal.WithLabelValues(string(out.Variant)).Inc()
	}
	if out != nil && out.Attempts > 0 {
		frameAttempts.Observe(float64(out.Attempts))
	}
}
