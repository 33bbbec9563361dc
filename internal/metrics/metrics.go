// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarworks_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solarworks_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "solarworks_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	VideoUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarworks_video_uploads_total",
			Help: "Video uploads by outcome",
		},
		[]string{"outcome"}, // "stored", "too_large", "rejected", "failed"
	)

	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarworks_image_uploads_total",
			Help: "Image host uploads by outcome",
		},
		[]string{"outcome"}, // "uploaded", "fallback", "skipped"
	)

	ContentMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarworks_content_mutations_total",
			Help: "Content changes by resource and action",
		},
		[]string{"resource", "action"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "solarworks_websocket_clients",
			Help: "Connected admin dashboard websockets",
		},
	)

	WebhookFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarworks_webhook_failures_total",
			Help: "Failed outbound webhook deliveries",
		},
		[]string{"target"},
	)

	SweptMediaFiles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solarworks_swept_media_files_total",
			Help: "Unreferenced media files removed by the sweeper",
		},
	)
)

func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
