// Package metrics defines the Prometheus metrics exported by studio.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	// Remote API calls
	RemoteCalls    *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec
	Retries        *prometheus.CounterVec

	// Video operations
	VideoPolls prometheus.Counter

	// Media handles
	MediaHandles prometheus.Gauge
	MediaBytes   prometheus.Gauge

	// Audio transcoding
	AudioSeconds prometheus.Histogram

	// HTTP API
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		RemoteCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_remote_calls_total",
			Help: "Remote generation calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		RemoteDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studio_remote_call_duration_seconds",
			Help:    "Duration of remote generation calls including retries",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 12), // 250ms to ~8.5 minutes
		}, []string{"operation"}),
		Retries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_retries_total",
			Help: "Transient failures that were retried, by operation",
		}, []string{"operation"}),

		VideoPolls: f.NewCounter(prometheus.CounterOpts{
			Name: "studio_video_polls_total",
			Help: "Status polls of long-running video operations",
		}),

		MediaHandles: f.NewGauge(prometheus.GaugeOpts{
			Name: "studio_media_handles",
			Help: "Media handles currently held",
		}),
		MediaBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "studio_media_bytes",
			Help: "Bytes held by live media handles",
		}),

		AudioSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "studio_audio_duration_seconds",
			Help:    "Duration of synthesized audio",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "studio_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "studio_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ObserveMedia is a media store change hook.
func (m *Metrics) ObserveMedia(items int, bytes int64) {
	m.MediaHandles.Set(float64(items))
	m.MediaBytes.Set(float64(bytes))
}
