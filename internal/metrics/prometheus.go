package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nikhilbhutani/videotranscriber/internal/fetch"
)

// Metrics contains all Prometheus metrics for the transcription service
type Metrics struct {
	registry *prometheus.Registry

	// Download metrics
	DownloadAttempts *prometheus.CounterVec
	DownloadBackoffs prometheus.Counter
	BackoffSeconds   prometheus.Counter

	// Transcription metrics
	Transcriptions        *prometheus.CounterVec
	TranscriptionDuration prometheus.Histogram

	// Cleanup metrics
	CleanupFailures prometheus.Counter

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the metrics on their own registry, together with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		DownloadAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transcriber_download_attempts_total",
			Help: "Download attempts by outcome kind",
		}, []string{"kind"}),
		DownloadBackoffs: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcriber_download_backoffs_total",
			Help: "Number of backoff sleeps after a rate-limited download",
		}),
		BackoffSeconds: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcriber_download_backoff_seconds_total",
			Help: "Total time spent sleeping between download attempts",
		}),

		Transcriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transcriber_requests_total",
			Help: "Transcription requests by result",
		}, []string{"result"}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "transcriber_engine_duration_seconds",
			Help:    "Time spent in the speech-to-text engine",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		CleanupFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcriber_cleanup_failures_total",
			Help: "Temporary audio files that could not be removed",
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transcriber_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transcriber_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 9),
		}, []string{"route", "method"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Attempt records one download attempt.
func (m *Metrics) Attempt(o fetch.Outcome) {
	m.DownloadAttempts.WithLabelValues(o.Kind.String()).Inc()
}

// Backoff records one backoff sleep.
func (m *Metrics) Backoff(d time.Duration) {
	m.DownloadBackoffs.Inc()
	m.BackoffSeconds.Add(d.Seconds())
}

// Result records the final result of a transcription request.
func (m *Metrics) Result(result string) {
	m.Transcriptions.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveEngine(d time.Duration) {
	m.TranscriptionDuration.Observe(d.Seconds())
}

func (m *Metrics) CleanupFailed() {
	m.CleanupFailures.Inc()
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
