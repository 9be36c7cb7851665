// Package metrics exposes Prometheus metrics for the gateway: HTTP request
// counters and latencies, plus backend stream and fetch failure accounting.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "streamgate"

// Metrics provides a self-contained Prometheus registry, common HTTP metrics,
// and observers for backend streams. The zero value is not usable; use New.
type Metrics struct {
	reg           *prometheus.Registry
	inflight      prometheus.Gauge
	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	openStreams   prometheus.Gauge
	streamedBytes prometheus.Counter
	streams       *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
}

// New creates a Metrics instance with a fresh registry and registers collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of inflight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed, partitioned by status code and method.",
		}, []string{"code", "method"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of latencies for HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"}),
		openStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "open_streams",
			Help:      "Number of backend object streams currently held open.",
		}),
		streamedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "streamed_bytes_total",
			Help:      "Total number of object bytes relayed to clients.",
		}),
		streams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "streams_total",
			Help:      "Total number of finished backend streams, partitioned by outcome.",
		}, []string{"outcome"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "fetch_failures_total",
			Help:      "Total number of failed object fetches, partitioned by failure kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.inflight,
		m.requests,
		m.latency,
		m.openStreams,
		m.streamedBytes,
		m.streams,
		m.fetchFailures,
	)

	return m
}

// Handler returns an http.Handler that serves Prometheus metrics using the internal registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry for advanced usage.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// statusRecorder captures the HTTP status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer for flushing.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware wraps an http.Handler to collect basic HTTP metrics:
// - inflight gauge
// - requests_total counter (labels: method, code)
// - request_duration_seconds histogram (labels: method, code)
//
// Requests aborted mid-stream are still counted with the status that was sent.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.inflight.Inc()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			m.inflight.Dec()

			code := strconv.Itoa(rec.status)
			m.requests.WithLabelValues(code, r.Method).Inc()
			m.latency.WithLabelValues(code, r.Method).Observe(time.Since(start).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}

// StreamOpened records a backend stream handed to the relay.
func (m *Metrics) StreamOpened() {
	m.openStreams.Inc()
}

// StreamClosed records a released backend stream, the bytes relayed from it
// and how the relay ended ("complete", "client_disconnected", "upstream").
func (m *Metrics) StreamClosed(written int64, outcome string) {
	m.openStreams.Dec()
	m.streamedBytes.Add(float64(written))
	m.streams.WithLabelValues(outcome).Inc()
}

// FetchFailed records a fetch that did not produce a stream.
func (m *Metrics) FetchFailed(kind string) {
	m.fetchFailures.WithLabelValues(kind).Inc()
}
