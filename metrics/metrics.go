// Package metrics holds the Prometheus collectors exported by API64 and the
// HTTP middleware that feeds them.
package metrics

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "api64"

var labelNames = []string{"method", "operation", "status"}

// Metrics bundles the collectors. Each instance owns its registry so that
// several gateways (and tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	requestDurations *prometheus.HistogramVec
	requestBytes     *prometheus.CounterVec
	responseBytes    *prometheus.CounterVec
	ingested         *prometheus.CounterVec
	ingestedBytes    prometheus.Counter
}

// New creates and registers the collectors on a fresh registry that also
// carries the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Time spent answering requests in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			labelNames,
		),
		requestBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "request_bytes_total",
				Help:      "Total volume of request payloads received in bytes.",
			},
			labelNames,
		),
		responseBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "response_bytes_total",
				Help:      "Total volume of response payloads emitted in bytes.",
			},
			labelNames,
		),
		ingested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifacts_ingested_total",
				Help:      "Number of ingestion calls by extension and outcome.",
			},
			[]string{"extension", "outcome"},
		),
		ingestedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifact_bytes_total",
				Help:      "Total decoded bytes persisted as artifacts.",
			},
		),
	}

	m.registry.MustRegister(
		m.requestDurations,
		m.requestBytes,
		m.responseBytes,
		m.ingested,
		m.ingestedBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveIngestion counts one ingestion call. outcome is "ok" or an error
// class such as "client_error".
func (m *Metrics) ObserveIngestion(extension, outcome string, size int64) {
	m.ingested.WithLabelValues(extension, outcome).Inc()
	if outcome == "ok" {
		m.ingestedBytes.Add(float64(size))
	}
}

// Middleware records duration and payload volumes of every request handled
// by next under the given operation label.
func (m *Metrics) Middleware(op string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			start = time.Now()
			rd    = &readerDelegator{ReadCloser: r.Body}
			rc    = &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		)
		if r.Body != nil {
			r.Body = rd
		}

		next.ServeHTTP(rc, r)

		labels := prometheus.Labels{
			"method":    strings.ToLower(r.Method),
			"operation": op,
			"status":    strconv.Itoa(rc.status),
		}
		m.requestBytes.With(labels).Add(float64(rd.bytesRead))
		m.requestDurations.With(labels).Observe(time.Since(start).Seconds())
		m.responseBytes.With(labels).Add(float64(rc.size))
	})
}

type readerDelegator struct {
	io.ReadCloser
	bytesRead int
}

func (r *readerDelegator) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	r.bytesRead += n
	return n, err
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (r *responseRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
