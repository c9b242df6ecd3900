// Package metrics exposes Prometheus metrics for the form runner.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the form runner. Every Record method is
// safe to call on a nil *Metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Journey metrics
	Events             *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec

	// Form definition cache
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formrunner_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "code"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formrunner_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formrunner_events_total",
				Help: "Total number of analytics events by name",
			},
			[]string{"event"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formrunner_validation_failures_total",
				Help: "Total number of rejected answers by answer type",
			},
			[]string{"answer_type"},
		),

		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "formrunner_form_cache_hits_total",
				Help: "Total number of form definitions served from the cache",
			},
		),
		CacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "formrunner_form_cache_misses_total",
				Help: "Total number of form definitions fetched from the source",
			},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formrunner_errors_total",
				Help: "Total number of internal errors by error code",
			},
			[]string{"error_code"},
		),
	}
}

// RecordRequest records one served HTTP request
func (m *Metrics) RecordRequest(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(d.Seconds())
}

// Log counts an analytics event, making Metrics usable as an event sink
func (m *Metrics) Log(name string, _ map[string]any) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(name).Inc()
}

func (m *Metrics) RecordValidationFailure(answerType string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(answerType).Inc()
}

// RecordCacheLookup counts a form cache hit or miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) RecordError(code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "UNKNOWN"
	}
	m.Errors.WithLabelValues(code).Inc()
}

// statusWriter captures the response code
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records the method, status and duration of every request
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.RecordRequest(r.Method, sw.code, time.Since(start))
	})
}
