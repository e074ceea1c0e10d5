// Package metrics exposes prometheus collectors for the service.
// Every method is safe on a nil *Metrics so packages can be used without it.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "manrura"

// Metrics holds the service collectors
type Metrics struct {
	registry *prometheus.Registry

	scoreWrites    *prometheus.CounterVec
	directoryAdds  *prometheus.CounterVec
	saveFailures   *prometheus.CounterVec
	assistantCalls *prometheus.CounterVec
	activeSessions prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		scoreWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_writes_total",
			Help:      "Score writes by sub-record and outcome.",
		}, []string{"role", "applied"}),
		directoryAdds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_additions_total",
			Help:      "Wards, users and periods added.",
		}, []string{"kind"}),
		saveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_save_failures_total",
			Help:      "Failed writes of a state blob.",
		}, []string{"key"}),
		assistantCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_requests_total",
			Help:      "Assistant questions by outcome.",
		}, []string{"outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "navigation_sessions",
			Help:      "Navigation sessions currently held.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.scoreWrites,
		m.directoryAdds,
		m.saveFailures,
		m.assistantCalls,
		m.activeSessions,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ScoreWrite counts one ApplyScore call
func (m *Metrics) ScoreWrite(role string, applied bool) {
	if m == nil {
		return
	}
	m.scoreWrites.WithLabelValues(role, strconv.FormatBool(applied)).Inc()
}

// DirectoryAdd counts one added ward, user or period
func (m *Metrics) DirectoryAdd(kind string) {
	if m == nil {
		return
	}
	m.directoryAdds.WithLabelValues(kind).Inc()
}

// SaveFailure counts one failed blob write
func (m *Metrics) SaveFailure(key string) {
	if m == nil {
		return
	}
	m.saveFailures.WithLabelValues(key).Inc()
}

// AssistantCall counts one assistant question by outcome
func (m *Metrics) AssistantCall(outcome string) {
	if m == nil {
		return
	}
	m.assistantCalls.WithLabelValues(outcome).Inc()
}

// SetSessions records the number of live navigation sessions
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// Middleware records request counts and latency keyed by the chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
