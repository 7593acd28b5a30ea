package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type apiMetrics struct {
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	throttles *prometheus.CounterVec
}

var (
	apiMetricsOnce sync.Once
	apiRegistry    *apiMetrics
)

// API returns the lazily-initialised metrics registry used to record query
// API activity.
func API() *apiMetrics {
	apiMetricsOnce.Do(func() {
		apiRegistry = newAPIMetrics()
		prometheus.MustRegister(
			apiRegistry.requests,
			apiRegistry.errors,
			apiRegistry.latency,
			apiRegistry.throttles,
		)
	})
	return apiRegistry
}

func newAPIMetrics() *apiMetrics {
	return &apiMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shell",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total query API requests segmented by route and outcome.",
		}, []string{"route", "outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shell",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Total query API errors segmented by route and status code.",
		}, []string{"route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shell",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for query API handlers.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shell",
			Subsystem: "api",
			Name:      "throttles_total",
			Help:      "Count of query API requests rejected due to throttling policies.",
		}, []string{"reason"}),
	}
}

// Observe records the outcome of a request. The status code should be the
// HTTP status that was ultimately written to the response writer.
func (m *apiMetrics) Observe(route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	outcome := "success"
	if status >= 400 {
		outcome = "error"
	}
	m.requests.WithLabelValues(route, outcome).Inc()
	if status >= 400 {
		m.errors.WithLabelValues(route, fmt.Sprintf("%d", status)).Inc()
	}
	m.latency.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordThrottle increments the throttle counter for the supplied reason.
// Reasons should be stable strings such as "rate_limit" so dashboards and
// alerts remain consistent.
func (m *apiMetrics) RecordThrottle(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "unspecified"
	}
	m.throttles.WithLabelValues(reason).Inc()
}
