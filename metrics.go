package jemput

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for jemput's fetch lifecycle
// and cadence wrappers. It is safe for concurrent use and a nil collector is
// a no-op, so instrumentation calls need no guards at call sites.
type MetricsCollector struct {
	fetchesTotal    *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	fetchesInFlight *prometheus.GaugeVec

	refetchesTotal *prometheus.CounterVec
	abortsTotal    *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec

	debounceCalls *prometheus.CounterVec
	debounceFired *prometheus.CounterVec

	throttleExecutions *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	mc := &MetricsCollector{
		fetchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jemput_fetches_total",
				Help: "Total number of completed fetch cycles",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		fetchDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jemput_fetch_duration_seconds",
				Help:    "Duration of fetch cycles in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		fetchesInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jemput_fetches_in_flight",
				Help: "Number of fetch cycles currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		refetchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jemput_refetches_total",
				Help: "Total number of fetch cycles started after the first",
			},
			[]string{"method", "endpoint"},
		),
		abortsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jemput_aborts_total",
				Help: "Total number of fetch cycles aborted before completion (superseded or closed)",
			},
			[]string{"reason", "endpoint"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jemput_errors_total",
				Help: "Total number of fetch errors encountered",
			},
			[]string{"type", "method", "endpoint"},
		),
		debounceCalls: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jemput_debounce_calls_total",
				Help: "Total number of calls into debounce wrappers",
			},
			[]string{"name"},
		),
		debounceFired: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jemput_debounce_fired_total",
				Help: "Total number of debounced executions that fired",
			},
			[]string{"name"},
		),
		throttleExecutions: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jemput_throttle_executions_total",
				Help: "Total number of throttled executions by edge (leading or trailing)",
			},
			[]string{"name", "edge"},
		),
	}

	if reg, ok := registry.(*prometheus.Registry); ok {
		mc.registry = reg
	}

	return mc
}

// RecordFetch records cycle count and duration.
func (mc *MetricsCollector) RecordFetch(method, endpoint string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.fetchesTotal.WithLabelValues(method, statusCodeStr, endpoint).Inc()
	mc.fetchDuration.WithLabelValues(method, statusCodeStr, endpoint).Observe(duration.Seconds())
}

// RecordFetchStart increments in-flight gauge.
func (mc *MetricsCollector) RecordFetchStart(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.fetchesInFlight.WithLabelValues(method, endpoint).Inc()
}

// RecordFetchEnd decrements in-flight gauge.
func (mc *MetricsCollector) RecordFetchEnd(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.fetchesInFlight.WithLabelValues(method, endpoint).Dec()
}

// RecordRefetch increments the manual/automatic re-trigger counter.
func (mc *MetricsCollector) RecordRefetch(method, endpoint string) {
	if mc == nil {
		return
	}

	mc.refetchesTotal.WithLabelValues(method, endpoint).Inc()
}

// RecordAbort increments the abort counter for a supersession reason.
func (mc *MetricsCollector) RecordAbort(reason, endpoint string) {
	if mc == nil {
		return
	}

	mc.abortsTotal.WithLabelValues(reason, endpoint).Inc()
}

// RecordError increments error counter by type.
func (mc *MetricsCollector) RecordError(errorType, method, endpoint string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(errorType, method, endpoint).Inc()
}

// RecordDebounceCall increments the debounce wrapper call counter.
func (mc *MetricsCollector) RecordDebounceCall(name string) {
	if mc == nil {
		return
	}

	mc.debounceCalls.WithLabelValues(name).Inc()
}

// RecordDebounceFired increments the debounce execution counter.
func (mc *MetricsCollector) RecordDebounceFired(name string) {
	if mc == nil {
		return
	}

	mc.debounceFired.WithLabelValues(name).Inc()
}

// RecordThrottleExecution increments the throttle execution counter for an edge.
func (mc *MetricsCollector) RecordThrottleExecution(name, edge string) {
	if mc == nil {
		return
	}

	mc.throttleExecutions.WithLabelValues(name, edge).Inc()
}

// GetRegistry exposes the underlying prometheus registry, if the collector was
// built on one.
func (mc *MetricsCollector) GetRegistry() *prometheus.Registry {
	return mc.registry
}
