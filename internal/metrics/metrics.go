// Package metrics holds the Prometheus collectors of the calculator service.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "basestation_calc"

// Calculation outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeValidation  = "validation"
	OutcomeResolution  = "resolution"
	OutcomeComputation = "computation"
	OutcomeCanceled    = "canceled"
)

// Handover lookup outcomes.
const (
	LookupOK        = "ok"
	LookupNotFound  = "not_found"
	LookupTransient = "transient"
	LookupError     = "error"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route"},
	)

	calculations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "calculations_total",
			Help:      "Total number of calculations by outcome.",
		},
		[]string{"outcome"},
	)

	calculationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "calculation_duration_seconds",
			Help:      "Duration of calculations including handover resolution.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
	)

	districts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "districts_total",
			Help:      "Total number of districts computed successfully.",
		},
	)

	handoverLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "handover",
			Name:      "lookups_total",
			Help:      "Total number of external handover lookups by outcome.",
		},
		[]string{"outcome"},
	)

	handoverLookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "handover",
			Name:      "lookup_duration_seconds",
			Help:      "Duration of external handover lookups.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 11), // 5ms to ~5s
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		calculations,
		calculationDuration,
		districts,
		handoverLookups,
		handoverLookupDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// TrackInFlight increments the in-flight gauge and returns its decrement.
func TrackInFlight() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// ObserveHTTPRequest records one handled request. route should be the
// router pattern, not the raw path.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCalculation records one calculation and, on success, the number of
// districts it produced.
func RecordCalculation(outcome string, duration time.Duration, districtCount int) {
	calculations.WithLabelValues(outcome).Inc()
	calculationDuration.Observe(duration.Seconds())
	if outcome == OutcomeOK {
		districts.Add(float64(districtCount))
	}
}

// RecordHandoverLookup records one external handover lookup.
func RecordHandoverLookup(outcome string, duration time.Duration) {
	handoverLookups.WithLabelValues(outcome).Inc()
	handoverLookupDuration.Observe(duration.Seconds())
}
