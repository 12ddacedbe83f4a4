// Package metrics holds the prometheus registry of the picking backend.
// Every Record* method is safe on a nil *Metrics so services and tests can
// run without instrumentation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "koroshi_sms"

type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Picking
	ScansTotal      *prometheus.CounterVec
	RoutesBuilt     prometheus.Counter
	RouteStops      prometheus.Histogram
	OrdersCompleted prometheus.Counter

	// Stock
	ReplenishmentsCreated *prometheus.CounterVec

	// Jobs
	JobsProcessed       *prometheus.CounterVec
	CircuitBreakerState *prometheus.GaugeVec
}

// New creates the metric set on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	m.ScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "picking_scans_total",
			Help:      "Barcode scans by result code (OK or the error code)",
		},
		[]string{"channel", "result"},
	)
	m.RoutesBuilt = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "picking_routes_built_total",
			Help:      "Picking routes computed",
		},
	)
	m.RouteStops = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "picking_route_stops",
			Help:      "Number of stops per computed route",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
	m.OrdersCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "picking_orders_completed_total",
			Help:      "Orders whose last line was completed by a scan",
		},
	)

	m.ReplenishmentsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replenishment_requests_created_total",
			Help:      "Replenishment requests created, by origin (manual or cron)",
		},
		[]string{"origin"},
	)

	m.JobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Background jobs processed, by type and outcome",
		},
		[]string{"type", "status"},
	)
	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ScansTotal,
		m.RoutesBuilt,
		m.RouteStops,
		m.OrdersCompleted,
		m.ReplenishmentsCreated,
		m.JobsProcessed,
		m.CircuitBreakerState,
	)
	return m
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ── Recorders ────────────────────────────────────────────────────────────────

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) IncInFlight() {
	if m != nil {
		m.HTTPRequestsInFlight.Inc()
	}
}

func (m *Metrics) DecInFlight() {
	if m != nil {
		m.HTTPRequestsInFlight.Dec()
	}
}

// RecordScan counts one scan. result is "OK" or an apierror code.
func (m *Metrics) RecordScan(channel, result string) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) RecordRoute(stops int) {
	if m == nil {
		return
	}
	m.RoutesBuilt.Inc()
	m.RouteStops.Observe(float64(stops))
}

func (m *Metrics) RecordOrderCompleted() {
	if m != nil {
		m.OrdersCompleted.Inc()
	}
}

func (m *Metrics) RecordReplenishmentCreated(origin string) {
	if m != nil {
		m.ReplenishmentsCreated.WithLabelValues(origin).Inc()
	}
}

func (m *Metrics) RecordJob(jobType, status string) {
	if m != nil {
		m.JobsProcessed.WithLabelValues(jobType, status).Inc()
	}
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	if m != nil {
		m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	}
}
