// Package metrics exposes Prometheus collectors for the HTTP layer and the
// template and delivery workflow.
//
// All recording methods are safe on a nil *Metrics, so components can be
// constructed without metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "mailcraft"

// Metrics holds the service collectors and the registry they belong to.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge

	templatesSaved      *prometheus.CounterVec
	deliveriesScheduled prometheus.Counter
	deliveriesSent      prometheus.Counter
	deliveryAttempts    *prometheus.CounterVec
}

// New creates collectors under namespace on a fresh registry.
// Go runtime and process collectors are registered as well.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		requestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
		templatesSaved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "templates",
				Name:      "saved_total",
				Help:      "Templates saved, by kind (explicit or autosave)",
			},
			[]string{"kind"},
		),
		deliveriesScheduled: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "delivery",
				Name:      "scheduled_total",
				Help:      "Delivery tasks accepted by the queue",
			},
		),
		deliveriesSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "delivery",
				Name:      "sent_total",
				Help:      "Emails handed to the delivery provider successfully",
			},
		),
		deliveryAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "delivery",
				Name:      "failures_total",
				Help:      "Failed delivery attempts, by outcome (retry or terminal)",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.requestsInFlight,
		m.templatesSaved,
		m.deliveriesScheduled,
		m.deliveriesSent,
		m.deliveryAttempts,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RequestStarted increments the in-flight gauge and returns a func that
// records the finished request.
func (m *Metrics) RequestStarted() func(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return func(string, string, int, time.Duration) {}
	}
	m.requestsInFlight.Inc()
	return func(method, route string, status int, elapsed time.Duration) {
		m.requestsInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	}
}

// TemplateSaved records a template save.
func (m *Metrics) TemplateSaved(autosave bool) {
	if m == nil {
		return
	}
	kind := "explicit"
	if autosave {
		kind = "autosave"
	}
	m.templatesSaved.WithLabelValues(kind).Inc()
}

// DeliveriesScheduled records n accepted delivery tasks.
func (m *Metrics) DeliveriesScheduled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.deliveriesScheduled.Add(float64(n))
}

// DeliverySent records a successful delivery.
func (m *Metrics) DeliverySent() {
	if m == nil {
		return
	}
	m.deliveriesSent.Inc()
}

// DeliveryFailed records a failed attempt. Terminal failures are the ones
// that exhausted the retry budget.
func (m *Metrics) DeliveryFailed(terminal bool) {
	if m == nil {
		return
	}
	outcome := "retry"
	if terminal {
		outcome = "terminal"
	}
	m.deliveryAttempts.WithLabelValues(outcome).Inc()
}
