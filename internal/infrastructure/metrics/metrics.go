// Package metrics exposes Prometheus instruments for HTTP traffic, background
// jobs, domain events, outgoing email and exchange-rate lookups.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPDurationBuckets are the latency buckets for API requests, in seconds
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Collector owns a private registry and every instrument the service records.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge

	jobsTotal   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec

	eventsTotal *prometheus.CounterVec
	emailsTotal *prometheus.CounterVec

	rateLookups *prometheus.CounterVec
}

// NewCollector creates a collector whose metric names are prefixed with cfg.Namespace.
// Go runtime and process collectors are registered alongside.
func NewCollector(cfg config.MetricsConfig) *Collector {
	ns := cfg.Namespace
	c := &Collector{registry: prometheus.NewRegistry()}

	c.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "route", "status"})

	c.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   HTTPDurationBuckets,
	}, []string{"method", "route"})

	c.activeRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: ns,
		Subsystem: "http",
		Name:      "active_requests",
		Help:      "Number of requests currently being served.",
	})

	c.jobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "scheduler",
		Name:      "jobs_total",
		Help:      "Background job attempts by kind and outcome.",
	}, []string{"kind", "status"})

	c.jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Subsystem: "scheduler",
		Name:      "job_duration_seconds",
		Help:      "Background job run time in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	c.eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "events",
		Name:      "handled_total",
		Help:      "Domain events handled by type and outcome.",
	}, []string{"event_type", "status"})

	c.emailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "email",
		Name:      "sent_total",
		Help:      "Outgoing emails by template and outcome.",
	}, []string{"template", "status"})

	c.rateLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "exchange_rate",
		Name:      "lookups_total",
		Help:      "Exchange rate lookups by source (cache, direct, inverse, identity, miss).",
	}, []string{"source"})

	c.registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.activeRequests,
		c.jobsTotal,
		c.jobDuration,
		c.eventsTotal,
		c.emailsTotal,
		c.rateLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// WatchDB exports connection pool statistics for db under the given name
func (c *Collector) WatchDB(db *sql.DB, name string) error {
	return c.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RequestStarted increments the in-flight gauge
func (c *Collector) RequestStarted() {
	c.activeRequests.Inc()
}

// ObserveRequest records one finished HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	c.activeRequests.Dec()
	c.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveJob records one background job attempt
func (c *Collector) ObserveJob(kind, status string, duration time.Duration) {
	c.jobsTotal.WithLabelValues(kind, status).Inc()
	c.jobDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveEvent records one domain event delivery
func (c *Collector) ObserveEvent(eventType string, err error) {
	c.eventsTotal.WithLabelValues(eventType, outcome(err)).Inc()
}

// ObserveEmail records one outgoing email
func (c *Collector) ObserveEmail(template string, err error) {
	c.emailsTotal.WithLabelValues(template, outcome(err)).Inc()
}

// ObserveRateLookup records where an exchange rate was resolved from
func (c *Collector) ObserveRateLookup(source string) {
	c.rateLookups.WithLabelValues(source).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
