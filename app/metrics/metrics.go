// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog"

// Metrics groups the HTTP and business collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Catalog writes by entity (product, category) and operation.
	CatalogWrites *prometheus.CounterVec
	// Products removed through a category delete.
	CascadeDeletedProducts prometheus.Counter
	// Domain events that failed to publish.
	EventPublishFailures prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CatalogWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Committed catalog writes",
		}, []string{"entity", "operation"}),
		CascadeDeletedProducts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_deleted_products_total",
			Help:      "Products removed by deleting their category",
		}),
		EventPublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Domain events that could not be published",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CatalogWrites,
		m.CascadeDeletedProducts,
		m.EventPublishFailures,
	)
	return m
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordWrite counts a committed create, update or delete.
func (m *Metrics) RecordWrite(entity, operation string) {
	m.CatalogWrites.WithLabelValues(entity, operation).Inc()
}

// RecordCascadeDelete counts products removed with their category.
func (m *Metrics) RecordCascadeDelete(products int64) {
	m.CascadeDeletedProducts.Add(float64(products))
}

func (m *Metrics) RecordPublishFailure() {
	m.EventPublishFailures.Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
