// Package metrics holds the Prometheus collectors for the board server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for upstream calls.
const (
	OutcomeSuccess   = "success"
	OutcomeUpstream  = "upstream_error"
	OutcomeTransport = "transport_error"
	OutcomeParse     = "parse_error"
)

// Collector records board and upstream API activity on its own registry.
type Collector struct {
	registry *prometheus.Registry

	apiDuration *prometheus.HistogramVec
	apiTotal    *prometheus.CounterVec
	messages    *prometheus.CounterVec
	renders     *prometheus.CounterVec
}

// New creates a collector. namespace defaults to "activity_board".
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = "activity_board"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		apiDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Activities API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		apiTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of activities API requests",
			},
			[]string{"operation", "outcome"},
		),
		messages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_messages_total",
				Help:      "Total number of status messages shown",
			},
			[]string{"kind"},
		),
		renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_renders_total",
				Help:      "Catalog refresh results",
			},
			[]string{"result"},
		),
	}
}

// ObserveAPICall records one upstream request.
func (c *Collector) ObserveAPICall(operation, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.apiDuration.WithLabelValues(operation).Observe(duration.Seconds())
	c.apiTotal.WithLabelValues(operation, outcome).Inc()
}

// IncMessage counts a shown status message.
func (c *Collector) IncMessage(kind string) {
	if c == nil {
		return
	}
	c.messages.WithLabelValues(kind).Inc()
}

// IncRender counts a catalog refresh as "rendered" or "failed".
func (c *Collector) IncRender(result string) {
	if c == nil {
		return
	}
	c.renders.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
