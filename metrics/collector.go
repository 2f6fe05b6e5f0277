// Package metrics exposes event bus statistics as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/eventbus"
)

// Source provides bus statistics. *eventbus.Bus satisfies it.
type Source interface {
	Stats() eventbus.Stats
}

// Collector implements prometheus.Collector over a stats source.
type Collector struct {
	src Source

	published *prometheus.Desc
	executed  *prometheus.Desc
	errors    *prometheus.Desc
	panics    *prometheus.Desc
	active    *prometheus.Desc
}

// NewCollector creates a collector for src. The namespace prefixes every
// metric name and may be empty.
func NewCollector(src Source, namespace string) *Collector {
	fq := func(name string) string {
		return prometheus.BuildFQName(namespace, "eventbus", name)
	}

	return &Collector{
		src: src,
		published: prometheus.NewDesc(fq("events_published_total"),
			"Total number of events published.", nil, nil),
		executed: prometheus.NewDesc(fq("handlers_executed_total"),
			"Total number of handler invocations.", nil, nil),
		errors: prometheus.NewDesc(fq("handler_errors_total"),
			"Number of handlers that returned an error.", nil, nil),
		panics: prometheus.NewDesc(fq("handler_panics_total"),
			"Number of handlers that panicked.", nil, nil),
		active: prometheus.NewDesc(fq("active_handlers"),
			"Current number of active handler registrations.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.published
	ch <- c.executed
	ch <- c.errors
	ch <- c.panics
	ch <- c.active
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.src.Stats()

	ch <- prometheus.MustNewConstMetric(c.published, prometheus.CounterValue, float64(stats.EventsPublished))
	ch <- prometheus.MustNewConstMetric(c.executed, prometheus.CounterValue, float64(stats.HandlersExecuted))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(stats.HandlerErrors))
	ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(stats.HandlerPanics))
	ch <- prometheus.MustNewConstMetric(c.active, prometheus.GaugeValue, float64(stats.ActiveHandlers))
}
