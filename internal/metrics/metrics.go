// Package metrics exports event bus statistics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/observable/internal/event/dispatch"
)

// Source provides per-event statistics. *event.Bus implements it.
type Source interface {
	Names() []string
	Stats(name string) (dispatch.Stats, bool)
}

// Collector is a prometheus.Collector reading statistics from a Source at
// scrape time.
type Collector struct {
	src Source

	subscriptions *prometheus.Desc
	dispatched    *prometheus.Desc
	delivered     *prometheus.Desc
	filtered      *prometheus.Desc
	failed        *prometheus.Desc
	panicked      *prometheus.Desc
	suppressed    *prometheus.Desc
}

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string, src Source) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "event", name),
			help,
			[]string{"event"},
			nil,
		)
	}

	return &Collector{
		src:           src,
		subscriptions: desc("subscriptions", "Current number of subscriptions per event"),
		dispatched:    desc("raised_total", "Total number of times an event was raised"),
		delivered:     desc("delivered_total", "Total number of successful handler invocations"),
		filtered:      desc("filtered_total", "Total number of deliveries rejected by a predicate"),
		failed:        desc("handler_errors_total", "Total number of handlers that returned an error"),
		panicked:      desc("handler_panics_total", "Total number of handlers or predicates that panicked"),
		suppressed:    desc("suppressed_total", "Total number of failures suppressed by safe raising"),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.subscriptions
	ch <- c.dispatched
	ch <- c.delivered
	ch <- c.filtered
	ch <- c.failed
	ch <- c.panicked
	ch <- c.suppressed
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, name := range c.src.Names() {
		s, ok := c.src.Stats(name)
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.subscriptions, prometheus.GaugeValue, float64(s.Subscriptions), name)
		ch <- prometheus.MustNewConstMetric(c.dispatched, prometheus.CounterValue, float64(s.Dispatched), name)
		ch <- prometheus.MustNewConstMetric(c.delivered, prometheus.CounterValue, float64(s.Delivered), name)
		ch <- prometheus.MustNewConstMetric(c.filtered, prometheus.CounterValue, float64(s.Filtered), name)
		ch <- prometheus.MustNewConstMetric(c.failed, prometheus.CounterValue, float64(s.Failed), name)
		ch <- prometheus.MustNewConstMetric(c.panicked, prometheus.CounterValue, float64(s.Panicked), name)
		ch <- prometheus.MustNewConstMetric(c.suppressed, prometheus.CounterValue, float64(s.Suppressed), name)
	}
}

// Handler returns an HTTP handler serving the metrics of reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// NewRegistry returns a registry holding a collector for src plus the Go
// runtime and process collectors.
func NewRegistry(namespace string, src Source) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		NewCollector(namespace, src),
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return reg
}
