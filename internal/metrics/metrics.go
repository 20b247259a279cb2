package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"envwatch/internal/classify"
)

const namespace = "envwatch"

// Collector records engine activity.
type Collector struct {
	registry *prometheus.Registry

	processed *prometheus.CounterVec
	malformed prometheus.Counter
	transient *prometheus.CounterVec
	offset    prometheus.Gauge
	poll      prometheus.Histogram
}

// New builds a Collector with its collectors registered on a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_processed_total",
			Help:      "Enriched records appended to the output log, by overall status.",
		}, []string{"overall_status"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_lines_total",
			Help:      "Input lines skipped because they could not be decoded.",
		}),
		transient: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transient_errors_total",
			Help:      "Recoverable I/O failures retried on the next poll, by operation.",
		}, []string{"op"}),
		offset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "input_offset_bytes",
			Help:      "Bytes of the input log consumed so far.",
		}),
		poll: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Time spent reading, transforming and writing one poll.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
	}
	c.registry.MustRegister(c.processed, c.malformed, c.transient, c.offset, c.poll)
	for _, tier := range []classify.Tier{classify.Safe, classify.Caution, classify.Unsafe} {
		c.processed.WithLabelValues(string(tier))
	}
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordProcessed counts one enriched record under its overall tier.
func (c *Collector) RecordProcessed(overall classify.Tier) {
	c.processed.WithLabelValues(string(overall)).Inc()
}

// RecordMalformed counts one skipped input line.
func (c *Collector) RecordMalformed() {
	c.malformed.Inc()
}

// RecordTransientError counts one retried failure of op.
func (c *Collector) RecordTransientError(op string) {
	c.transient.WithLabelValues(op).Inc()
}

// SetOffset publishes the consumed byte offset of the input log.
func (c *Collector) SetOffset(offset int64) {
	c.offset.Set(float64(offset))
}

// ObservePoll records how long one poll iteration took.
func (c *Collector) ObservePoll(d time.Duration) {
	c.poll.Observe(d.Seconds())
}
