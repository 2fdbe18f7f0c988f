package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PublisherMetrics records outbox publisher throughput and failures.
type PublisherMetrics struct {
	batchDuration prometheus.Histogram
	published     prometheus.Counter
	failures      prometheus.Counter
	deadLettered  prometheus.Counter
}

// NewPublisherMetrics registers the publisher metrics on the provided registerer.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	batchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Outbox events published to the broker.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Outbox publish attempts that failed.",
	})
	deadLettered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_dead_lettered_total",
		Help: "Outbox events parked in the DLQ.",
	})
	reg.MustRegister(batchDuration, published, failures, deadLettered)
	return &PublisherMetrics{
		batchDuration: batchDuration,
		published:     published,
		failures:      failures,
		deadLettered:  deadLettered,
	}
}

// ObserveBatch records the duration of one publish batch.
func (p *PublisherMetrics) ObserveBatch(duration time.Duration) {
	if p == nil || p.batchDuration == nil {
		return
	}
	p.batchDuration.Observe(duration.Seconds())
}

// IncPublished increments the published-event counter.
func (p *PublisherMetrics) IncPublished() {
	if p == nil || p.published == nil {
		return
	}
	p.published.Inc()
}

// IncFailure increments the failure counter.
func (p *PublisherMetrics) IncFailure() {
	if p == nil || p.failures == nil {
		return
	}
	p.failures.Inc()
}

// IncDeadLettered increments the DLQ counter.
func (p *PublisherMetrics) IncDeadLettered() {
	if p == nil || p.deadLettered == nil {
		return
	}
	p.deadLettered.Inc()
}
