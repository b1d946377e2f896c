package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrey-starodubtsev/Threads/core/metrics"
	"github.com/andrey-starodubtsev/Threads/core/worker"
)

// workerMetrics implements worker.WorkerMetrics using Prometheus.
type workerMetrics struct {
	messageDuration *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	panicsTotal     *prometheus.CounterVec
	queueDepth      *prometheus.GaugeVec
	delayedDepth    *prometheus.GaugeVec
	drainedTotal    *prometheus.CounterVec
}

// NewWorkerMetrics creates a new Prometheus implementation of WorkerMetrics.
func NewWorkerMetrics(reg prometheus.Registerer) worker.WorkerMetrics {
	m := &workerMetrics{
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "threads_worker_message_duration_seconds",
			Help:    "Message execution time in seconds",
			Buckets: defaultBuckets,
		}, []string{"worker"}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "threads_worker_messages_total",
			Help: "Total number of messages executed",
		}, []string{"worker", "success"}),

		panicsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "threads_worker_panics_total",
			Help: "Total number of recovered action panics",
		}, []string{"worker"}),

		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "threads_worker_queue_depth",
			Help: "Current immediate queue depth",
		}, []string{"worker"}),

		delayedDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "threads_worker_delayed_depth",
			Help: "Current delayed queue depth",
		}, []string{"worker"}),

		drainedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "threads_worker_drained_total",
			Help: "Messages executed during shutdown drain",
		}, []string{"worker"}),
	}

	reg.MustRegister(
		m.messageDuration,
		m.messagesTotal,
		m.panicsTotal,
		m.queueDepth,
		m.delayedDepth,
		m.drainedTotal,
	)

	return m
}

func (m *workerMetrics) MessageDuration(workerID string) metrics.Timer {
	return newTimer(m.messageDuration.WithLabelValues(workerID))
}

func (m *workerMetrics) MessageProcessed(workerID string, success bool) metrics.Counter {
	return m.messagesTotal.WithLabelValues(workerID, boolToStr(success))
}

func (m *workerMetrics) MessagePanic(workerID string) metrics.Counter {
	return m.panicsTotal.WithLabelValues(workerID)
}

func (m *workerMetrics) QueueDepth(workerID string) metrics.Gauge {
	return m.queueDepth.WithLabelValues(workerID)
}

func (m *workerMetrics) DelayedDepth(workerID string) metrics.Gauge {
	return m.delayedDepth.WithLabelValues(workerID)
}

func (m *workerMetrics) MessagesDrained(workerID string) metrics.Counter {
	return m.drainedTotal.WithLabelValues(workerID)
}

var _ worker.WorkerMetrics = (*workerMetrics)(nil)
