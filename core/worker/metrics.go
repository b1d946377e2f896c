package worker

import "github.com/andrey-starodubtsev/Threads/core/metrics"

// WorkerMetrics defines the metrics interface for workers. Methods return
// metric primitives keyed by worker ID; implementations must be thread-safe.
type WorkerMetrics interface {
	// Message execution
	MessageDuration(workerID string) metrics.Timer
	MessageProcessed(workerID string, success bool) metrics.Counter
	MessagePanic(workerID string) metrics.Counter

	// Queues
	QueueDepth(workerID string) metrics.Gauge
	DelayedDepth(workerID string) metrics.Gauge

	// Shutdown
	MessagesDrained(workerID string) metrics.Counter
}

// nopWorkerMetrics is a no-op implementation of WorkerMetrics.
type nopWorkerMetrics struct{}

func (nopWorkerMetrics) MessageDuration(string) metrics.Timer          { return metrics.NopTimer() }
func (nopWorkerMetrics) MessageProcessed(string, bool) metrics.Counter { return metrics.NopCounter() }
func (nopWorkerMetrics) MessagePanic(string) metrics.Counter           { return metrics.NopCounter() }

func (nopWorkerMetrics) QueueDepth(string) metrics.Gauge   { return metrics.NopGauge() }
func (nopWorkerMetrics) DelayedDepth(string) metrics.Gauge { return metrics.NopGauge() }

func (nopWorkerMetrics) MessagesDrained(string) metrics.Counter { return metrics.NopCounter() }

// NopWorkerMetrics returns a no-op WorkerMetrics implementation.
func NopWorkerMetrics() WorkerMetrics { return nopWorkerMetrics{} }
