// Package prometheus provides the Prometheus implementation of the metrics
// interfaces defined by the core packages.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrey-starodubtsev/Threads/core/metrics"
)

// timer wraps a Prometheus histogram to implement the Timer interface.
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) metrics.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// Default histogram buckets for latency metrics (in seconds).
var defaultBuckets = []float64{
	.00001, .00005, .0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1,
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
