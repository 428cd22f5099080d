package eventloop

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports loop-iteration latency and per-cycle fired-event counts,
// following the same histogram/counter idiom as the rest of the corpus's
// prometheus wiring.
type Metrics struct {
	cycleLatency  prometheus.Histogram
	fileEventsHit prometheus.Counter
	timersFired   prometheus.Counter
}

// NewMetrics registers a Metrics instance on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	met := &Metrics{
		cycleLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kvcore_eventloop_cycle_seconds",
			Help:    "Wall time of one ProcessCycle iteration.",
			Buckets: prometheus.DefBuckets,
		}),
		fileEventsHit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvcore_eventloop_file_events_total",
			Help: "File descriptors reported ready across all cycles.",
		}),
		timersFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kvcore_eventloop_timers_fired_total",
			Help: "Time events dispatched across all cycles.",
		}),
	}
	if reg != nil {
		reg.MustRegister(met.cycleLatency, met.fileEventsHit, met.timersFired)
	}
	return met
}

func (met *Metrics) observeCycle(d time.Duration, fileEvents, timersFired int) {
	met.cycleLatency.Observe(d.Seconds())
	met.fileEventsHit.Add(float64(fileEvents))
	met.timersFired.Add(float64(timersFired))
}
