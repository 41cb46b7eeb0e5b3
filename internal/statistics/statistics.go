// Package statistics exposes prometheus metrics about simulation runs.
package statistics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "loopsim"
	subsystem = "simulation"

	OutcomeOK    = "ok"
	OutcomeError = "error"

	// UnknownProcess labels requests naming a process that does not exist.
	UnknownProcess = "unknown"
)

// Recorder counts runs and their sizes per process.
type Recorder struct {
	runs     *prometheus.CounterVec
	steps    *prometheus.HistogramVec
	lastRows *prometheus.GaugeVec
}

func NewRecorder() *Recorder {
	return &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Number of simulation runs by process and outcome",
		}, []string{"process", "outcome"}),
		steps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "steps",
			Help:      "Number of steps taken by a simulation run",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 6),
		}, []string{"process"}),
		lastRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_rows",
			Help:      "Rows in the output table of the latest successful run",
		}, []string{"process"}),
	}
}

func (r *Recorder) Describe(ch chan<- *prometheus.Desc) {
	r.runs.Describe(ch)
	r.steps.Describe(ch)
	r.lastRows.Describe(ch)
}

// Collect implements required collect function for all prometheus collectors
func (r *Recorder) Collect(ch chan<- prometheus.Metric) {
	r.runs.Collect(ch)
	r.steps.Collect(ch)
	r.lastRows.Collect(ch)
}

// Observe records one finished run. Sizes are ignored for failed runs.
func (r *Recorder) Observe(process string, steps, rows int, err error) {
	if err != nil {
		r.runs.WithLabelValues(process, OutcomeError).Inc()
		return
	}
	r.runs.WithLabelValues(process, OutcomeOK).Inc()
	r.steps.WithLabelValues(process).Observe(float64(steps))
	r.lastRows.WithLabelValues(process).Set(float64(rows))
}

// Default is the recorder served by the loopsim HTTP server.
var Default = NewRecorder()
