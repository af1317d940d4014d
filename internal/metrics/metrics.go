package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const subsystem = "shot_animator"

var (
	Submissions     *prometheus.CounterVec
	Merges          *prometheus.CounterVec
	ReconcileErrors *prometheus.CounterVec
	SnapshotWrites  *prometheus.CounterVec
	OutstandingJobs prometheus.Gauge
	PollActive      prometheus.Gauge
	SubmitLatency   prometheus.Histogram
)

func init() {
	Submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "submissions_total",
		Help:      "Number of generation submissions by result",
		Subsystem: subsystem,
	},
		[]string{"result"},
	)
	Merges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "merges_total",
		Help:      "Number of status merges that changed a result",
		Subsystem: subsystem,
	},
		[]string{"channel", "transition"},
	)
	ReconcileErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "reconcile_errors_total",
		Help:      "Number of failed reconciliation attempts",
		Subsystem: subsystem,
	},
		[]string{"channel"},
	)
	SnapshotWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "snapshot_writes_total",
		Help:      "Number of snapshot writes by result",
		Subsystem: subsystem,
	},
		[]string{"result"},
	)
	OutstandingJobs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "outstanding_jobs",
		Help:      "Number of results awaited from the generation service",
		Subsystem: subsystem,
	})
	PollActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "poll_active",
		Help:      "1 while the fallback poll is running",
		Subsystem: subsystem,
	})
	SubmitLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:      "submit_duration_milliseconds",
		Help:      "Time spent on one generation submission",
		Subsystem: subsystem,
		Buckets:   []float64{100, 300, 500, 1000, 5000, 15000},
	})

	prometheus.MustRegister(Submissions)
	prometheus.MustRegister(Merges)
	prometheus.MustRegister(ReconcileErrors)
	prometheus.MustRegister(SnapshotWrites)
	prometheus.MustRegister(OutstandingJobs)
	prometheus.MustRegister(PollActive)
	prometheus.MustRegister(SubmitLatency)
}
