package spectatorpush

import "github.com/prometheus/client_golang/prometheus"

var (
	metricPushJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backgammon_push_jobs_total",
			Help: "Webhook push jobs by outcome.",
		},
		[]string{"outcome"},
	)
	metricPushQueueLen = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "backgammon_push_queue_len",
		Help: "Push jobs waiting for a worker.",
	})
)

func init() {
	prometheus.MustRegister(metricPushJobs, metricPushQueueLen)
}
