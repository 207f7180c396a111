package httptransport

import "github.com/prometheus/client_golang/prometheus"

var metricArchiveQueries = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "backgammon_archive_queries_total",
		Help: "Match archive lookups served over HTTP, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

func init() {
	prometheus.MustRegister(metricArchiveQueries)
}
