package spectatorgateway

import "github.com/prometheus/client_golang/prometheus"

var (
	metricSpectatorConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backgammon_spectator_sse_connections_total",
		Help: "Spectator event streams opened.",
	})
	metricSpectatorConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "backgammon_spectator_sse_connections_active",
		Help: "Spectator event streams currently open.",
	})
	metricSpectatorDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backgammon_spectator_sse_dropped_total",
		Help: "Events dropped because a spectator stream was full.",
	})
)

func init() {
	prometheus.MustRegister(metricSpectatorConnectionsTotal, metricSpectatorConnectionsActive, metricSpectatorDropped)
}
