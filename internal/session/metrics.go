package session

import "github.com/prometheus/client_golang/prometheus"

var (
	metricCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backgammon_commands_total",
			Help: "Game commands handled, by command and outcome code.",
		},
		[]string{"command", "outcome"},
	)
	metricSessionsLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "backgammon_sessions_live",
		Help: "Sessions currently held in memory.",
	})
	metricGamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backgammon_games_finished_total",
			Help: "Games that reached a result, by end reason.",
		},
		[]string{"reason"},
	)
	metricTurnTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backgammon_turn_timeouts_total",
		Help: "Turns ended by the turn timer.",
	})
	metricDiceFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backgammon_dice_fallbacks_total",
		Help: "Rolls that fell back to plain crypto/rand dice.",
	})
	metricSnapshotFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backgammon_snapshot_failures_total",
			Help: "Failed snapshot store operations.",
		},
		[]string{"op"},
	)
	metricEscrowOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backgammon_escrow_operations_total",
			Help: "Escrow gateway calls, by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		metricCommands,
		metricSessionsLive,
		metricGamesFinished,
		metricTurnTimeouts,
		metricDiceFallbacks,
		metricSnapshotFailures,
		metricEscrowOps,
	)
}

func observeCommand(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = Code(err)
	}
	metricCommands.WithLabelValues(command, outcome).Inc()
}
