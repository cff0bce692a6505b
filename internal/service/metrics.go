package service

import "github.com/prometheus/client_golang/prometheus"

var (
	roundsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_rounds_closed_total",
			Help: "Rounds resolved, by trigger (manual or timer)",
		},
		[]string{"trigger"},
	)
	playersEliminated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "game_players_eliminated_total",
			Help: "Players eliminated at round close",
		},
	)
	sessionsEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_sessions_ended_total",
			Help: "Sessions that reached a terminal state, by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(roundsClosed)
	prometheus.MustRegister(playersEliminated)
	prometheus.MustRegister(sessionsEnded)
}
