package snakezero

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gamesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snakezero",
		Subsystem: "selfplay",
		Name:      "games_completed_total",
		Help:      "Number of self-play games played to completion",
	})

	gamesAbandoned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snakezero",
		Subsystem: "selfplay",
		Name:      "games_abandoned_total",
		Help:      "Number of self-play games dropped by a failed search",
	})

	gamePlies = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "snakezero",
		Subsystem: "selfplay",
		Name:      "game_plies",
		Help:      "Distribution of recorded plies per game",
		Buckets:   prometheus.ExponentialBuckets(4, 2, 10),
	})

	trajectoriesStored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snakezero",
		Subsystem: "selfplay",
		Name:      "trajectories_stored_total",
		Help:      "Number of trajectories accepted by the replay sink",
	})

	storeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "snakezero",
		Subsystem: "selfplay",
		Name:      "store_errors_total",
		Help:      "Number of failed replay sink writes",
	})
)
