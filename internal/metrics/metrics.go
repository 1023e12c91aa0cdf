package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "danktimes_messages_processed_total",
		Help: "Number of inbound chat messages run through the scoring engine.",
	})
	TimersFired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "danktimes_timers_fired_total",
		Help: "Number of scheduled dank-time and leaderboard timers that fired.",
	})
	LeaderboardsPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "danktimes_leaderboards_posted_total",
		Help: "Number of automatic leaderboards posted.",
	})
	SnapshotsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "danktimes_snapshots_saved_total",
		Help: "Number of successful chat-collection persistence runs.",
	})
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
