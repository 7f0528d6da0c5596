// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the progression engine.
var (
	// Counters.
	XPAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xp_awarded_total",
			Help: "Total XP credited, by completion source",
		},
		[]string{"source"},
	)

	XPAwardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "xp_awards_total",
			Help: "Total number of XP award operations",
		},
		[]string{"source", "status"},
	)

	LevelUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "level_ups_total",
			Help: "Total number of level boundaries crossed",
		},
	)

	AchievementsAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_awarded_total",
			Help: "Total number of level achievements awarded",
		},
		[]string{"badge"},
	)

	LeaderboardCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_total",
			Help: "Leaderboard cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// Gauges.
	AchievementHolders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "achievement_holders",
			Help: "Current number of holders per level achievement",
		},
		[]string{"badge"},
	)

	SchedulerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last scheduler run",
		},
	)

	// Histograms.
	SchedulerJobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Duration of scheduler jobs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

// RecordXPAward records one award operation and the amount credited.
func RecordXPAward(source string, amount int) {
	XPAwardedTotal.WithLabelValues(source).Add(float64(amount))
	XPAwardsTotal.WithLabelValues(source, "success").Inc()
}

// RecordXPAwardFailure records a rejected or failed award operation.
func RecordXPAwardFailure(source string) {
	XPAwardsTotal.WithLabelValues(source, "error").Inc()
}

// RecordLevelUps records crossed level boundaries.
func RecordLevelUps(count int) {
	LevelUpsTotal.Add(float64(count))
}

// RecordAchievementAwarded records a level achievement award event.
func RecordAchievementAwarded(badgeName string) {
	AchievementsAwardedTotal.WithLabelValues(badgeName).Inc()
}

// SetAchievementHolders sets the number of holders for an achievement.
func SetAchievementHolders(badgeName string, count int) {
	AchievementHolders.WithLabelValues(badgeName).Set(float64(count))
}

// RecordLeaderboardCache records a cache hit or miss.
func RecordLeaderboardCache(outcome string) {
	LeaderboardCacheTotal.WithLabelValues(outcome).Inc()
}

// SetSchedulerLastRun sets the timestamp of the last scheduler run.
func SetSchedulerLastRun() {
	SchedulerLastRunTimestamp.SetToCurrentTime()
}

// ObserveSchedulerJobDuration observes the duration of a scheduler job.
func ObserveSchedulerJobDuration(job string, seconds float64) {
	SchedulerJobDurationSeconds.WithLabelValues(job).Observe(seconds)
}
