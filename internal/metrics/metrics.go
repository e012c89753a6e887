package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	SessionsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_sessions_ingested_total",
			Help: "Exercise sessions appended to the activity store",
		},
		[]string{"category", "completed"},
	)
	UnknownExercises = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_unknown_exercises_total",
			Help: "Sessions ingested with default metadata because the exercise id was not in the catalog",
		},
	)
	PointsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_points_awarded_total",
			Help: "Points awarded, by event kind",
		},
		[]string{"event"},
	)
	BadgesEarned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_badges_earned_total",
			Help: "Badges earned, by rarity",
		},
		[]string{"rarity"},
	)
	DegradedResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_degraded_responses_total",
			Help: "Difficulty or recommendation requests answered with cold-start defaults after a store failure",
		},
		[]string{"operation"},
	)
	PushesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_push_notifications_total",
			Help: "Badge push notifications by outcome",
		},
		[]string{"outcome"},
	)
)

// Register adds the engine collectors to reg. Call once from main.go.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		SessionsIngested,
		UnknownExercises,
		PointsAwarded,
		BadgesEarned,
		DegradedResponses,
		PushesSent,
	)
}
