package engagement

import (
	"time"

	"mindStepsAPI/internal/activity"
	"mindStepsAPI/internal/gamification"
)

// SessionResult is returned when a client reports a finished exercise.
type SessionResult struct {
	Session         activity.Session          `json:"session"`
	UnknownExercise bool                      `json:"unknown_exercise,omitempty"`
	Event           *gamification.EventResult `json:"event,omitempty"`
}

type DifficultySuggestion struct {
	ExerciseID string              `json:"exercise_id"`
	Difficulty activity.Difficulty `json:"difficulty"`
	Degraded   bool                `json:"degraded,omitempty"`
}

type Recommendation struct {
	Exercise   activity.Metadata   `json:"exercise"`
	Difficulty activity.Difficulty `json:"difficulty"`
}

type RecommendationList struct {
	Recommendations []Recommendation `json:"recommendations"`
	Degraded        bool             `json:"degraded,omitempty"`
}

type LedgerView struct {
	gamification.PointsLedger
	PointsToNextLevel int `json:"points_to_next_level"`
	MaxLevel          int `json:"max_level"`
}

// StreakView is a counter as displayed on a given day. Current is zero once
// the streak has lapsed even though the stored counter is untouched.
type StreakView struct {
	Type             gamification.StreakType `json:"streak_type"`
	Current          int                     `json:"current_streak"`
	Longest          int                     `json:"longest_streak"`
	LastActivityDate *time.Time              `json:"last_activity_date"`
	ActiveToday      bool                    `json:"active_today"`
}
