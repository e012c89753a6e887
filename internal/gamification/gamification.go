package gamification

import (
	"time"

	"github.com/google/uuid"

	"mindStepsAPI/internal/badge"
)

type EventKind string

const (
	EventMoodCheck        EventKind = "mood_check"
	EventJournalEntry     EventKind = "journal_entry"
	EventExerciseComplete EventKind = "exercise_complete"
	EventGoalMilestone    EventKind = "goal_milestone"
	EventGoalComplete     EventKind = "goal_complete"
	EventDailyStreak      EventKind = "daily_streak"
	EventWeeklyStreak     EventKind = "weekly_streak"
)

type PointsLedger struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	TotalPoints  int       `json:"total_points" db:"total_points"`
	WeeklyPoints int       `json:"weekly_points" db:"weekly_points"`
	Level        int       `json:"level" db:"level"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type StreakType string

const (
	StreakOverall   StreakType = "overall"
	StreakMoodCheck StreakType = "mood_check"
	StreakJournal   StreakType = "journal"
	StreakExercise  StreakType = "exercise"
)

var StreakTypes = []StreakType{StreakOverall, StreakMoodCheck, StreakJournal, StreakExercise}

func (t StreakType) Valid() bool {
	for _, s := range StreakTypes {
		if s == t {
			return true
		}
	}
	return false
}

type StreakCounter struct {
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	Type             StreakType `json:"streak_type" db:"streak_type"`
	CurrentStreak    int        `json:"current_streak" db:"current_streak"`
	LongestStreak    int        `json:"longest_streak" db:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date" db:"last_activity_date"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

type EventRequest struct {
	Kind EventKind `json:"kind"`
}

// EventResult reports what a single gamification event changed, including
// any streak bonuses it triggered.
type EventResult struct {
	Kind          EventKind       `json:"kind"`
	PointsAwarded int             `json:"points_awarded"`
	Bonuses       []EventKind     `json:"bonuses,omitempty"`
	Ledger        PointsLedger    `json:"ledger"`
	LeveledUp     bool            `json:"leveled_up"`
	Streaks       []StreakCounter `json:"streaks"`
	NewBadges     []badge.Badge   `json:"new_badges"`
}
