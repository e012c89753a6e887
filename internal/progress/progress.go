package progress

import (
	"time"

	"github.com/google/uuid"

	"mindStepsAPI/internal/activity"
)

type MoodLevel string

const (
	MoodVeryLow   MoodLevel = "very_low"
	MoodLow       MoodLevel = "low"
	MoodNeutral   MoodLevel = "neutral"
	MoodGood      MoodLevel = "good"
	MoodExcellent MoodLevel = "excellent"
)

type MoodEntry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Mood       MoodLevel `json:"mood" db:"mood"`
	Emotions   []string  `json:"emotions" db:"emotions"`
	Triggers   []string  `json:"triggers" db:"triggers"`
	Activities []string  `json:"activities" db:"activities"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type JournalEntry struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Mood      *MoodLevel `json:"mood,omitempty" db:"mood"`
	WordCount int        `json:"word_count" db:"word_count"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type Goal struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// HealthMetric is one daily record; any metric may be missing.
type HealthMetric struct {
	Date       time.Time `json:"date" db:"date"`
	SleepHours *float64  `json:"sleep_hours,omitempty" db:"sleep_hours"`
	Steps      *float64  `json:"steps,omitempty" db:"steps"`
	HeartRate  *float64  `json:"heart_rate,omitempty" db:"heart_rate"`
}

type HealthAverages struct {
	SleepHours float64 `json:"sleep_hours"`
	Steps      float64 `json:"steps"`
	HeartRate  float64 `json:"heart_rate"`
	Days       int     `json:"days"`
}

type TrendLabel string

const (
	TrendImproving TrendLabel = "improving"
	TrendDeclining TrendLabel = "declining"
	TrendStable    TrendLabel = "stable"
)

type MoodPoint struct {
	At    time.Time `json:"at"`
	Value int       `json:"value"`
}

type MoodTrend struct {
	Average float64     `json:"average"`
	Label   TrendLabel  `json:"label"`
	Points  []MoodPoint `json:"points"`
}

type TagObservation struct {
	Tag       string
	MoodValue int
}

type ImpactRow struct {
	Tag         string  `json:"tag"`
	Count       int     `json:"count"`
	AverageMood float64 `json:"average_mood"`
}

type ExerciseSummary struct {
	TotalSessions     int                         `json:"total_sessions"`
	CompletedSessions int                         `json:"completed_sessions"`
	CompletionRate    float64                     `json:"completion_rate"`
	TotalMinutes      float64                     `json:"total_minutes"`
	ByCategory        map[activity.Category]int   `json:"by_category"`
	BySkill           map[activity.SkillFocus]int `json:"by_skill"`
	ByDifficulty      map[activity.Difficulty]int `json:"by_difficulty"`
}

// Summary is the dashboard roll-up returned to clients.
type Summary struct {
	Exercises          ExerciseSummary `json:"exercises"`
	Mood               MoodTrend       `json:"mood"`
	NegativeTriggers   []ImpactRow     `json:"negative_triggers"`
	PositiveActivities []ImpactRow     `json:"positive_activities"`
	Emotions           []ImpactRow     `json:"emotions"`
	Health             HealthAverages  `json:"health"`
	StableMoodDays     int             `json:"stable_mood_days"`
	JournalEntries     int             `json:"journal_entries"`
	GoalsCompleted     int             `json:"goals_completed"`
}

// Counts are lifetime totals read straight from the record stores.
type Counts struct {
	MoodChecks         int `json:"mood_checks" db:"mood_checks"`
	JournalEntries     int `json:"journal_entries" db:"journal_entries"`
	ExercisesTried     int `json:"exercises_tried" db:"exercises_tried"`
	ExercisesCompleted int `json:"exercises_completed" db:"exercises_completed"`
	GoalsCompleted     int `json:"goals_completed" db:"goals_completed"`
	StableMoodDays     int `json:"stable_mood_days" db:"stable_mood_days"`
}
