package badge

import "time"

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

type RequirementType string

const (
	RequirementMoodChecks         RequirementType = "mood_checks"
	RequirementMoodStreak         RequirementType = "mood_streak"
	RequirementJournalEntries     RequirementType = "journal_entries"
	RequirementExercisesTried     RequirementType = "exercises_tried"
	RequirementExercisesCompleted RequirementType = "exercises_completed"
	RequirementGoalsCompleted     RequirementType = "goals_completed"
	RequirementStableMoodDays     RequirementType = "stable_mood_days"
	RequirementOverallStreak      RequirementType = "overall_streak"
	RequirementTotalPoints        RequirementType = "total_points"
)

type Requirement struct {
	Type  RequirementType `json:"type" yaml:"type"`
	Value int             `json:"value" yaml:"value"`
}

type Badge struct {
	ID          string      `json:"id" yaml:"id" db:"badge_id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Category    string      `json:"category" yaml:"category"`
	Rarity      Rarity      `json:"rarity" yaml:"rarity"`
	Requirement Requirement `json:"requirement" yaml:"requirement"`
	EarnedDate  *time.Time  `json:"earned_date" yaml:"-" db:"earned_at"`
}

func (b Badge) Earned() bool {
	return b.EarnedDate != nil
}

// Stats is the cumulative statistics snapshot badges are checked against.
type Stats struct {
	MoodChecks         int `json:"mood_checks"`
	MoodStreak         int `json:"mood_streak"`
	JournalEntries     int `json:"journal_entries"`
	ExercisesTried     int `json:"exercises_tried"`
	ExercisesCompleted int `json:"exercises_completed"`
	GoalsCompleted     int `json:"goals_completed"`
	StableMoodDays     int `json:"stable_mood_days"`
	OverallStreak      int `json:"overall_streak"`
	TotalPoints        int `json:"total_points"`
}

// Value returns the statistic a requirement type compares against.
func (s Stats) Value(t RequirementType) (int, bool) {
	switch t {
	case RequirementMoodChecks:
		return s.MoodChecks, true
	case RequirementMoodStreak:
		return s.MoodStreak, true
	case RequirementJournalEntries:
		return s.JournalEntries, true
	case RequirementExercisesTried:
		return s.ExercisesTried, true
	case RequirementExercisesCompleted:
		return s.ExercisesCompleted, true
	case RequirementGoalsCompleted:
		return s.GoalsCompleted, true
	case RequirementStableMoodDays:
		return s.StableMoodDays, true
	case RequirementOverallStreak:
		return s.OverallStreak, true
	case RequirementTotalPoints:
		return s.TotalPoints, true
	}
	return 0, false
}

type EvaluationResponse struct {
	NewlyEarned []Badge `json:"newly_earned"`
	Badges      []Badge `json:"badges"`
	Stats       Stats   `json:"stats"`
}
