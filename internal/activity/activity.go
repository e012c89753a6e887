package activity

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryCBT Category = "CBT"
	CategoryDBT Category = "DBT"
	CategoryACT Category = "ACT"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryCBT, CategoryDBT, CategoryACT:
		return true
	}
	return false
}

type SkillFocus string

const (
	SkillCognitiveRestructuring SkillFocus = "cognitive_restructuring"
	SkillGrounding              SkillFocus = "grounding"
	SkillDistressTolerance      SkillFocus = "distress_tolerance"
	SkillMindfulness            SkillFocus = "mindfulness"
	SkillEmotionRegulation      SkillFocus = "emotion_regulation"
	SkillBehavioralActivation   SkillFocus = "behavioral_activation"
	SkillDefusion               SkillFocus = "defusion"
	SkillValues                 SkillFocus = "values"
)

func (s SkillFocus) Valid() bool {
	switch s {
	case SkillCognitiveRestructuring, SkillGrounding, SkillDistressTolerance, SkillMindfulness,
		SkillEmotionRegulation, SkillBehavioralActivation, SkillDefusion, SkillValues:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyBeginner || d == DifficultyIntermediate || d == DifficultyAdvanced
}

// Session is one attempt at a micro-exercise. Sessions are append-only.
type Session struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	ExerciseID      string     `json:"exercise_id" db:"exercise_id"`
	Category        Category   `json:"category" db:"category"`
	SkillFocus      SkillFocus `json:"skill_focus" db:"skill_focus"`
	Completed       bool       `json:"completed" db:"completed"`
	DurationSeconds int        `json:"duration_seconds" db:"duration_seconds"`
	DifficultyLevel Difficulty `json:"difficulty_level" db:"difficulty_level"`
	SuccessRate     *float64   `json:"success_rate,omitempty" db:"success_rate"`
	Attempts        int        `json:"attempts" db:"attempts"`
	Timestamp       time.Time  `json:"timestamp" db:"created_at"`
}

// Draft is a finished-session event before normalization.
type Draft struct {
	ExerciseID      string     `json:"exercise_id"`
	Completed       bool       `json:"completed"`
	DurationSeconds int        `json:"duration_seconds"`
	DifficultyLevel Difficulty `json:"difficulty_level"`
	SuccessRate     *float64   `json:"success_rate,omitempty"`
	Attempts        int        `json:"attempts"`
}

type Filter struct {
	ExerciseID string
	Category   Category
}

type Metadata struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Category   Category   `json:"category" yaml:"category"`
	SkillFocus SkillFocus `json:"skill_focus" yaml:"skill_focus"`
}
