package engine

import (
	"fmt"
	"time"

	"mindStepsAPI/internal/activity"
	"mindStepsAPI/internal/catalog"
)

// NormalizeSession turns a finished-session draft into a Session ready to be
// appended. When the exercise is not in the catalog the session is still
// returned, filled with catalog.DefaultMetadata, together with
// ErrUnknownExercise so the caller can decide whether to persist it.
func NormalizeSession(draft activity.Draft, cat *catalog.Catalog, now time.Time) (activity.Session, error) {
	session := activity.Session{
		ExerciseID:      draft.ExerciseID,
		Completed:       draft.Completed,
		DurationSeconds: draft.DurationSeconds,
		DifficultyLevel: draft.DifficultyLevel,
		SuccessRate:     draft.SuccessRate,
		Attempts:        draft.Attempts,
		Timestamp:       now,
	}
	if session.Attempts <= 0 {
		session.Attempts = 1
	}
	if session.DurationSeconds < 0 {
		session.DurationSeconds = 0
	}
	if !session.DifficultyLevel.Valid() {
		session.DifficultyLevel = activity.DifficultyBeginner
	}
	if draft.SuccessRate != nil {
		rate := *draft.SuccessRate
		session.SuccessRate = &rate
	}

	meta, ok := cat.Lookup(draft.ExerciseID)
	if !ok {
		session.Category = catalog.DefaultMetadata.Category
		session.SkillFocus = catalog.DefaultMetadata.SkillFocus
		return session, fmt.Errorf("%w: %q", ErrUnknownExercise, draft.ExerciseID)
	}

	session.Category = meta.Category
	session.SkillFocus = meta.SkillFocus
	return session, nil
}
