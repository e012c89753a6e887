package engine

import (
	"sort"

	"mindStepsAPI/internal/activity"
)

const (
	DifficultyMinSessions = 3
	DifficultyWindow      = 5

	AdvancedThreshold     = 85.0
	IntermediateThreshold = 70.0
)

// SuggestDifficulty picks a tier for exerciseID from the mean success rate of
// the user's most recent graded sessions on it. Missing data always degrades
// to beginner.
func SuggestDifficulty(exerciseID string, history []activity.Session) activity.Difficulty {
	matching := make([]activity.Session, 0, len(history))
	for _, s := range history {
		if s.ExerciseID == exerciseID {
			matching = append(matching, s)
		}
	}
	if len(matching) < DifficultyMinSessions {
		return activity.DifficultyBeginner
	}

	sortNewestFirst(matching)
	if len(matching) > DifficultyWindow {
		matching = matching[:DifficultyWindow]
	}

	var sum float64
	var graded int
	for _, s := range matching {
		if s.SuccessRate == nil {
			continue
		}
		sum += *s.SuccessRate
		graded++
	}
	if graded == 0 {
		return activity.DifficultyBeginner
	}

	mean := sum / float64(graded)
	switch {
	case mean >= AdvancedThreshold:
		return activity.DifficultyAdvanced
	case mean >= IntermediateThreshold:
		return activity.DifficultyIntermediate
	default:
		return activity.DifficultyBeginner
	}
}

func sortNewestFirst(sessions []activity.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
}
