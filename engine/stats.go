package engine

import (
	"time"

	"mindStepsAPI/internal/badge"
	"mindStepsAPI/internal/gamification"
	"mindStepsAPI/internal/progress"
)

// BuildStats assembles the snapshot the badge evaluator compares against.
// Streak lengths are read as displayed on today, so a lapsed streak counts
// as zero.
func BuildStats(counts progress.Counts, streaks []gamification.StreakCounter, ledger gamification.PointsLedger, today time.Time) badge.Stats {
	stats := badge.Stats{
		MoodChecks:         counts.MoodChecks,
		JournalEntries:     counts.JournalEntries,
		ExercisesTried:     counts.ExercisesTried,
		ExercisesCompleted: counts.ExercisesCompleted,
		GoalsCompleted:     counts.GoalsCompleted,
		StableMoodDays:     counts.StableMoodDays,
		TotalPoints:        ledger.TotalPoints,
	}

	for _, s := range streaks {
		switch s.Type {
		case gamification.StreakMoodCheck:
			stats.MoodStreak = CurrentLength(s, today)
		case gamification.StreakOverall:
			stats.OverallStreak = CurrentLength(s, today)
		}
	}
	return stats
}
