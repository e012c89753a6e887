package engine

import (
	"time"

	"mindStepsAPI/internal/badge"
)

// EvaluateBadges marks every unearned badge whose requirement the snapshot
// satisfies. Already earned badges keep their original date, so evaluation
// is idempotent and never revokes a badge.
func EvaluateBadges(badges []badge.Badge, stats badge.Stats, now time.Time) (updated []badge.Badge, newlyEarned []badge.Badge) {
	updated = make([]badge.Badge, len(badges))
	copy(updated, badges)

	for i := range updated {
		if updated[i].Earned() {
			continue
		}
		value, ok := stats.Value(updated[i].Requirement.Type)
		if !ok || value < updated[i].Requirement.Value {
			continue
		}
		earned := now
		updated[i].EarnedDate = &earned
		newlyEarned = append(newlyEarned, updated[i])
	}

	return updated, newlyEarned
}
