package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mindStepsAPI/internal/activity"
	"mindStepsAPI/internal/catalog"
)

var baseTime = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func rate(v float64) *float64 {
	return &v
}

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

// played builds a history where the i-th id was played i minutes after baseTime.
func played(t *testing.T, cat *catalog.Catalog, ids ...string) []activity.Session {
	t.Helper()
	sessions := make([]activity.Session, 0, len(ids))
	for i, id := range ids {
		meta, ok := cat.Lookup(id)
		require.True(t, ok, id)
		sessions = append(sessions, activity.Session{
			ExerciseID: id,
			Category:   meta.Category,
			SkillFocus: meta.SkillFocus,
			Completed:  true,
			Attempts:   1,
			Timestamp:  baseTime.Add(time.Duration(i) * time.Minute),
		})
	}
	return sessions
}

func graded(exerciseID string, rates ...*float64) []activity.Session {
	sessions := make([]activity.Session, 0, len(rates))
	for i, r := range rates {
		sessions = append(sessions, activity.Session{
			ExerciseID:  exerciseID,
			SuccessRate: r,
			Timestamp:   baseTime.Add(time.Duration(i) * time.Hour),
		})
	}
	return sessions
}
