package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindStepsAPI/internal/gamification"
)

func TestApplyEventLevelsUp(t *testing.T) {
	ledger := gamification.PointsLedger{TotalPoints: 95, WeeklyPoints: 40, Level: 1}

	updated, awarded, err := ApplyEvent(ledger, gamification.EventMoodCheck)
	require.NoError(t, err)

	assert.Equal(t, 10, awarded)
	assert.Equal(t, 105, updated.TotalPoints)
	assert.Equal(t, 50, updated.WeeklyPoints)
	assert.Equal(t, 2, updated.Level)
}

func TestApplyEventUnknownKindLeavesLedgerUnchanged(t *testing.T) {
	ledger := gamification.PointsLedger{TotalPoints: 320, WeeklyPoints: 20, Level: 3}

	updated, awarded, err := ApplyEvent(ledger, "meditated_on_a_mountain")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEventKind))
	assert.Equal(t, 0, awarded)
	assert.Equal(t, ledger, updated)
}

func TestEveryEventKindHasPoints(t *testing.T) {
	kinds := []gamification.EventKind{
		gamification.EventMoodCheck,
		gamification.EventJournalEntry,
		gamification.EventExerciseComplete,
		gamification.EventGoalMilestone,
		gamification.EventGoalComplete,
		gamification.EventDailyStreak,
		gamification.EventWeeklyStreak,
	}
	for _, k := range kinds {
		pts, err := PointsFor(k)
		require.NoError(t, err, k)
		assert.Positive(t, pts, k)
	}
}

func TestLevelInvariantHoldsAfterEveryAddition(t *testing.T) {
	ledger := gamification.PointsLedger{Level: 1}
	kinds := []gamification.EventKind{
		gamification.EventGoalComplete,
		gamification.EventMoodCheck,
		gamification.EventExerciseComplete,
		gamification.EventWeeklyStreak,
	}

	for i := 0; i < 600; i++ {
		var err error
		ledger, _, err = ApplyEvent(ledger, kinds[i%len(kinds)])
		require.NoError(t, err)

		level := ledger.Level
		require.GreaterOrEqual(t, level, 1)
		assert.LessOrEqual(t, LevelThresholds[level-1], ledger.TotalPoints)
		if level < len(LevelThresholds) {
			assert.Less(t, ledger.TotalPoints, LevelThresholds[level])
		}
	}
	assert.Equal(t, len(LevelThresholds), ledger.Level)
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		points int
		want   int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{9999, 9},
		{10000, 10},
		{250000, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.points), "points=%d", tt.points)
	}
}

func TestResetWeeklyKeepsTotals(t *testing.T) {
	ledger := gamification.PointsLedger{TotalPoints: 510, WeeklyPoints: 85, Level: 4}

	reset := ResetWeekly(ledger)
	assert.Equal(t, 0, reset.WeeklyPoints)
	assert.Equal(t, 510, reset.TotalPoints)
	assert.Equal(t, 4, reset.Level)
}

func TestPointsToNextLevel(t *testing.T) {
	assert.Equal(t, 5, PointsToNextLevel(gamification.PointsLedger{TotalPoints: 95}))
	assert.Equal(t, 0, PointsToNextLevel(gamification.PointsLedger{TotalPoints: 12000}))
}

func TestWeekStart(t *testing.T) {
	// 2026-03-10 is a Tuesday.
	assert.Equal(t, time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), WeekStart(baseTime))

	sunday := time.Date(2026, time.March, 15, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC), WeekStart(sunday))

	monday := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, WeekStart(monday))
}

func TestRefreshWeekly(t *testing.T) {
	stale := gamification.PointsLedger{TotalPoints: 300, WeeklyPoints: 60, UpdatedAt: baseTime.AddDate(0, 0, -7)}
	assert.Equal(t, 0, RefreshWeekly(stale, baseTime).WeeklyPoints)

	fresh := gamification.PointsLedger{TotalPoints: 300, WeeklyPoints: 60, UpdatedAt: baseTime.Add(-time.Hour)}
	assert.Equal(t, 60, RefreshWeekly(fresh, baseTime).WeeklyPoints)

	never := gamification.PointsLedger{WeeklyPoints: 0}
	assert.Equal(t, never, RefreshWeekly(never, baseTime))
}
