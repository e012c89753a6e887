package engine

import (
	"fmt"
	"sort"
	"time"

	"mindStepsAPI/internal/gamification"
)

// LevelThresholds[i] is the minimum total needed for level i+1.
var LevelThresholds = []int{0, 100, 250, 500, 1000, 2000, 3500, 5000, 7500, 10000}

var PointValues = map[gamification.EventKind]int{
	gamification.EventMoodCheck:        10,
	gamification.EventJournalEntry:     15,
	gamification.EventExerciseComplete: 20,
	gamification.EventGoalMilestone:    25,
	gamification.EventGoalComplete:     50,
	gamification.EventDailyStreak:      5,
	gamification.EventWeeklyStreak:     30,
}

func PointsFor(kind gamification.EventKind) (int, error) {
	pts, ok := PointValues[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownEventKind, kind)
	}
	return pts, nil
}

// LevelFor returns the 1-based level reached with the given total.
func LevelFor(totalPoints int) int {
	idx := sort.Search(len(LevelThresholds), func(i int) bool {
		return LevelThresholds[i] > totalPoints
	})
	if idx == 0 {
		return 1
	}
	return idx
}

// ApplyEvent adds the event's points to the ledger and recomputes the level.
// On an unknown kind the ledger is returned unchanged.
func ApplyEvent(ledger gamification.PointsLedger, kind gamification.EventKind) (gamification.PointsLedger, int, error) {
	pts, err := PointsFor(kind)
	if err != nil {
		return ledger, 0, err
	}
	ledger.TotalPoints += pts
	ledger.WeeklyPoints += pts
	ledger.Level = LevelFor(ledger.TotalPoints)
	return ledger, pts, nil
}

func ResetWeekly(ledger gamification.PointsLedger) gamification.PointsLedger {
	ledger.WeeklyPoints = 0
	return ledger
}

// PointsToNextLevel is zero once the top level is reached.
func PointsToNextLevel(ledger gamification.PointsLedger) int {
	level := LevelFor(ledger.TotalPoints)
	if level >= len(LevelThresholds) {
		return 0
	}
	return LevelThresholds[level] - ledger.TotalPoints
}

// WeekStart is Monday 00:00 of t's week, in t's location.
func WeekStart(t time.Time) time.Time {
	day := CalendarDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// RefreshWeekly zeroes weekly points left over from an earlier week, covering
// a reset signal that never arrived.
func RefreshWeekly(ledger gamification.PointsLedger, now time.Time) gamification.PointsLedger {
	if !ledger.UpdatedAt.IsZero() && ledger.UpdatedAt.Before(WeekStart(now)) {
		return ResetWeekly(ledger)
	}
	return ledger
}
