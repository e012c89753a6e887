package engine

import (
	"time"

	"mindStepsAPI/internal/gamification"
)

// AdvanceStreak records a qualifying event on today's calendar day. It
// reports whether the counter changed. Repeat events on the same day, and
// days earlier than the last recorded one, leave the counter untouched.
func AdvanceStreak(counter gamification.StreakCounter, today time.Time) (gamification.StreakCounter, bool) {
	day := CalendarDay(today)

	if counter.LastActivityDate == nil {
		counter.CurrentStreak = 1
	} else {
		gap := DaysBetween(*counter.LastActivityDate, day)
		switch {
		case gap <= 0:
			return counter, false
		case gap == 1:
			counter.CurrentStreak++
		default:
			counter.CurrentStreak = 1
		}
	}

	if counter.CurrentStreak > counter.LongestStreak {
		counter.LongestStreak = counter.CurrentStreak
	}
	counter.LastActivityDate = &day
	return counter, true
}

// CurrentLength is the streak as it should be displayed on day: a counter
// whose last qualifying day is older than yesterday has lapsed.
func CurrentLength(counter gamification.StreakCounter, day time.Time) int {
	if counter.LastActivityDate == nil {
		return 0
	}
	if DaysBetween(*counter.LastActivityDate, CalendarDay(day)) > 1 {
		return 0
	}
	return counter.CurrentStreak
}

// CalendarDay truncates t to midnight in t's own location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from a to b using each value's own
// wall-clock date, so DST shifts never produce a fractional day.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
