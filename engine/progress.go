package engine

import (
	"sort"
	"time"

	"mindStepsAPI/internal/activity"
	"mindStepsAPI/internal/progress"
)

const (
	HealthWindow      = 7
	HealthMaxRecords  = 30
	TrendWindow       = 7
	TrendTolerance    = 0.2
	StableMoodMinimum = 3.0
)

var moodValues = map[progress.MoodLevel]int{
	progress.MoodVeryLow:   1,
	progress.MoodLow:       2,
	progress.MoodNeutral:   3,
	progress.MoodGood:      4,
	progress.MoodExcellent: 5,
}

func MoodValue(level progress.MoodLevel) (int, bool) {
	v, ok := moodValues[level]
	return v, ok
}

// RollingAverages averages each health metric over the most recent window
// records (at most HealthMaxRecords are considered). A metric that was never
// observed reports zero.
func RollingAverages(metrics []progress.HealthMetric, window int) progress.HealthAverages {
	if window <= 0 || window > HealthMaxRecords {
		window = HealthWindow
	}

	recent := make([]progress.HealthMetric, len(metrics))
	copy(recent, metrics)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if len(recent) > window {
		recent = recent[:window]
	}

	var sleepSum, stepsSum, hrSum float64
	var sleepN, stepsN, hrN int
	for _, m := range recent {
		if m.SleepHours != nil {
			sleepSum += *m.SleepHours
			sleepN++
		}
		if m.Steps != nil {
			stepsSum += *m.Steps
			stepsN++
		}
		if m.HeartRate != nil {
			hrSum += *m.HeartRate
			hrN++
		}
	}

	return progress.HealthAverages{
		SleepHours: safeMean(sleepSum, sleepN),
		Steps:      safeMean(stepsSum, stepsN),
		HeartRate:  safeMean(hrSum, hrN),
		Days:       len(recent),
	}
}

// MoodTrend maps entries onto the 1..5 scale, averages them, and labels the
// direction by comparing the last TrendWindow points with the TrendWindow
// before them.
func MoodTrend(entries []progress.MoodEntry) progress.MoodTrend {
	points := make([]progress.MoodPoint, 0, len(entries))
	for _, e := range entries {
		v, ok := MoodValue(e.Mood)
		if !ok {
			continue
		}
		points = append(points, progress.MoodPoint{At: e.CreatedAt, Value: v})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].At.Before(points[j].At)
	})

	trend := progress.MoodTrend{Label: progress.TrendStable, Points: points}
	if len(points) == 0 {
		return trend
	}

	var sum int
	for _, p := range points {
		sum += p.Value
	}
	trend.Average = float64(sum) / float64(len(points))

	end := len(points)
	recentStart := max(end-TrendWindow, 0)
	previousStart := max(recentStart-TrendWindow, 0)
	recent := points[recentStart:end]
	previous := points[previousStart:recentStart]
	if len(previous) == 0 {
		return trend
	}

	diff := meanOfPoints(recent) - meanOfPoints(previous)
	switch {
	case diff > TrendTolerance:
		trend.Label = progress.TrendImproving
	case diff < -TrendTolerance:
		trend.Label = progress.TrendDeclining
	}
	return trend
}

type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// TagSelector picks the tags of one dimension from a mood entry.
type TagSelector func(progress.MoodEntry) []string

func ByTrigger(e progress.MoodEntry) []string  { return e.Triggers }
func ByActivity(e progress.MoodEntry) []string { return e.Activities }
func ByEmotion(e progress.MoodEntry) []string  { return e.Emotions }

func TagObservations(entries []progress.MoodEntry, selector TagSelector) []progress.TagObservation {
	var obs []progress.TagObservation
	for _, e := range entries {
		v, ok := MoodValue(e.Mood)
		if !ok {
			continue
		}
		for _, tag := range selector(e) {
			if tag == "" {
				continue
			}
			obs = append(obs, progress.TagObservation{Tag: tag, MoodValue: v})
		}
	}
	return obs
}

// ImpactTable groups observations by tag and sorts by mean mood. Ascending
// surfaces the tags that coincide with the lowest mood.
func ImpactTable(observations []progress.TagObservation, order SortOrder) []progress.ImpactRow {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, o := range observations {
		sums[o.Tag] += o.MoodValue
		counts[o.Tag]++
	}

	rows := make([]progress.ImpactRow, 0, len(counts))
	for tag, n := range counts {
		rows = append(rows, progress.ImpactRow{
			Tag:         tag,
			Count:       n,
			AverageMood: float64(sums[tag]) / float64(n),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AverageMood != rows[j].AverageMood {
			if order == Descending {
				return rows[i].AverageMood > rows[j].AverageMood
			}
			return rows[i].AverageMood < rows[j].AverageMood
		}
		return rows[i].Tag < rows[j].Tag
	})
	return rows
}

func SummarizeExercises(history []activity.Session) progress.ExerciseSummary {
	summary := progress.ExerciseSummary{
		ByCategory:   make(map[activity.Category]int),
		BySkill:      make(map[activity.SkillFocus]int),
		ByDifficulty: make(map[activity.Difficulty]int),
	}

	var seconds int
	for _, s := range history {
		summary.TotalSessions++
		if s.Completed {
			summary.CompletedSessions++
		}
		seconds += s.DurationSeconds
		summary.ByCategory[s.Category]++
		summary.BySkill[s.SkillFocus]++
		summary.ByDifficulty[s.DifficultyLevel]++
	}

	if summary.TotalSessions > 0 {
		summary.CompletionRate = float64(summary.CompletedSessions) / float64(summary.TotalSessions) * 100
	}
	summary.TotalMinutes = float64(seconds) / 60
	return summary
}

// StableMoodDays counts distinct calendar days whose mean mood is at least
// neutral.
func StableMoodDays(entries []progress.MoodEntry, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	sums := make(map[time.Time]int)
	counts := make(map[time.Time]int)
	for _, e := range entries {
		v, ok := MoodValue(e.Mood)
		if !ok {
			continue
		}
		day := CalendarDay(e.CreatedAt.In(loc))
		sums[day] += v
		counts[day]++
	}

	stable := 0
	for day, n := range counts {
		if float64(sums[day])/float64(n) >= StableMoodMinimum {
			stable++
		}
	}
	return stable
}

func meanOfPoints(points []progress.MoodPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum int
	for _, p := range points {
		sum += p.Value
	}
	return float64(sum) / float64(len(points))
}

func safeMean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
