package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindStepsAPI/engine"
	"mindStepsAPI/internal/activity"
	"mindStepsAPI/internal/badge"
	"mindStepsAPI/internal/catalog"
	"mindStepsAPI/internal/gamification"
	"mindStepsAPI/internal/progress"
)

// 2026-03-10 is a Tuesday.
var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

var errStoreDown = errors.New("store down")

type memActivities struct {
	sessions []activity.Session
	listErr  error
}

func (m *memActivities) ListActivities(ctx context.Context, userID uuid.UUID, filter activity.Filter, limit int) ([]activity.Session, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []activity.Session
	for _, s := range m.sessions {
		if s.UserID != userID {
			continue
		}
		if filter.ExerciseID != "" && s.ExerciseID != filter.ExerciseID {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memActivities) CreateActivity(ctx context.Context, session activity.Session) (*activity.Session, error) {
	session.ID = uuid.New()
	m.sessions = append(m.sessions, session)
	return &session, nil
}

type memProgress struct {
	ledgers  map[uuid.UUID]gamification.PointsLedger
	streaks  map[uuid.UUID]map[gamification.StreakType]gamification.StreakCounter
	earned   map[uuid.UUID]map[string]time.Time
	counts   progress.Counts
	moods    []progress.MoodEntry
	journals []progress.JournalEntry
	goals    []progress.Goal
	health   []progress.HealthMetric

	ledgerSaves   int
	saveLedgerErr error
}

func newMemProgress() *memProgress {
	return &memProgress{
		ledgers: make(map[uuid.UUID]gamification.PointsLedger),
		streaks: make(map[uuid.UUID]map[gamification.StreakType]gamification.StreakCounter),
		earned:  make(map[uuid.UUID]map[string]time.Time),
	}
}

func (m *memProgress) GetLedger(ctx context.Context, userID uuid.UUID) (gamification.PointsLedger, error) {
	if l, ok := m.ledgers[userID]; ok {
		return l, nil
	}
	return gamification.PointsLedger{UserID: userID, Level: 1}, nil
}

func (m *memProgress) SaveLedger(ctx context.Context, ledger gamification.PointsLedger) error {
	if m.saveLedgerErr != nil {
		return m.saveLedgerErr
	}
	m.ledgerSaves++
	m.ledgers[ledger.UserID] = ledger
	return nil
}

func (m *memProgress) GetStreaks(ctx context.Context, userID uuid.UUID) ([]gamification.StreakCounter, error) {
	var out []gamification.StreakCounter
	for _, c := range m.streaks[userID] {
		out = append(out, c)
	}
	return out, nil
}

func (m *memProgress) SaveStreak(ctx context.Context, counter gamification.StreakCounter) error {
	if m.streaks[counter.UserID] == nil {
		m.streaks[counter.UserID] = make(map[gamification.StreakType]gamification.StreakCounter)
	}
	m.streaks[counter.UserID][counter.Type] = counter
	return nil
}

func (m *memProgress) GetEarnedBadges(ctx context.Context, userID uuid.UUID) (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	for id, at := range m.earned[userID] {
		out[id] = at
	}
	return out, nil
}

func (m *memProgress) SaveEarnedBadges(ctx context.Context, userID uuid.UUID, badges []badge.Badge) error {
	if m.earned[userID] == nil {
		m.earned[userID] = make(map[string]time.Time)
	}
	for _, b := range badges {
		if _, ok := m.earned[userID][b.ID]; !ok {
			m.earned[userID][b.ID] = *b.EarnedDate
		}
	}
	return nil
}

func (m *memProgress) GetCounts(ctx context.Context, userID uuid.UUID, loc *time.Location) (progress.Counts, error) {
	return m.counts, nil
}

func (m *memProgress) ListMoodEntries(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]progress.MoodEntry, error) {
	var out []progress.MoodEntry
	for _, e := range m.moods {
		if !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memProgress) ListJournalEntries(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]progress.JournalEntry, error) {
	var out []progress.JournalEntry
	for _, e := range m.journals {
		if !e.CreatedAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memProgress) ListGoals(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]progress.Goal, error) {
	return m.goals, nil
}

func (m *memProgress) ListHealthMetrics(ctx context.Context, userID uuid.UUID, limit int) ([]progress.HealthMetric, error) {
	return m.health, nil
}

type recordingNotifier struct {
	earned []string
}

func (r *recordingNotifier) NotifyBadgesEarned(ctx context.Context, userID uuid.UUID, earned []badge.Badge) {
	for _, b := range earned {
		r.earned = append(r.earned, b.ID)
	}
}

type fixture struct {
	svc        *EngagementService
	activities *memActivities
	progress   *memProgress
	notifier   *recordingNotifier
	userID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)

	f := &fixture{
		activities: &memActivities{},
		progress:   newMemProgress(),
		notifier:   &recordingNotifier{},
		userID:     uuid.New(),
	}
	f.svc = NewEngagementService(f.activities, f.progress, cat, time.UTC, nil)
	f.svc.SetNotifier(f.notifier)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) seedStreak(kind gamification.StreakType, current int, last time.Time) {
	day := engine.CalendarDay(last)
	_ = f.progress.SaveStreak(context.Background(), gamification.StreakCounter{
		UserID:           f.userID,
		Type:             kind,
		CurrentStreak:    current,
		LongestStreak:    current,
		LastActivityDate: &day,
	})
}

func streakOf(streaks []gamification.StreakCounter, kind gamification.StreakType) int {
	for _, s := range streaks {
		if s.Type == kind {
			return s.CurrentStreak
		}
	}
	return -1
}

func TestCompleteSessionAwardsPointsAndStreaks(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CompleteSession(context.Background(), f.userID, activity.Draft{
		ExerciseID:      "thought_record",
		Completed:       true,
		DurationSeconds: 300,
		DifficultyLevel: activity.DifficultyBeginner,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Event)

	assert.False(t, res.UnknownExercise)
	assert.Equal(t, activity.CategoryCBT, res.Session.Category)
	assert.Equal(t, f.userID, res.Session.UserID)
	assert.Equal(t, 20, res.Event.PointsAwarded)
	assert.Empty(t, res.Event.Bonuses)
	assert.Equal(t, 20, res.Event.Ledger.TotalPoints)
	assert.Equal(t, 20, res.Event.Ledger.WeeklyPoints)
	assert.Equal(t, 1, res.Event.Ledger.Level)
	assert.Equal(t, 1, streakOf(res.Event.Streaks, gamification.StreakExercise))
	assert.Equal(t, 1, streakOf(res.Event.Streaks, gamification.StreakOverall))
	assert.Len(t, f.activities.sessions, 1)
	assert.Equal(t, 20, f.progress.ledgers[f.userID].TotalPoints)
}

func TestCompleteSessionUnknownExerciseIsStored(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CompleteSession(context.Background(), f.userID, activity.Draft{ExerciseID: "mystery", Completed: true})
	require.NoError(t, err)

	assert.True(t, res.UnknownExercise)
	assert.Equal(t, catalog.DefaultMetadata.Category, res.Session.Category)
	assert.Equal(t, catalog.DefaultMetadata.SkillFocus, res.Session.SkillFocus)
	assert.Len(t, f.activities.sessions, 1)
}

func TestCompleteSessionIncompleteAwardsNothing(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.CompleteSession(context.Background(), f.userID, activity.Draft{ExerciseID: "box_breathing"})
	require.NoError(t, err)

	assert.Nil(t, res.Event)
	assert.Zero(t, f.progress.ledgerSaves)
	assert.Empty(t, f.progress.streaks[f.userID])
	assert.Len(t, f.activities.sessions, 1)
}

func TestRecordEventRejectsUnknownKind(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordEvent(context.Background(), f.userID, gamification.EventKind("meditation_marathon"))
	require.ErrorIs(t, err, engine.ErrUnknownEventKind)
	assert.Zero(t, f.progress.ledgerSaves)
}

func TestRecordEventStreakBonusesAndBadges(t *testing.T) {
	f := newFixture(t)
	f.seedStreak(gamification.StreakOverall, 6, testNow.AddDate(0, 0, -1))
	f.progress.counts = progress.Counts{MoodChecks: 1}

	res, err := f.svc.RecordEvent(context.Background(), f.userID, gamification.EventMoodCheck)
	require.NoError(t, err)

	assert.Equal(t, []gamification.EventKind{gamification.EventDailyStreak, gamification.EventWeeklyStreak}, res.Bonuses)
	assert.Equal(t, 10+5+30, res.PointsAwarded)
	assert.Equal(t, 45, res.Ledger.TotalPoints)
	assert.Equal(t, 7, streakOf(res.Streaks, gamification.StreakOverall))
	assert.Equal(t, 1, streakOf(res.Streaks, gamification.StreakMoodCheck))

	ids := make([]string, 0, len(res.NewBadges))
	for _, b := range res.NewBadges {
		ids = append(ids, b.ID)
		require.NotNil(t, b.EarnedDate)
	}
	assert.ElementsMatch(t, []string{"first_check_in", "on_a_roll"}, ids)
	assert.ElementsMatch(t, []string{"first_check_in", "on_a_roll"}, f.notifier.earned)
}

func TestRecordEventKeepsStreakWhenLedgerWriteFails(t *testing.T) {
	f := newFixture(t)
	f.seedStreak(gamification.StreakOverall, 6, testNow.AddDate(0, 0, -1))
	f.progress.saveLedgerErr = errStoreDown

	_, err := f.svc.RecordEvent(context.Background(), f.userID, gamification.EventMoodCheck)
	require.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 6, f.progress.streaks[f.userID][gamification.StreakOverall].CurrentStreak)
	assert.NotContains(t, f.progress.streaks[f.userID], gamification.StreakMoodCheck)

	f.progress.saveLedgerErr = nil
	res, err := f.svc.RecordEvent(context.Background(), f.userID, gamification.EventMoodCheck)
	require.NoError(t, err)
	assert.Equal(t, 10+5+30, res.PointsAwarded)
	assert.Equal(t, 7, f.progress.streaks[f.userID][gamification.StreakOverall].CurrentStreak)
}

func TestRecordEventSameDayAdvancesOnce(t *testing.T) {
	f := newFixture(t)
	f.seedStreak(gamification.StreakOverall, 2, testNow.AddDate(0, 0, -1))
	ctx := context.Background()

	first, err := f.svc.RecordEvent(ctx, f.userID, gamification.EventJournalEntry)
	require.NoError(t, err)
	assert.Equal(t, 15+5, first.PointsAwarded)

	second, err := f.svc.RecordEvent(ctx, f.userID, gamification.EventJournalEntry)
	require.NoError(t, err)
	assert.Equal(t, 15, second.PointsAwarded)
	assert.Empty(t, second.Bonuses)
	assert.Equal(t, 3, streakOf(second.Streaks, gamification.StreakOverall))
	assert.Equal(t, 1, streakOf(second.Streaks, gamification.StreakJournal))
	assert.Equal(t, 35, f.progress.ledgers[f.userID].TotalPoints)
}

func TestRecordEventLevelsUp(t *testing.T) {
	f := newFixture(t)
	f.progress.ledgers[f.userID] = gamification.PointsLedger{UserID: f.userID, TotalPoints: 95, WeeklyPoints: 95, Level: 1, UpdatedAt: testNow}

	res, err := f.svc.RecordEvent(context.Background(), f.userID, gamification.EventGoalMilestone)
	require.NoError(t, err)

	assert.Equal(t, 120, res.Ledger.TotalPoints)
	assert.Equal(t, 2, res.Ledger.Level)
	assert.True(t, res.LeveledUp)
}

func TestRecordEventClearsWeeklyPointsFromEarlierWeek(t *testing.T) {
	f := newFixture(t)
	f.progress.ledgers[f.userID] = gamification.PointsLedger{
		UserID:       f.userID,
		TotalPoints:  300,
		WeeklyPoints: 80,
		Level:        3,
		UpdatedAt:    testNow.AddDate(0, 0, -7),
	}

	res, err := f.svc.RecordEvent(context.Background(), f.userID, gamification.EventGoalComplete)
	require.NoError(t, err)

	assert.Equal(t, 350, res.Ledger.TotalPoints)
	assert.Equal(t, 50, res.Ledger.WeeklyPoints)
}

func TestEvaluateBadgesIsMonotonic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.progress.counts = progress.Counts{JournalEntries: 1, GoalsCompleted: 1}

	first, err := f.svc.EvaluateBadges(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, first.NewlyEarned, 2)
	assert.Equal(t, 1, first.Stats.JournalEntries)

	f.progress.counts = progress.Counts{}
	second, err := f.svc.EvaluateBadges(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, second.NewlyEarned)

	earned := 0
	for _, b := range second.Badges {
		if b.Earned() {
			earned++
		}
	}
	assert.Equal(t, 2, earned)
	assert.Len(t, f.notifier.earned, 2)
}

func TestSuggestDifficulty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		r := 90.0
		f.activities.sessions = append(f.activities.sessions, activity.Session{
			UserID:      f.userID,
			ExerciseID:  "wise_mind",
			SuccessRate: &r,
			Timestamp:   testNow.Add(-time.Duration(i) * time.Hour),
		})
	}

	got, err := f.svc.SuggestDifficulty(ctx, f.userID, "wise_mind")
	require.NoError(t, err)
	assert.Equal(t, activity.DifficultyAdvanced, got.Difficulty)
	assert.False(t, got.Degraded)

	got, err = f.svc.SuggestDifficulty(ctx, f.userID, "not_an_exercise")
	require.NoError(t, err)
	assert.Equal(t, activity.DifficultyBeginner, got.Difficulty)
	assert.False(t, got.Degraded)
}

func TestSuggestDifficultyGradesExercisesOutsideCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		r := 95.0
		f.svc.now = func() time.Time { return testNow.Add(time.Duration(i) * time.Minute) }
		res, err := f.svc.CompleteSession(ctx, f.userID, activity.Draft{ExerciseID: "legacy_game", Completed: true, SuccessRate: &r})
		require.NoError(t, err)
		require.True(t, res.UnknownExercise)
	}
	require.Len(t, f.activities.sessions, 3)

	got, err := f.svc.SuggestDifficulty(ctx, f.userID, "legacy_game")
	require.NoError(t, err)
	assert.Equal(t, "legacy_game", got.ExerciseID)
	assert.Equal(t, activity.DifficultyAdvanced, got.Difficulty)
}

func TestSuggestDifficultyDegradesOnStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.activities.listErr = errStoreDown

	got, err := f.svc.SuggestDifficulty(context.Background(), f.userID, "wise_mind")
	require.NoError(t, err)
	assert.Equal(t, activity.DifficultyBeginner, got.Difficulty)
	assert.True(t, got.Degraded)
}

func TestRecommendFallsBackToColdStart(t *testing.T) {
	f := newFixture(t)
	f.activities.listErr = errStoreDown

	got, err := f.svc.Recommend(context.Background(), f.userID, 0)
	require.NoError(t, err)
	assert.True(t, got.Degraded)

	ids := make([]string, 0, len(got.Recommendations))
	for _, r := range got.Recommendations {
		ids = append(ids, r.Exercise.ID)
		assert.Equal(t, activity.DifficultyBeginner, r.Difficulty)
	}
	assert.Equal(t, []string{"mindful_minute", "box_breathing", "five_senses_grounding"}, ids)
}

func TestStreaksReportsEveryTypeAndLapses(t *testing.T) {
	f := newFixture(t)
	f.seedStreak(gamification.StreakOverall, 5, testNow.AddDate(0, 0, -3))
	f.seedStreak(gamification.StreakMoodCheck, 2, testNow)

	views, err := f.svc.Streaks(context.Background(), f.userID)
	require.NoError(t, err)
	require.Len(t, views, len(gamification.StreakTypes))

	byType := make(map[gamification.StreakType]int)
	for _, v := range views {
		byType[v.Type] = v.Current
		if v.Type == gamification.StreakOverall {
			assert.Equal(t, 5, v.Longest)
			assert.False(t, v.ActiveToday)
		}
		if v.Type == gamification.StreakMoodCheck {
			assert.True(t, v.ActiveToday)
		}
	}
	assert.Equal(t, 0, byType[gamification.StreakOverall])
	assert.Equal(t, 2, byType[gamification.StreakMoodCheck])
	assert.Equal(t, 0, byType[gamification.StreakJournal])
}

func TestLedgerView(t *testing.T) {
	f := newFixture(t)
	f.progress.ledgers[f.userID] = gamification.PointsLedger{UserID: f.userID, TotalPoints: 95, Level: 1, UpdatedAt: testNow}

	view, err := f.svc.Ledger(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, 5, view.PointsToNextLevel)
	assert.Equal(t, len(engine.LevelThresholds), view.MaxLevel)
}

func TestSummaryUsesRequestedWindow(t *testing.T) {
	f := newFixture(t)
	f.activities.sessions = []activity.Session{
		{UserID: f.userID, ExerciseID: "box_breathing", Category: activity.CategoryDBT, Completed: true, DurationSeconds: 120, Timestamp: testNow.AddDate(0, 0, -1)},
		{UserID: f.userID, ExerciseID: "thought_record", Category: activity.CategoryCBT, Completed: true, DurationSeconds: 600, Timestamp: testNow.AddDate(0, 0, -20)},
	}
	f.progress.moods = []progress.MoodEntry{
		{Mood: progress.MoodGood, Triggers: []string{"work"}, CreatedAt: testNow.AddDate(0, 0, -2)},
		{Mood: progress.MoodLow, Triggers: []string{"sleep"}, CreatedAt: testNow.AddDate(0, 0, -1)},
	}
	f.progress.goals = []progress.Goal{{Title: "walk", Completed: true}, {Title: "read"}}

	summary, err := f.svc.Summary(context.Background(), f.userID, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Exercises.TotalSessions)
	assert.InDelta(t, 2.0, summary.Exercises.TotalMinutes, 0.001)
	assert.InDelta(t, 3.0, summary.Mood.Average, 0.001)
	require.Len(t, summary.NegativeTriggers, 2)
	assert.Equal(t, "sleep", summary.NegativeTriggers[0].Tag)
	assert.Equal(t, 1, summary.StableMoodDays)
	assert.Equal(t, 1, summary.GoalsCompleted)
}
