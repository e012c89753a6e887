package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mindStepsAPI/engine"
	"mindStepsAPI/internal/activity"
	"mindStepsAPI/internal/badge"
	"mindStepsAPI/internal/catalog"
	"mindStepsAPI/internal/engagement"
	"mindStepsAPI/internal/gamification"
	"mindStepsAPI/internal/logger"
	"mindStepsAPI/internal/metrics"
	"mindStepsAPI/internal/progress"
)

const (
	DefaultSummaryDays = 30
	MaxSummaryDays     = 365
)

type ActivityStore interface {
	ListActivities(ctx context.Context, userID uuid.UUID, filter activity.Filter, limit int) ([]activity.Session, error)
	CreateActivity(ctx context.Context, session activity.Session) (*activity.Session, error)
}

type ProgressStore interface {
	GetLedger(ctx context.Context, userID uuid.UUID) (gamification.PointsLedger, error)
	SaveLedger(ctx context.Context, ledger gamification.PointsLedger) error
	GetStreaks(ctx context.Context, userID uuid.UUID) ([]gamification.StreakCounter, error)
	SaveStreak(ctx context.Context, counter gamification.StreakCounter) error
	GetEarnedBadges(ctx context.Context, userID uuid.UUID) (map[string]time.Time, error)
	SaveEarnedBadges(ctx context.Context, userID uuid.UUID, badges []badge.Badge) error
	GetCounts(ctx context.Context, userID uuid.UUID, loc *time.Location) (progress.Counts, error)
	ListMoodEntries(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]progress.MoodEntry, error)
	ListJournalEntries(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]progress.JournalEntry, error)
	ListGoals(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]progress.Goal, error)
	ListHealthMetrics(ctx context.Context, userID uuid.UUID, limit int) ([]progress.HealthMetric, error)
}

type BadgeNotifier interface {
	NotifyBadgesEarned(ctx context.Context, userID uuid.UUID, earned []badge.Badge)
}

// EngagementService runs the read-compute-write cycle around the pure engine
// functions. There is no cross-request transaction: two concurrent events for
// the same user may lose one update.
type EngagementService struct {
	activities ActivityStore
	progress   ProgressStore
	catalog    *catalog.Catalog
	notifier   BadgeNotifier
	log        *logger.Logger
	loc        *time.Location
	now        func() time.Time
}

func NewEngagementService(activities ActivityStore, progress ProgressStore, cat *catalog.Catalog, loc *time.Location, log *logger.Logger) *EngagementService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &EngagementService{
		activities: activities,
		progress:   progress,
		catalog:    cat,
		log:        log,
		loc:        loc,
		now:        time.Now,
	}
}

// SetNotifier enables badge pushes.
func (s *EngagementService) SetNotifier(n BadgeNotifier) {
	s.notifier = n
}

func (s *EngagementService) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *EngagementService) today() time.Time {
	return s.now().In(s.loc)
}

// CompleteSession ingests a finished exercise. A session for an exercise id
// the catalog does not know is still stored, with default metadata.
func (s *EngagementService) CompleteSession(ctx context.Context, userID uuid.UUID, draft activity.Draft) (*engagement.SessionResult, error) {
	now := s.today()

	session, err := engine.NormalizeSession(draft, s.catalog, now)
	unknown := errors.Is(err, engine.ErrUnknownExercise)
	if err != nil && !unknown {
		return nil, err
	}
	if unknown {
		metrics.UnknownExercises.Inc()
		s.log.Warn("session for unknown exercise", "exercise_id", draft.ExerciseID, "user_id", userID.String())
	}
	session.UserID = userID

	saved, err := s.activities.CreateActivity(ctx, session)
	if err != nil {
		return nil, err
	}
	metrics.SessionsIngested.WithLabelValues(string(saved.Category), fmt.Sprint(saved.Completed)).Inc()

	result := &engagement.SessionResult{Session: *saved, UnknownExercise: unknown}
	if !saved.Completed {
		// Tried-but-unfinished sessions still count toward exploration badges.
		ledger, err := s.currentLedger(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		streaks, err := s.progress.GetStreaks(ctx, userID)
		if err != nil {
			return nil, err
		}
		if _, _, _, err := s.evaluate(ctx, userID, ledger, streaks, now); err != nil {
			return nil, err
		}
		return result, nil
	}

	event, err := s.applyEvent(ctx, userID, gamification.EventExerciseComplete, now)
	if err != nil {
		return nil, err
	}
	result.Event = event
	return result, nil
}

// RecordEvent awards points for a client-reported event and advances the
// streaks that event qualifies for.
func (s *EngagementService) RecordEvent(ctx context.Context, userID uuid.UUID, kind gamification.EventKind) (*gamification.EventResult, error) {
	if _, err := engine.PointsFor(kind); err != nil {
		return nil, err
	}
	return s.applyEvent(ctx, userID, kind, s.today())
}

func streakTypesFor(kind gamification.EventKind) []gamification.StreakType {
	switch kind {
	case gamification.EventMoodCheck:
		return []gamification.StreakType{gamification.StreakMoodCheck, gamification.StreakOverall}
	case gamification.EventJournalEntry:
		return []gamification.StreakType{gamification.StreakJournal, gamification.StreakOverall}
	case gamification.EventExerciseComplete:
		return []gamification.StreakType{gamification.StreakExercise, gamification.StreakOverall}
	case gamification.EventGoalMilestone, gamification.EventGoalComplete:
		return []gamification.StreakType{gamification.StreakOverall}
	}
	return nil
}

// streakBonuses lists the bonus events earned by an overall streak that just
// moved to a new day. A fresh streak of one day earns nothing.
func streakBonuses(overall gamification.StreakCounter) []gamification.EventKind {
	if overall.CurrentStreak < 2 {
		return nil
	}
	bonuses := []gamification.EventKind{gamification.EventDailyStreak}
	if overall.CurrentStreak%7 == 0 {
		bonuses = append(bonuses, gamification.EventWeeklyStreak)
	}
	return bonuses
}

func (s *EngagementService) applyEvent(ctx context.Context, userID uuid.UUID, kind gamification.EventKind, now time.Time) (*gamification.EventResult, error) {
	ledger, err := s.currentLedger(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	levelBefore := ledger.Level

	ledger, pts, err := engine.ApplyEvent(ledger, kind)
	if err != nil {
		return nil, err
	}
	metrics.PointsAwarded.WithLabelValues(string(kind)).Add(float64(pts))
	result := &gamification.EventResult{Kind: kind, PointsAwarded: pts}

	stored, err := s.progress.GetStreaks(ctx, userID)
	if err != nil {
		return nil, err
	}
	byType := make(map[gamification.StreakType]gamification.StreakCounter, len(stored))
	for _, c := range stored {
		byType[c.Type] = c
	}

	var advanced []gamification.StreakCounter
	for _, t := range streakTypesFor(kind) {
		counter, ok := byType[t]
		if !ok {
			counter = gamification.StreakCounter{UserID: userID, Type: t}
		}
		updated, changed := engine.AdvanceStreak(counter, now)
		if !changed {
			continue
		}
		updated.UpdatedAt = now
		advanced = append(advanced, updated)
		byType[t] = updated
		if t == gamification.StreakOverall {
			result.Bonuses = streakBonuses(updated)
		}
	}

	for _, bonus := range result.Bonuses {
		var bonusPts int
		ledger, bonusPts, err = engine.ApplyEvent(ledger, bonus)
		if err != nil {
			return nil, err
		}
		result.PointsAwarded += bonusPts
		metrics.PointsAwarded.WithLabelValues(string(bonus)).Add(float64(bonusPts))
	}

	// Points go first: a failed ledger write must not spend the streak day
	// its bonus was tied to.
	ledger.UpdatedAt = now
	if err := s.progress.SaveLedger(ctx, ledger); err != nil {
		return nil, err
	}
	for _, c := range advanced {
		if err := s.progress.SaveStreak(ctx, c); err != nil {
			return nil, err
		}
	}
	result.Ledger = ledger
	result.LeveledUp = ledger.Level > levelBefore

	result.Streaks = make([]gamification.StreakCounter, 0, len(byType))
	for _, t := range gamification.StreakTypes {
		if c, ok := byType[t]; ok {
			result.Streaks = append(result.Streaks, c)
		}
	}

	_, newly, _, err := s.evaluate(ctx, userID, ledger, result.Streaks, now)
	if err != nil {
		return nil, err
	}
	result.NewBadges = newly
	if result.LeveledUp {
		s.log.Info("user leveled up", "user_id", userID.String(), "level", ledger.Level)
	}
	return result, nil
}

// currentLedger loads the ledger with stale weekly points cleared.
func (s *EngagementService) currentLedger(ctx context.Context, userID uuid.UUID, now time.Time) (gamification.PointsLedger, error) {
	ledger, err := s.progress.GetLedger(ctx, userID)
	if err != nil {
		return ledger, err
	}
	ledger.UserID = userID
	ledger = engine.RefreshWeekly(ledger, now)
	ledger.Level = engine.LevelFor(ledger.TotalPoints)
	return ledger, nil
}

// mergedBadges overlays the user's earned dates on the catalog definitions.
func (s *EngagementService) mergedBadges(ctx context.Context, userID uuid.UUID) ([]badge.Badge, error) {
	earned, err := s.progress.GetEarnedBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges := s.catalog.Badges()
	for i := range badges {
		if at, ok := earned[badges[i].ID]; ok {
			at := at
			badges[i].EarnedDate = &at
		}
	}
	return badges, nil
}

func (s *EngagementService) evaluate(ctx context.Context, userID uuid.UUID, ledger gamification.PointsLedger, streaks []gamification.StreakCounter, now time.Time) ([]badge.Badge, []badge.Badge, badge.Stats, error) {
	counts, err := s.progress.GetCounts(ctx, userID, s.loc)
	if err != nil {
		return nil, nil, badge.Stats{}, err
	}
	badges, err := s.mergedBadges(ctx, userID)
	if err != nil {
		return nil, nil, badge.Stats{}, err
	}

	stats := engine.BuildStats(counts, streaks, ledger, now)
	updated, newly := engine.EvaluateBadges(badges, stats, now)
	if len(newly) == 0 {
		return updated, nil, stats, nil
	}

	if err := s.progress.SaveEarnedBadges(ctx, userID, newly); err != nil {
		return nil, nil, stats, err
	}
	for _, b := range newly {
		metrics.BadgesEarned.WithLabelValues(string(b.Rarity)).Inc()
		s.log.Info("badge earned", "user_id", userID.String(), "badge_id", b.ID)
	}
	if s.notifier != nil {
		s.notifier.NotifyBadgesEarned(ctx, userID, newly)
	}
	return updated, newly, stats, nil
}

// EvaluateBadges re-checks every badge against the user's current numbers.
func (s *EngagementService) EvaluateBadges(ctx context.Context, userID uuid.UUID) (*badge.EvaluationResponse, error) {
	now := s.today()
	ledger, err := s.currentLedger(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	streaks, err := s.progress.GetStreaks(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated, newly, stats, err := s.evaluate(ctx, userID, ledger, streaks, now)
	if err != nil {
		return nil, err
	}
	if newly == nil {
		newly = []badge.Badge{}
	}
	return &badge.EvaluationResponse{NewlyEarned: newly, Badges: updated, Stats: stats}, nil
}

func (s *EngagementService) Badges(ctx context.Context, userID uuid.UUID) ([]badge.Badge, error) {
	return s.mergedBadges(ctx, userID)
}

// SuggestDifficulty falls back to beginner, flagged degraded, when history
// cannot be read. Ids outside the catalog are graded like any other, since
// ingestion stores their sessions too.
func (s *EngagementService) SuggestDifficulty(ctx context.Context, userID uuid.UUID, exerciseID string) (*engagement.DifficultySuggestion, error) {
	suggestion := &engagement.DifficultySuggestion{ExerciseID: exerciseID}
	history, err := s.activities.ListActivities(ctx, userID, activity.Filter{ExerciseID: exerciseID}, MaxHistory)
	if err != nil {
		s.log.Warn("difficulty degraded to default", "user_id", userID.String(), "exercise_id", exerciseID, "error", err)
		metrics.DegradedResponses.WithLabelValues("difficulty").Inc()
		suggestion.Difficulty = activity.DifficultyBeginner
		suggestion.Degraded = true
		return suggestion, nil
	}

	suggestion.Difficulty = engine.SuggestDifficulty(exerciseID, history)
	return suggestion, nil
}

// Recommend returns k exercises with a suggested difficulty for each. A
// failed history read yields the cold-start list.
func (s *EngagementService) Recommend(ctx context.Context, userID uuid.UUID, k int) (*engagement.RecommendationList, error) {
	if k <= 0 {
		k = engine.DefaultRecommendationCount
	}

	list := &engagement.RecommendationList{}
	history, err := s.activities.ListActivities(ctx, userID, activity.Filter{}, MaxHistory)
	if err != nil {
		s.log.Warn("recommendations degraded to cold start", "user_id", userID.String(), "error", err)
		metrics.DegradedResponses.WithLabelValues("recommendations").Inc()
		history = nil
		list.Degraded = true
	}

	ids := engine.Recommend(history, s.catalog, k)
	list.Recommendations = make([]engagement.Recommendation, 0, len(ids))
	for _, id := range ids {
		meta, ok := s.catalog.Lookup(id)
		if !ok {
			continue
		}
		list.Recommendations = append(list.Recommendations, engagement.Recommendation{
			Exercise:   meta,
			Difficulty: engine.SuggestDifficulty(id, history),
		})
	}
	return list, nil
}

func (s *EngagementService) Activities(ctx context.Context, userID uuid.UUID, filter activity.Filter, limit int) ([]activity.Session, error) {
	return s.activities.ListActivities(ctx, userID, filter, limit)
}

func (s *EngagementService) Ledger(ctx context.Context, userID uuid.UUID) (*engagement.LedgerView, error) {
	ledger, err := s.currentLedger(ctx, userID, s.today())
	if err != nil {
		return nil, err
	}
	return &engagement.LedgerView{
		PointsLedger:      ledger,
		PointsToNextLevel: engine.PointsToNextLevel(ledger),
		MaxLevel:          len(engine.LevelThresholds),
	}, nil
}

// Streaks reports every streak type, including ones never started.
func (s *EngagementService) Streaks(ctx context.Context, userID uuid.UUID) ([]engagement.StreakView, error) {
	stored, err := s.progress.GetStreaks(ctx, userID)
	if err != nil {
		return nil, err
	}
	byType := make(map[gamification.StreakType]gamification.StreakCounter, len(stored))
	for _, c := range stored {
		byType[c.Type] = c
	}

	today := s.today()
	views := make([]engagement.StreakView, 0, len(gamification.StreakTypes))
	for _, t := range gamification.StreakTypes {
		c := byType[t]
		view := engagement.StreakView{
			Type:             t,
			Current:          engine.CurrentLength(c, today),
			Longest:          c.LongestStreak,
			LastActivityDate: c.LastActivityDate,
		}
		if c.LastActivityDate != nil {
			view.ActiveToday = engine.DaysBetween(*c.LastActivityDate, engine.CalendarDay(today)) == 0
		}
		views = append(views, view)
	}
	return views, nil
}

// Summary builds the dashboard over the last days days.
func (s *EngagementService) Summary(ctx context.Context, userID uuid.UUID, days int) (*progress.Summary, error) {
	if days <= 0 {
		days = DefaultSummaryDays
	}
	if days > MaxSummaryDays {
		days = MaxSummaryDays
	}
	now := s.today()
	since := engine.CalendarDay(now).AddDate(0, 0, -(days - 1))

	history, err := s.activities.ListActivities(ctx, userID, activity.Filter{}, MaxHistory)
	if err != nil {
		return nil, err
	}
	recent := history[:0:0]
	for _, h := range history {
		if !h.Timestamp.Before(since) {
			recent = append(recent, h)
		}
	}

	moods, err := s.progress.ListMoodEntries(ctx, userID, since, MaxHistory)
	if err != nil {
		return nil, err
	}
	health, err := s.progress.ListHealthMetrics(ctx, userID, engine.HealthMaxRecords)
	if err != nil {
		return nil, err
	}
	journals, err := s.progress.ListJournalEntries(ctx, userID, since, MaxHistory)
	if err != nil {
		return nil, err
	}
	goals, err := s.progress.ListGoals(ctx, userID, since, MaxHistory)
	if err != nil {
		return nil, err
	}

	completedGoals := 0
	for _, g := range goals {
		if g.Completed {
			completedGoals++
		}
	}

	return &progress.Summary{
		Exercises:          engine.SummarizeExercises(recent),
		Mood:               engine.MoodTrend(moods),
		NegativeTriggers:   engine.ImpactTable(engine.TagObservations(moods, engine.ByTrigger), engine.Ascending),
		PositiveActivities: engine.ImpactTable(engine.TagObservations(moods, engine.ByActivity), engine.Descending),
		Emotions:           engine.ImpactTable(engine.TagObservations(moods, engine.ByEmotion), engine.Descending),
		Health:             engine.RollingAverages(health, engine.HealthWindow),
		StableMoodDays:     engine.StableMoodDays(moods, s.loc),
		JournalEntries:     len(journals),
		GoalsCompleted:     completedGoals,
	}, nil
}
