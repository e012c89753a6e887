package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindStepsAPI/internal/badge"
	"mindStepsAPI/internal/gamification"
	"mindStepsAPI/internal/progress"
)

// ProgressService persists gamification state and reads the mood, journal,
// goal and health records the dashboards are built from.
type ProgressService struct {
	db *pgxpool.Pool
}

func NewProgressService(db *pgxpool.Pool) *ProgressService {
	return &ProgressService{db: db}
}

func (s *ProgressService) GetLedger(ctx context.Context, userID uuid.UUID) (gamification.PointsLedger, error) {
	ledger := gamification.PointsLedger{UserID: userID, Level: 1}
	query := `
	SELECT total_points, weekly_points, level, updated_at
	FROM points_ledgers
	WHERE user_id = $1
	`
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&ledger.TotalPoints,
		&ledger.WeeklyPoints,
		&ledger.Level,
		&ledger.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger, nil
		}
		return ledger, fmt.Errorf("failed to get points ledger: %w", err)
	}
	return ledger, nil
}

func (s *ProgressService) SaveLedger(ctx context.Context, ledger gamification.PointsLedger) error {
	query := `
	INSERT INTO points_ledgers (user_id, total_points, weekly_points, level, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id)
	DO UPDATE SET
		total_points = $2,
		weekly_points = $3,
		level = $4,
		updated_at = $5
	`
	_, err := s.db.Exec(ctx, query, ledger.UserID, ledger.TotalPoints, ledger.WeeklyPoints, ledger.Level, ledger.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save points ledger: %w", err)
	}
	return nil
}

// ResetWeeklyPoints zeroes every user's weekly total.
func (s *ProgressService) ResetWeeklyPoints(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `UPDATE points_ledgers SET weekly_points = 0, updated_at = NOW() WHERE weekly_points <> 0`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset weekly points: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *ProgressService) GetStreaks(ctx context.Context, userID uuid.UUID) ([]gamification.StreakCounter, error) {
	query := `
	SELECT streak_type, current_streak, longest_streak, last_activity_date, updated_at
	FROM streaks
	WHERE user_id = $1
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch streaks: %w", err)
	}
	defer rows.Close()

	var streaks []gamification.StreakCounter
	for rows.Next() {
		counter := gamification.StreakCounter{UserID: userID}
		err := rows.Scan(
			&counter.Type,
			&counter.CurrentStreak,
			&counter.LongestStreak,
			&counter.LastActivityDate,
			&counter.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan streak: %w", err)
		}
		streaks = append(streaks, counter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read streaks: %w", err)
	}
	return streaks, nil
}

func (s *ProgressService) SaveStreak(ctx context.Context, counter gamification.StreakCounter) error {
	query := `
	INSERT INTO streaks (user_id, streak_type, current_streak, longest_streak, last_activity_date, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (user_id, streak_type)
	DO UPDATE SET
		current_streak = $3,
		longest_streak = $4,
		last_activity_date = $5,
		updated_at = $6
	`
	_, err := s.db.Exec(ctx, query,
		counter.UserID,
		string(counter.Type),
		counter.CurrentStreak,
		counter.LongestStreak,
		counter.LastActivityDate,
		counter.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s streak: %w", counter.Type, err)
	}
	return nil
}

// GetEarnedBadges maps badge id to the time it was earned.
func (s *ProgressService) GetEarnedBadges(ctx context.Context, userID uuid.UUID) (map[string]time.Time, error) {
	rows, err := s.db.Query(ctx, `SELECT badge_id, earned_at FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch badges: %w", err)
	}
	defer rows.Close()

	earned := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var at time.Time
		if err := rows.Scan(&id, &at); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		earned[id] = at
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read badges: %w", err)
	}
	return earned, nil
}

// SaveEarnedBadges records newly earned badges. An existing row always wins,
// so a badge's earned date never moves.
func (s *ProgressService) SaveEarnedBadges(ctx context.Context, userID uuid.UUID, badges []badge.Badge) error {
	if len(badges) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, b := range badges {
		if b.EarnedDate == nil {
			continue
		}
		batch.Queue(`
		INSERT INTO user_badges (user_id, badge_id, earned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, badge_id) DO NOTHING
		`, userID, b.ID, *b.EarnedDate)
	}

	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save badges: %w", err)
	}
	return nil
}

func (s *ProgressService) GetCounts(ctx context.Context, userID uuid.UUID, loc *time.Location) (progress.Counts, error) {
	if loc == nil {
		loc = time.UTC
	}

	query := `
	SELECT
		(SELECT COUNT(*) FROM mood_entries WHERE user_id = $1),
		(SELECT COUNT(*) FROM journal_entries WHERE user_id = $1),
		(SELECT COUNT(DISTINCT exercise_id) FROM activity_sessions WHERE user_id = $1),
		(SELECT COUNT(*) FROM activity_sessions WHERE user_id = $1 AND completed),
		(SELECT COUNT(*) FROM goals WHERE user_id = $1 AND completed),
		(SELECT COUNT(*) FROM (
			SELECT (created_at AT TIME ZONE $2)::date AS day
			FROM mood_entries
			WHERE user_id = $1
			GROUP BY day
			HAVING AVG(CASE mood
				WHEN 'very_low' THEN 1
				WHEN 'low' THEN 2
				WHEN 'neutral' THEN 3
				WHEN 'good' THEN 4
				WHEN 'excellent' THEN 5
			END) >= 3
		) stable_days)
	`

	var counts progress.Counts
	err := s.db.QueryRow(ctx, query, userID, loc.String()).Scan(
		&counts.MoodChecks,
		&counts.JournalEntries,
		&counts.ExercisesTried,
		&counts.ExercisesCompleted,
		&counts.GoalsCompleted,
		&counts.StableMoodDays,
	)
	if err != nil {
		return counts, fmt.Errorf("failed to get progress counts: %w", err)
	}
	return counts, nil
}

// ListMoodEntries returns entries created at or after since, newest first.
func (s *ProgressService) ListMoodEntries(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]progress.MoodEntry, error) {
	query := `
	SELECT id, user_id, mood, emotions, triggers, activities, created_at
	FROM mood_entries
	WHERE user_id = $1 AND created_at >= $2
	ORDER BY created_at DESC
	LIMIT $3
	`
	rows, err := s.db.Query(ctx, query, userID, since, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mood entries: %w", err)
	}
	defer rows.Close()

	var entries []progress.MoodEntry
	for rows.Next() {
		var e progress.MoodEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.Mood, &e.Emotions, &e.Triggers, &e.Activities, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mood entries: %w", err)
	}
	return entries, nil
}

func (s *ProgressService) ListHealthMetrics(ctx context.Context, userID uuid.UUID, limit int) ([]progress.HealthMetric, error) {
	query := `
	SELECT date, sleep_hours, steps, heart_rate
	FROM health_metrics
	WHERE user_id = $1
	ORDER BY date DESC
	LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch health metrics: %w", err)
	}
	defer rows.Close()

	var metrics []progress.HealthMetric
	for rows.Next() {
		var m progress.HealthMetric
		if err := rows.Scan(&m.Date, &m.SleepHours, &m.Steps, &m.HeartRate); err != nil {
			return nil, fmt.Errorf("failed to scan health metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read health metrics: %w", err)
	}
	return metrics, nil
}

func (s *ProgressService) ListJournalEntries(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]progress.JournalEntry, error) {
	query := `
	SELECT id, user_id, mood, word_count, created_at
	FROM journal_entries
	WHERE user_id = $1 AND created_at >= $2
	ORDER BY created_at DESC
	LIMIT $3
	`
	rows, err := s.db.Query(ctx, query, userID, since, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch journal entries: %w", err)
	}
	defer rows.Close()

	var entries []progress.JournalEntry
	for rows.Next() {
		var e progress.JournalEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Mood, &e.WordCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal entries: %w", err)
	}
	return entries, nil
}

// ListGoals returns open goals and goals completed at or after since.
func (s *ProgressService) ListGoals(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]progress.Goal, error) {
	query := `
	SELECT id, user_id, title, completed, completed_at, created_at
	FROM goals
	WHERE user_id = $1 AND (NOT completed OR completed_at >= $2)
	ORDER BY created_at DESC
	LIMIT $3
	`
	rows, err := s.db.Query(ctx, query, userID, since, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goals: %w", err)
	}
	defer rows.Close()

	var goals []progress.Goal
	for rows.Next() {
		var g progress.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Title, &g.Completed, &g.CompletedAt, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read goals: %w", err)
	}
	return goals, nil
}
