package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindStepsAPI/internal/activity"
)

// MaxHistory caps every history read.
const MaxHistory = 100

type ActivityService struct {
	db *pgxpool.Pool
}

func NewActivityService(db *pgxpool.Pool) *ActivityService {
	return &ActivityService{db: db}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxHistory {
		return MaxHistory
	}
	return limit
}

// ListActivities returns the user's sessions newest first.
func (s *ActivityService) ListActivities(ctx context.Context, userID uuid.UUID, filter activity.Filter, limit int) ([]activity.Session, error) {
	conds := []string{"user_id = $1"}
	args := []any{userID}

	if filter.ExerciseID != "" {
		args = append(args, filter.ExerciseID)
		conds = append(conds, fmt.Sprintf("exercise_id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	args = append(args, clampLimit(limit))

	query := fmt.Sprintf(`
	SELECT id, user_id, exercise_id, category, skill_focus, completed,
		duration_seconds, difficulty_level, success_rate, attempts, created_at
	FROM activity_sessions
	WHERE %s
	ORDER BY created_at DESC
	LIMIT $%d
	`, strings.Join(conds, " AND "), len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	defer rows.Close()

	var sessions []activity.Session
	for rows.Next() {
		var sess activity.Session
		err := rows.Scan(
			&sess.ID,
			&sess.UserID,
			&sess.ExerciseID,
			&sess.Category,
			&sess.SkillFocus,
			&sess.Completed,
			&sess.DurationSeconds,
			&sess.DifficultyLevel,
			&sess.SuccessRate,
			&sess.Attempts,
			&sess.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}

	return sessions, nil
}

// CreateActivity appends a session. Sessions are never updated afterwards.
func (s *ActivityService) CreateActivity(ctx context.Context, session activity.Session) (*activity.Session, error) {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	query := `
	INSERT INTO activity_sessions (
		id, user_id, exercise_id, category, skill_focus, completed,
		duration_seconds, difficulty_level, success_rate, attempts, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id, created_at
	`

	err := s.db.QueryRow(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.ExerciseID,
		string(session.Category),
		string(session.SkillFocus),
		session.Completed,
		session.DurationSeconds,
		string(session.DifficultyLevel),
		session.SuccessRate,
		session.Attempts,
		session.Timestamp,
	).Scan(&session.ID, &session.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	return &session, nil
}
