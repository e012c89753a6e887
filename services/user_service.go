package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// ResolveUserID maps a Clerk subject to the internal user id, creating the
// user row on first sight.
func (s *UserService) ResolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	query := `
	INSERT INTO users (clerk_id)
	VALUES ($1)
	ON CONFLICT (clerk_id) DO UPDATE SET clerk_id = EXCLUDED.clerk_id
	RETURNING id
	`
	if err := s.db.QueryRow(ctx, query, clerkID).Scan(&userID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return userID, nil
}

// DeleteUserByClerkID removes the user. Every per-user table cascades.
func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
