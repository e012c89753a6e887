package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"mindStepsAPI/internal/notification"
)

var ErrInvalidDevice = errors.New("invalid device registration")

var supportedPlatforms = map[string]bool{
	"android": true,
	"ios":     true,
	"web":     true,
}

// NotificationService owns the device tokens pushes are delivered to.
type NotificationService struct {
	db *pgxpool.Pool
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID uuid.UUID, req notification.RegisterDeviceRequest) (*notification.DeviceToken, error) {
	device, err := normalizeDevice(userID, req)
	if err != nil {
		return nil, err
	}

	query := `
	INSERT INTO device_tokens (user_id, token, platform, updated_at)
	VALUES ($1, $2, $3, NOW())
	ON CONFLICT (user_id, token)
	DO UPDATE SET platform = EXCLUDED.platform, updated_at = NOW()
	RETURNING updated_at
	`
	if err := s.db.QueryRow(ctx, query, device.UserID, device.Token, device.Platform).Scan(&device.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}
	return &device, nil
}

func (s *NotificationService) DeviceTokens(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	query := `
	SELECT user_id, token, platform, updated_at
	FROM device_tokens
	WHERE user_id = $1
	ORDER BY updated_at DESC
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	tokens := []notification.DeviceToken{}
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.UserID, &t.Token, &t.Platform, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// PruneStaleDevices removes tokens that have not been refreshed since before.
func (s *NotificationService) PruneStaleDevices(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM device_tokens WHERE updated_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune device tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func normalizeDevice(userID uuid.UUID, req notification.RegisterDeviceRequest) (notification.DeviceToken, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return notification.DeviceToken{}, fmt.Errorf("%w: token is required", ErrInvalidDevice)
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform == "" {
		platform = "android"
	}
	if !supportedPlatforms[platform] {
		return notification.DeviceToken{}, fmt.Errorf("%w: unsupported platform %q", ErrInvalidDevice, req.Platform)
	}
	return notification.DeviceToken{UserID: userID, Token: token, Platform: platform}, nil
}
