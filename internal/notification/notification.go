package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"mindStepsAPI/internal/badge"
)

type DeviceToken struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	Platform  string    `json:"platform" db:"platform"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type Message struct {
	UserID uuid.UUID
	Title  string
	Body   string
	Data   map[string]string
}

func BadgeEarnedMessage(userID uuid.UUID, b badge.Badge) Message {
	return Message{
		UserID: userID,
		Title:  fmt.Sprintf("Badge unlocked: %s", b.Name),
		Body:   b.Description,
		Data: map[string]string{
			"type":     "badge_earned",
			"badge_id": b.ID,
			"rarity":   string(b.Rarity),
		},
	}
}
