package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	svix "github.com/svix/svix-webhooks/go"

	"mindStepsAPI/internal/logger"
)

const maxWebhookBody = 1 << 20

type AccountLifecycle interface {
	ResolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) error
}

type clerkWebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WebhookHandler receives Clerk user lifecycle events. Deleting a Clerk user
// removes every record the engine holds for them.
type WebhookHandler struct {
	users   AccountLifecycle
	webhook *svix.Webhook
	log     *logger.Logger
}

// NewWebhookHandler takes the Svix signing secret as shown in the Clerk
// dashboard, with or without the whsec_ prefix.
func NewWebhookHandler(users AccountLifecycle, signingSecret string, log *logger.Logger) (*WebhookHandler, error) {
	wh, err := svix.NewWebhook(signingSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook signing secret: %w", err)
	}
	return &WebhookHandler{users: users, webhook: wh, log: log}, nil
}

func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}

	if err := h.webhook.Verify(body, r.Header); err != nil {
		h.log.Warn("rejected webhook", "error", err)
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event clerkWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	var userData struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data, &userData); err != nil || userData.ID == "" {
		h.log.Debug("ignoring webhook without user id", "type", event.Type)
		respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	switch event.Type {
	case "user.created":
		if _, err := h.users.ResolveUserID(ctx, userData.ID); err != nil {
			h.log.Error("failed to provision user", "clerk_id", userData.ID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Error processing webhook")
			return
		}
	case "user.deleted":
		if err := h.users.DeleteUserByClerkID(ctx, userData.ID); err != nil {
			h.log.Error("failed to delete user", "clerk_id", userData.ID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Error processing webhook")
			return
		}
		h.log.Info("deleted user data", "clerk_id", userData.ID)
	default:
		h.log.Debug("unhandled webhook event", "type", event.Type)
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}
