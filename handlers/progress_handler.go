package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"mindStepsAPI/engine"
	"mindStepsAPI/internal/gamification"
	"mindStepsAPI/internal/logger"
)

type ProgressHandler struct {
	engagement Engagement
	log        *logger.Logger
}

func NewProgressHandler(engagement Engagement, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{
		engagement: engagement,
		log:        log,
	}
}

func (h *ProgressHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w)
	if !ok {
		return
	}

	var req gamification.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// Streak bonuses are derived when a streak advances.
	if req.Kind == gamification.EventDailyStreak || req.Kind == gamification.EventWeeklyStreak {
		respondWithError(w, http.StatusBadRequest, "Streak bonuses cannot be reported")
		return
	}

	result, err := h.engagement.RecordEvent(ctx, userID, req.Kind)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownEventKind) {
			respondWithError(w, http.StatusBadRequest, "Unknown event kind")
			return
		}
		h.log.Error("failed to record event", "user_id", userID.String(), "kind", string(req.Kind), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to record event")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ProgressHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w)
	if !ok {
		return
	}

	ledger, err := h.engagement.Ledger(ctx, userID)
	if err != nil {
		h.log.Error("failed to load ledger", "user_id", userID.String(), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load points")
		return
	}

	respondWithJSON(w, http.StatusOK, ledger)
}

func (h *ProgressHandler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w)
	if !ok {
		return
	}

	streaks, err := h.engagement.Streaks(ctx, userID)
	if err != nil {
		h.log.Error("failed to load streaks", "user_id", userID.String(), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load streaks")
		return
	}

	respondWithJSON(w, http.StatusOK, streaks)
}

func (h *ProgressHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w)
	if !ok {
		return
	}

	days, err := queryInt(r, "days", 0)
	if err != nil || days < 0 {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'days' must be a positive integer")
		return
	}

	summary, err := h.engagement.Summary(ctx, userID, days)
	if err != nil {
		h.log.Error("failed to build summary", "user_id", userID.String(), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to build progress summary")
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

func (h *ProgressHandler) GetBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w)
	if !ok {
		return
	}

	badges, err := h.engagement.Badges(ctx, userID)
	if err != nil {
		h.log.Error("failed to load badges", "user_id", userID.String(), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load badges")
		return
	}

	respondWithJSON(w, http.StatusOK, badges)
}

func (h *ProgressHandler) EvaluateBadges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w)
	if !ok {
		return
	}

	result, err := h.engagement.EvaluateBadges(ctx, userID)
	if err != nil {
		h.log.Error("failed to evaluate badges", "user_id", userID.String(), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to evaluate badges")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
