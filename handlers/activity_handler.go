package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"mindStepsAPI/engine"
	"mindStepsAPI/internal/activity"
	"mindStepsAPI/internal/logger"
)

type ActivityHandler struct {
	engagement Engagement
	log        *logger.Logger
}

func NewActivityHandler(engagement Engagement, log *logger.Logger) *ActivityHandler {
	return &ActivityHandler{
		engagement: engagement,
		log:        log,
	}
}

func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w)
	if !ok {
		return
	}

	var draft activity.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.engagement.CompleteSession(ctx, userID, draft)
	if err != nil {
		h.log.Error("failed to record session", "user_id", userID.String(), "exercise_id", draft.ExerciseID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to record session")
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w)
	if !ok {
		return
	}

	filter := activity.Filter{
		ExerciseID: r.URL.Query().Get("exercise_id"),
		Category:   activity.Category(r.URL.Query().Get("category")),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		respondWithError(w, http.StatusBadRequest, "Unknown category")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'limit' must be an integer")
		return
	}

	sessions, err := h.engagement.Activities(ctx, userID, filter, limit)
	if err != nil {
		h.log.Error("failed to list sessions", "user_id", userID.String(), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load sessions")
		return
	}
	if sessions == nil {
		sessions = []activity.Session{}
	}

	respondWithJSON(w, http.StatusOK, sessions)
}

func (h *ActivityHandler) ListExercises(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.engagement.Catalog().Exercises())
}

func (h *ActivityHandler) GetDifficulty(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w)
	if !ok {
		return
	}

	exerciseID := mux.Vars(r)["exerciseId"]
	suggestion, err := h.engagement.SuggestDifficulty(ctx, userID, exerciseID)
	if err != nil {
		h.log.Error("failed to suggest difficulty", "user_id", userID.String(), "exercise_id", exerciseID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to suggest difficulty")
		return
	}

	respondWithJSON(w, http.StatusOK, suggestion)
}

func (h *ActivityHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w)
	if !ok {
		return
	}

	k, err := queryInt(r, "k", engine.DefaultRecommendationCount)
	if err != nil || k < 1 || k > h.engagement.Catalog().Len() {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'k' is out of range")
		return
	}

	list, err := h.engagement.Recommend(ctx, userID, k)
	if err != nil {
		h.log.Error("failed to recommend", "user_id", userID.String(), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to build recommendations")
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}
