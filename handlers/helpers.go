package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"mindStepsAPI/internal/activity"
	"mindStepsAPI/internal/badge"
	"mindStepsAPI/internal/catalog"
	"mindStepsAPI/internal/engagement"
	"mindStepsAPI/internal/gamification"
	"mindStepsAPI/internal/progress"
	"mindStepsAPI/middleware"
)

// Engagement is the slice of services.EngagementService the handlers use.
type Engagement interface {
	Catalog() *catalog.Catalog
	CompleteSession(ctx context.Context, userID uuid.UUID, draft activity.Draft) (*engagement.SessionResult, error)
	Activities(ctx context.Context, userID uuid.UUID, filter activity.Filter, limit int) ([]activity.Session, error)
	SuggestDifficulty(ctx context.Context, userID uuid.UUID, exerciseID string) (*engagement.DifficultySuggestion, error)
	Recommend(ctx context.Context, userID uuid.UUID, k int) (*engagement.RecommendationList, error)
	RecordEvent(ctx context.Context, userID uuid.UUID, kind gamification.EventKind) (*gamification.EventResult, error)
	Ledger(ctx context.Context, userID uuid.UUID) (*engagement.LedgerView, error)
	Streaks(ctx context.Context, userID uuid.UUID) ([]engagement.StreakView, error)
	Summary(ctx context.Context, userID uuid.UUID, days int) (*progress.Summary, error)
	Badges(ctx context.Context, userID uuid.UUID) ([]badge.Badge, error)
	EvaluateBadges(ctx context.Context, userID uuid.UUID) (*badge.EvaluationResponse, error)
}

func currentUser(ctx context.Context, w http.ResponseWriter) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
