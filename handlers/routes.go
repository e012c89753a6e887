package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the authenticated API on r, which should already
// carry the auth middleware.
func RegisterRoutes(r *mux.Router, activities *ActivityHandler, progress *ProgressHandler, devices *DeviceHandler) {
	r.HandleFunc("/activities", activities.CreateActivity).Methods(http.MethodPost)
	r.HandleFunc("/activities", activities.ListActivities).Methods(http.MethodGet)
	r.HandleFunc("/exercises", activities.ListExercises).Methods(http.MethodGet)
	r.HandleFunc("/exercises/{exerciseId}/difficulty", activities.GetDifficulty).Methods(http.MethodGet)
	r.HandleFunc("/recommendations", activities.GetRecommendations).Methods(http.MethodGet)

	r.HandleFunc("/events", progress.RecordEvent).Methods(http.MethodPost)
	r.HandleFunc("/progress/ledger", progress.GetLedger).Methods(http.MethodGet)
	r.HandleFunc("/progress/streaks", progress.GetStreaks).Methods(http.MethodGet)
	r.HandleFunc("/progress/summary", progress.GetSummary).Methods(http.MethodGet)
	r.HandleFunc("/badges", progress.GetBadges).Methods(http.MethodGet)
	r.HandleFunc("/badges/evaluate", progress.EvaluateBadges).Methods(http.MethodPost)

	r.HandleFunc("/devices", devices.RegisterDevice).Methods(http.MethodPost)
}
