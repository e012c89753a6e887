package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mindStepsAPI/internal/logger"
	"mindStepsAPI/internal/notification"
	"mindStepsAPI/services"
)

type DeviceRegistrar interface {
	RegisterDevice(ctx context.Context, userID uuid.UUID, req notification.RegisterDeviceRequest) (*notification.DeviceToken, error)
}

type DeviceHandler struct {
	devices DeviceRegistrar
	log     *logger.Logger
}

func NewDeviceHandler(devices DeviceRegistrar, log *logger.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, log: log}
}

func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := currentUser(ctx, w)
	if !ok {
		return
	}

	var req notification.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	device, err := h.devices.RegisterDevice(ctx, userID, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDevice) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("failed to register device", "user_id", userID.String(), "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to register device")
		return
	}

	respondWithJSON(w, http.StatusOK, device)
}
