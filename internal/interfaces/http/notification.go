package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"flowfunds/internal/domain/notification"
	"flowfunds/internal/shared/logger"
	"flowfunds/internal/shared/middleware"
)

// NotificationHandler handles push device registration
type NotificationHandler struct {
	notificationService *notification.Service
	logger              *zap.Logger
}

func NewNotificationHandler(notificationService *notification.Service, l *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: l}
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type DeviceResponse struct {
	ID       string `json:"id"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
	Active   bool   `json:"active"`
}

// HandleRegisterDevice registers (or re-assigns) an FCM token to the caller
func (h *NotificationHandler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req RegisterDeviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	device, err := h.notificationService.RegisterDevice(r.Context(), notification.RegisterDeviceParams{
		UserID:   userID,
		Token:    req.Token,
		Platform: req.Platform,
	})
	if err != nil {
		if errors.Is(err, notification.ErrInvalidToken) || errors.Is(err, notification.ErrInvalidPlatform) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.WithTrace(r.Context(), h.logger).Error("failed to register device",
			zap.Int64("user_id", userID), zap.Error(err))
		http.Error(w, "Failed to register device", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, DeviceResponse{
		ID:       device.ID,
		Token:    device.Token,
		Platform: device.Platform,
		Active:   device.Active,
	})
}
