package http

import (
	"context"
	"log"
	"net/http"
)

// DeviceTokenRegistrar registers push notification tokens for a user.
type DeviceTokenRegistrar interface {
	Register(ctx context.Context, userID int64, token string) error
}

// NotificationHandler handles push notification device registration.
type NotificationHandler struct {
	tokens DeviceTokenRegistrar
}

func NewNotificationHandler(tokens DeviceTokenRegistrar) *NotificationHandler {
	return &NotificationHandler{tokens: tokens}
}

type RegisterDeviceRequest struct {
	Token string `json:"token" validate:"required"`
}

// HandleRegisterDevice registers a device token for the caller.
func (h *NotificationHandler) HandleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req RegisterDeviceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.tokens.Register(r.Context(), userID, req.Token); err != nil {
		log.Printf("Error registering device token for user %d: %v", userID, err)
		http.Error(w, "Failed to register device", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
