package http

import (
	"errors"
	"log"
	"net/http"

	"horizon/internal/domain/user"
)

// UserHandler serves the authenticated user's own record.
type UserHandler struct {
	users user.Repository
}

func NewUserHandler(userRepo user.Repository) *UserHandler {
	return &UserHandler{users: userRepo}
}

// HandleMe returns the caller's user record.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		log.Printf("Error loading user %d: %v", userID, err)
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, u)
}
