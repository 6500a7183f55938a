// Package http contains the HTTP handlers for the API surface.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"horizon/internal/shared/middleware"
)

var validate = validator.New()

// userIDFrom pulls the authenticated user id placed on the context by the
// auth middleware. The second return is false when the route was mounted
// without it.
func userIDFrom(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value(middleware.UserIDKey).(int64)
	return id, ok
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// decodeAndValidate decodes the request body into payload and validates its
// struct tags. On failure it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, payload any) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}

	if err := validate.Struct(payload); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		http.Error(w, validationErrors.Error(), http.StatusBadRequest)
		return false
	}

	return true
}
