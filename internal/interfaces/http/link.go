package http

import (
	"log"
	"net/http"

	"horizon/internal/domain/bankaccount"
	"horizon/internal/domain/user"
)

// LinkHandler handles the account-linking flow.
type LinkHandler struct {
	links *bankaccount.LinkService
	users user.Repository
}

func NewLinkHandler(linkService *bankaccount.LinkService, userRepo user.Repository) *LinkHandler {
	return &LinkHandler{
		links: linkService,
		users: userRepo,
	}
}

type linkTokenResponse struct {
	LinkToken string `json:"linkToken"`
}

type ExchangeRequest struct {
	PublicToken string `json:"publicToken" validate:"required"`
}

// HandleCreateToken mints the short-lived token that starts the client-side
// link flow.
func (h *LinkHandler) HandleCreateToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	token, err := h.links.CreateLinkToken(r.Context(), u)
	if err != nil {
		log.Printf("Error creating link token for user %d: %v", u.ID, err)
		http.Error(w, "Failed to create link token", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, linkTokenResponse{LinkToken: token})
}

// HandleExchange completes the link flow for a public token handed back by
// the client.
func (h *LinkHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req ExchangeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	linked, err := h.links.ExchangePublicToken(r.Context(), u, req.PublicToken)
	if err != nil {
		log.Printf("Error exchanging public token for user %d: %v", u.ID, err)
		http.Error(w, "Failed to link account", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusCreated, linked)
}

func (h *LinkHandler) currentUser(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return nil, false
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading user %d: %v", userID, err)
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return nil, false
	}
	return u, true
}
