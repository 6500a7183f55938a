package http

import (
	"errors"
	"log"
	"net/http"
	"time"

	"horizon/internal/domain/session"
	"horizon/internal/domain/user"
	"horizon/internal/infrastructure/payments"
	"horizon/internal/shared/auth"
	"horizon/internal/shared/middleware"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	users      user.Repository
	sessions   session.Store
	payments   payments.ClientInterface
	sessionTTL time.Duration
}

func NewAuthHandler(userRepo user.Repository, sessionStore session.Store, paymentsClient payments.ClientInterface, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		users:      userRepo,
		sessions:   sessionStore,
		payments:   paymentsClient,
		sessionTTL: sessionTTL,
	}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates the payments-side customer first, then the user
// record, then a session. A payments failure aborts registration.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.users.GetByEmail(r.Context(), req.Email); err == nil {
		http.Error(w, "Email already registered", http.StatusConflict)
		return
	} else if !errors.Is(err, user.ErrNotFound) {
		log.Printf("Error checking existing user: %v", err)
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	customer, err := h.payments.CreateCustomer(r.Context(), payments.CustomerParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Type:      "personal",
	})
	if err != nil {
		log.Printf("Error creating payments customer: %v", err)
		http.Error(w, "Registration failed", http.StatusBadGateway)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	u, err := h.users.Create(r.Context(), user.CreateUserParams{
		Email:               req.Email,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		PasswordHash:        hash,
		PaymentsCustomerID:  customer.ID,
		PaymentsCustomerURL: customer.Location,
	})
	if err != nil {
		log.Printf("Error creating user: %v", err)
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	if err := h.startSession(w, r, u.ID); err != nil {
		log.Printf("Error creating session for user %d: %v", u.ID, err)
		http.Error(w, "Registration failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, u)
}

// HandleLogin verifies credentials and creates a session.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			log.Printf("Error fetching user by email: %v", err)
		}
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if err := h.startSession(w, r, u.ID); err != nil {
		log.Printf("Error creating session for user %d: %v", u.ID, err)
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// HandleLogout deletes the session and clears the cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			log.Printf("Error deleting session: %v", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	sess, err := session.New(userID, h.sessionTTL)
	if err != nil {
		return err
	}
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Secret,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
	return nil
}
