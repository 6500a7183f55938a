package middleware

import (
	"context"
	"net/http"
	"strings"

	"horizon/internal/domain/session"
)

type ContextKey string

const (
	UserIDKey ContextKey = "user_id"
)

// SessionCookieName is the cookie carrying the opaque session secret, the
// only artifact this service hands to client storage.
const SessionCookieName = "horizon_session"

// Auth resolves the session secret from the cookie (browser clients) or the
// Authorization header (API clients) and puts the user id on the request
// context. Requests without a live session get a plain 401; there is no
// fallback user.
func Auth(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var secret string

			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				secret = cookie.Value
			} else {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					http.Error(w, "Authentication required", http.StatusUnauthorized)
					return
				}
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || parts[0] != "Bearer" {
					http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
					return
				}
				secret = parts[1]
			}

			sess, err := store.Get(r.Context(), secret)
			if err != nil {
				http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, sess.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
