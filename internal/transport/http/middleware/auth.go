package middleware

import (
	"context"
	"net/http"
	"strings"

	"habitboard/pkg/jwt"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "userID"

// AuthMiddleware validates bearer tokens locally against the shared
// signing secret.
type AuthMiddleware struct {
	tokens *jwt.TokenManager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens *jwt.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Auth validates the JWT from the Authorization header and injects the
// user ID into the request context.
func (m *AuthMiddleware) Auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserID extracts the authenticated user ID from the request context.
// Returns uuid.Nil when no identity is present.
func GetUserID(r *http.Request) uuid.UUID {
	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}
