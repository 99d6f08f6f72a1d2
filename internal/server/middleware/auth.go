// Package middleware holds HTTP middleware shared across the API surface.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const userIDKey contextKey = "userID"

// UserIDGetter exposes the authenticated user's ID from validated claims.
type UserIDGetter interface {
	GetUserID() uuid.UUID
}

// TokenValidator checks a bearer token and returns its claims. Keeping this
// an interface lets the middleware stay ignorant of the signing scheme.
type TokenValidator interface {
	ValidateToken(tokenString string) (UserIDGetter, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the authenticated user ID on the request context for handlers downstream.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.GetUserID())))
		})
	}
}

// bearerToken extracts the token from the Authorization header. The scheme
// name is matched case-insensitively.
func bearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// WithUserID returns a context carrying the authenticated user ID. Exposed
// so handler tests can run without minting real tokens.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID reads the authenticated user ID placed on the context by
// AuthMiddleware.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("no authenticated user on request context")
	}
	return userID, nil
}
