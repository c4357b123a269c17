// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"context"
	"net/http"

	"github.com/koonliang/stocktracker/internal/api/response"
	"github.com/koonliang/stocktracker/internal/validation"
)

type contextKey string

const userIDKey contextKey = "userID"

// RequireUser extracts the authenticated user's ID from the X-User-ID header
// and stores it on the request context. Authentication itself happens
// upstream (a gateway or reverse proxy); this middleware only enforces that
// the identity header is present and well formed.
//
// Returns 401 Unauthorized if the header is missing, 400 Bad Request if it
// is not a valid UUID.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")

		if userID == "" {
			response.RespondError(w, http.StatusUnauthorized, "user identity required", "")
			return
		}

		if err := validation.ValidateUUID(userID); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid user ID format", err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user's ID stored by RequireUser, or the
// empty string when the middleware did not run.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
