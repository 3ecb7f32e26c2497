package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gosuda/scrawl/internal/auth"
)

// Auth authenticates requests with a Bearer access token and injects the
// user ID into the request context.
func Auth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := extractBearer(r); tok != "" {
				if userID, err := auth.VerifyAccess(jwtSecret, tok); err == nil {
					ctx := context.WithValue(r.Context(), ContextKeyUserID, userID)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid credentials"}`, http.StatusUnauthorized)
		})
	}
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return header[7:]
	}
	return ""
}
