package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/vaxsched/vaccine-scheduler/internal/account"
	"github.com/vaxsched/vaccine-scheduler/internal/auth"
	"github.com/vaxsched/vaccine-scheduler/internal/booking"
)

type contextKey string

const sessionKey contextKey = "session"

// AuthMiddleware turns a valid bearer token into a per-request Session.
// Requests without one never reach the engine.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				writeError(w, http.StatusUnauthorized, "not_authenticated", "missing bearer token")
				return
			}
			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not_authenticated", "invalid token")
				return
			}
			role, _ := account.ParseRole(claims.Role)
			sess := booking.AuthenticatedSession(claims.Username, role)
			ctx := context.WithValue(r.Context(), sessionKey, &sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(ctx context.Context) *booking.Session {
	if sess, ok := ctx.Value(sessionKey).(*booking.Session); ok {
		return sess
	}
	return &booking.Session{}
}
