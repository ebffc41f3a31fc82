package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/matchpointhq/matchpoint-api/internal/api/respond"
	"github.com/matchpointhq/matchpoint-api/internal/club"
	"github.com/matchpointhq/matchpoint-api/internal/config"
	"github.com/matchpointhq/matchpoint-api/internal/identity"
)

// TokenVerifier exchanges a bearer token for a verified user. Implemented
// by identity.Client; tests substitute fakes.
type TokenVerifier interface {
	UserFromToken(ctx context.Context, token string) (identity.User, error)
}

// RoleStore looks up the stored role for a verified user id.
type RoleStore interface {
	ApplicationRole(ctx context.Context, id string) (string, error)
}

type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeyToken
)

// UserID returns the verified caller's id placed by Authenticator, or ""
// on unauthenticated routes.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}

// BearerToken returns the caller's raw bearer token. The delete-match
// fallback path re-presents it to the data API.
func BearerToken(ctx context.Context) string {
	t, _ := ctx.Value(ctxKeyToken).(string)
	return t
}

// bearerFrom extracts the token from an Authorization header.
func bearerFrom(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// Authenticator verifies the bearer token against the identity provider
// and stores the verified user id and raw token in the request context.
// One provider round trip per request; no retries, no token caching.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerFrom(r)
			if token == "" {
				respond.WriteError(w, http.StatusUnauthorized, respond.CodeUnauthenticated, "Missing authorization token")
				return
			}

			user, err := verifier.UserFromToken(r.Context(), token)
			if err != nil || user.ID == "" {
				respond.WriteError(w, http.StatusUnauthorized, respond.CodeUnauthenticated, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUserID, user.ID)
			ctx = context.WithValue(ctx, ctxKeyToken, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers whose stored role is not admin. Must be
// mounted after Authenticator.
func RequireAdmin(roles RoleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := roles.ApplicationRole(r.Context(), UserID(r.Context()))
			if err != nil && !errors.Is(err, club.ErrNotFound) {
				respond.WriteError(w, http.StatusInternalServerError, respond.CodeInternal, "Failed to verify role")
				return
			}
			if role != config.RoleAdmin {
				respond.WriteError(w, http.StatusForbidden, respond.CodeForbidden, "Admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
