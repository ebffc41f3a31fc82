package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/matchpointhq/matchpoint-api/internal/identity"
)

// SessionChecker reports whether a request carries a verified session.
type SessionChecker func(r *http.Request) bool

// sessionVerifier is the slice of the identity client the gate needs.
type sessionVerifier interface {
	UserFromToken(ctx context.Context, token string) (identity.User, error)
}

// CookieSession returns a checker that verifies the named session cookie
// (or an Authorization bearer header) against the identity provider.
func CookieSession(cookieName string, verifier sessionVerifier) SessionChecker {
	return func(r *http.Request) bool {
		token := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		if token == "" {
			if c, err := r.Cookie(cookieName); err == nil {
				token = c.Value
			}
		}
		if token == "" {
			return false
		}
		user, err := verifier.UserFromToken(r.Context(), token)
		return err == nil && user.ID != ""
	}
}

// SessionGate protects the client shell's page prefixes. Unauthenticated
// access to a protected prefix redirects to the login path with the
// original path in redirectTo; an authenticated session is redirected off
// the login path.
func SessionGate(protectedPrefixes []string, loginPath string, hasSession SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if path == loginPath || strings.HasPrefix(path, loginPath+"/") {
				if hasSession(r) {
					http.Redirect(w, r, "/", http.StatusSeeOther)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			for _, prefix := range protectedPrefixes {
				if path == prefix || strings.HasPrefix(path, prefix+"/") {
					if !hasSession(r) {
						dest := loginPath + "?redirectTo=" + url.QueryEscape(r.URL.RequestURI())
						http.Redirect(w, r, dest, http.StatusSeeOther)
						return
					}
					break
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
