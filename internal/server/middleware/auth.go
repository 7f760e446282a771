// Package middleware provides HTTP middleware for admin authentication.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// RequireAPIKey creates middleware that gates a route behind a static admin
// API key. The key is presented as a Bearer token in the Authorization
// header. An empty expected key disables the route entirely: administrative
// endpoints are opt-in and deployments without a key configured must not
// expose them.
func RequireAPIKey(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				http.Error(w, "Admin API disabled", http.StatusForbidden)
				return
			}

			presented, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the Bearer token from the Authorization header.
// Handles case-insensitive "Bearer" prefix.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
