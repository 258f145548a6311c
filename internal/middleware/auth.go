package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/stillwater/lodge/internal/identity"
	"github.com/stillwater/lodge/internal/response"
)

// APIKeyHeader carries the shared upload secret.
const APIKeyHeader = "x-api-key"

// RequireSession returns middleware that verifies a Bearer token with v and
// injects the resulting session into the request context.
func RequireSession(v identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Unauthorized(w, "invalid authorization header format")
				return
			}

			s, err := v.VerifyCredentials(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				response.Unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithSession(r.Context(), s)))
		})
	}
}

// RequireAPIKey returns middleware that compares the x-api-key header with
// key in constant time. An empty key disables the check.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if key == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				response.Unauthorized(w, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
