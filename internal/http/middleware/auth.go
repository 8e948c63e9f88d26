package middleware

import (
	"net/http"
	"strings"

	"github.com/rezkam/bulkscroll/internal/auth"
	"github.com/rezkam/bulkscroll/internal/http/response"
)

// Auth is HTTP middleware for API key authentication, gating the same
// StartRun/CancelRun surface internal/auth.Authenticator.Authorize gates
// over gRPC.
type Auth struct {
	authenticator *auth.Authenticator
}

// NewAuth creates a new auth middleware.
func NewAuth(authenticator *auth.Authenticator) *Auth {
	return &Auth{authenticator: authenticator}
}

// Validate is a Chi middleware that validates API keys from the
// Authorization header. Expects "Authorization: Bearer <api-key>".
func (a *Auth) Validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing Authorization header")
			return
		}

		apiKey, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || apiKey == "" {
			response.Unauthorized(w, "invalid Authorization header format, expected: Bearer <token>")
			return
		}

		if err := a.authenticator.ValidateAPIKey(r.Context(), apiKey); err != nil {
			response.Unauthorized(w, "invalid or missing API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
