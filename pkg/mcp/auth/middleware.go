// Package mcpauth provides MCP-specific authentication middleware.
// It wraps the core token verifier with RFC 6750 Bearer token error
// responses so MCP clients can drive their OAuth flows from the headers.
package mcpauth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/auth"
)

// Middleware authenticates MCP transport requests. Unlike the general auth
// middleware, failures carry RFC 6750 WWW-Authenticate headers.
type Middleware struct {
	verifier *auth.Verifier
	logger   *zap.Logger
}

// NewMiddleware creates a new MCP auth middleware.
func NewMiddleware(verifier *auth.Verifier, logger *zap.Logger) *Middleware {
	return &Middleware{
		verifier: verifier,
		logger:   logger.Named("mcp-auth"),
	}
}

// RequireAuth validates the bearer token and requires an agency claim.
// Tools read the agency from the verified claims in the request context;
// tool arguments never carry tenant identity.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			m.logger.Debug("MCP auth failed: missing bearer token",
				zap.String("path", r.URL.Path))
			m.writeWWWAuthenticate(w, http.StatusUnauthorized, "invalid_token", "The access token is missing")
			return
		}

		claims, err := m.verifier.VerifyToken(tokenString)
		if err != nil {
			m.logger.Debug("MCP auth failed: invalid or expired token",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			m.writeWWWAuthenticate(w, http.StatusUnauthorized, "invalid_token", "The access token is invalid or expired")
			return
		}

		ctx := auth.SetClaims(r.Context(), claims)
		if _, err := auth.AgencyIDFromContext(ctx); err != nil {
			m.logger.Debug("MCP auth failed: missing agency claim",
				zap.String("path", r.URL.Path))
			m.writeWWWAuthenticate(w, http.StatusUnauthorized, "invalid_token", "The access token is missing required agency scope")
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeWWWAuthenticate writes an RFC 6750 Bearer token error response.
// See: https://datatracker.ietf.org/doc/html/rfc6750#section-3
func (m *Middleware) writeWWWAuthenticate(w http.ResponseWriter, status int, errorCode, description string) {
	headerValue := `Bearer error="` + errorCode + `", error_description="` + description + `"`
	w.Header().Set("WWW-Authenticate", headerValue)
	w.WriteHeader(status)
}
