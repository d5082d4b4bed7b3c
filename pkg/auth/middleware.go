package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware authenticates requests and attaches claims to the context.
type Middleware struct {
	verifier *Verifier
	logger   *zap.Logger
}

// NewMiddleware creates authentication middleware backed by the verifier.
func NewMiddleware(verifier *Verifier, logger *zap.Logger) *Middleware {
	return &Middleware{
		verifier: verifier,
		logger:   logger.Named("auth"),
	}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			http.Error(w, "authorization header must use Bearer scheme", http.StatusUnauthorized)
			return
		}

		claims, err := m.verifier.VerifyToken(tokenString)
		if err != nil {
			m.logger.Debug("Token verification failed", zap.Error(err))
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(SetClaims(r.Context(), claims)))
	})
}
