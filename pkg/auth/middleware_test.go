package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/testhelpers"
)

func unverifiedMiddleware(t *testing.T) *Middleware {
	t.Helper()
	verifier, err := NewVerifier(context.Background(), nil, false, zap.NewNop())
	require.NoError(t, err)
	return NewMiddleware(verifier, zap.NewNop())
}

func TestRequireAuth(t *testing.T) {
	agencyID := uuid.New()
	mw := unverifiedMiddleware(t)

	var gotClaims *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
		req.Header.Set("Authorization", testhelpers.GenerateTestJWTWithBearer("user-1", agencyID.String(), "pm@example.com"))
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotClaims)
		assert.Equal(t, agencyID.String(), gotClaims.AgencyID)
		assert.Equal(t, "pm@example.com", gotClaims.Email)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestVerifyToken_UnknownIssuer(t *testing.T) {
	verifier, err := NewVerifier(context.Background(), map[string]string{}, true, zap.NewNop())
	require.NoError(t, err)

	// Structurally valid token whose issuer has no configured JWKS.
	token := testhelpers.GenerateTestJWT("user-1", uuid.NewString(), "")
	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}
