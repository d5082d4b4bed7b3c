package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents the JWT claims issued by the BlocIQ identity service.
// AgencyID carries the tenant every request operates under.
type Claims struct {
	jwt.RegisteredClaims
	AgencyID string `json:"aid"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

type claimsContextKey string

const claimsKey claimsContextKey = "authClaims"

// SetClaims stores verified claims in the request context.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims retrieves verified claims from the request context.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// AgencyIDFromContext extracts the authenticated agency UUID from context.
// Returns an error when no claims are present or the claim is not a UUID;
// callers must treat that as a denied request, not an anonymous one.
func AgencyIDFromContext(ctx context.Context) (uuid.UUID, error) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return uuid.Nil, fmt.Errorf("no authentication claims in context")
	}
	if claims.AgencyID == "" {
		return uuid.Nil, fmt.Errorf("token is missing the aid claim")
	}
	agencyID, err := uuid.Parse(claims.AgencyID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid agency id in token: %w", err)
	}
	return agencyID, nil
}
