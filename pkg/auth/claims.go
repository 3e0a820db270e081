package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the registered claims of a JWT access token.
type TokenClaims struct {
	Subject   string     `json:"sub,omitempty"`
	Issuer    string     `json:"iss,omitempty"`
	Audience  []string   `json:"aud,omitempty"`
	ExpiresAt *time.Time `json:"exp,omitempty"`
	IssuedAt  *time.Time `json:"iat,omitempty"`
}

// InspectToken decodes a JWT without verifying its signature. It is meant
// for diagnostics only; cache expiry never depends on it.
func InspectToken(token string) (*TokenClaims, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("token is not a JWT: %w", err)
	}

	out := &TokenClaims{
		Subject:  claims.Subject,
		Issuer:   claims.Issuer,
		Audience: claims.Audience,
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.UTC()
		out.ExpiresAt = &t
	}
	if claims.IssuedAt != nil {
		t := claims.IssuedAt.UTC()
		out.IssuedAt = &t
	}
	return out, nil
}
