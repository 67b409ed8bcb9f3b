package supabase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// accessClaims is the subset of the provider's access-token claims we read.
type accessClaims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// parseAccessToken reads the claims of an access token without checking the
// signature; the provider stays the authority on validity.
func parseAccessToken(token string) (*accessClaims, error) {
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}

// verifyAccessToken checks the HS256 signature when a JWT secret is
// configured. Expiry is not an error here: expired sessions get refreshed.
func (c *Client) verifyAccessToken(token string) error {
	if c.cfg.JWTSecret == "" {
		return nil
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if _, err := parser.ParseWithClaims(token, &accessClaims{}, func(*jwt.Token) (interface{}, error) {
		return []byte(c.cfg.JWTSecret), nil
	}); err != nil {
		return fmt.Errorf("verify access token: %w", err)
	}
	return nil
}

// tokenExpiry returns the exp claim of token, or the zero time.
func tokenExpiry(token string) time.Time {
	claims, err := parseAccessToken(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
