package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type idTokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

func (c idTokenClaims) uid() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// parseIDToken reads the claims of an ID token without verifying its
// signature. The claims only fill session fields.
func parseIDToken(token string) (idTokenClaims, error) {
	var claims idTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return idTokenClaims{}, fmt.Errorf("failed to parse id token: %w", err)
	}
	return claims, nil
}
