package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload. The layout follows the identity provider:
// the application role lives under app_metadata.
type Claims struct {
	Email       string      `json:"email,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata"`
	jwt.RegisteredClaims
}

type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

const leeway = 30 * time.Second

func parseIdentity(token string, keyFunc jwt.Keyfunc, methods []string) (*Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, keyFunc,
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    ParseRole(claims.AppMetadata.Role),
	}, nil
}
