package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SecretVerifier verifies and issues HS256 tokens with a shared secret.
type SecretVerifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSecretVerifier(secret string, ttl time.Duration) *SecretVerifier {
	return &SecretVerifier{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (v *SecretVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	if len(v.secret) == 0 {
		return nil, ErrMisconfigured
	}
	return parseIdentity(token, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, []string{jwt.SigningMethodHS256.Alg()})
}

// Sign issues a token for id that expires after the configured ttl.
func (v *SecretVerifier) Sign(id Identity) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrMisconfigured
	}
	if id.Subject == "" {
		return "", errors.New("sign: empty subject")
	}
	now := v.now()
	claims := Claims{
		Email:       id.Email,
		AppMetadata: AppMetadata{Role: string(id.Role)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
