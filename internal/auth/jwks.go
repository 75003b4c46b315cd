package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
)

var asymmetricMethods = []string{"RS256", "RS384", "RS512", "PS256", "ES256", "ES384", "EdDSA"}

// JWKSVerifier checks signatures against the identity provider's published
// key set. Keys are cached and refreshed in the background by keyfunc.
type JWKSVerifier struct {
	keys keyfunc.Keyfunc
}

// NewJWKSVerifier starts fetching the key set at url. The background refresh
// stops when ctx is cancelled. An empty url or a failed initialisation still
// yields a verifier; it rejects every token with ErrMisconfigured.
func NewJWKSVerifier(ctx context.Context, url string) (*JWKSVerifier, error) {
	if url == "" {
		return &JWKSVerifier{}, fmt.Errorf("jwks url is empty")
	}
	k, err := keyfunc.NewDefaultCtx(ctx, []string{url})
	if err != nil {
		return &JWKSVerifier{}, fmt.Errorf("init jwks: %w", err)
	}
	return &JWKSVerifier{keys: k}, nil
}

// NewStaticJWKSVerifier verifies against a fixed JWK Set document.
func NewStaticJWKSVerifier(raw json.RawMessage) (*JWKSVerifier, error) {
	k, err := keyfunc.NewJWKSetJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parse jwks: %w", err)
	}
	return &JWKSVerifier{keys: k}, nil
}

func (v *JWKSVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if v.keys == nil {
		return nil, ErrMisconfigured
	}
	return parseIdentity(token, v.keys.KeyfuncCtx(ctx), asymmetricMethods)
}
