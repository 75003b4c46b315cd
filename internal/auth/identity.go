// Package auth verifies bearer tokens and turns them into caller identities.
package auth

import (
	"context"
	"errors"
	"strings"
)

// Role is the caller's authorization level.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// ParseRole maps a claim value to a Role. Absent or unknown values yield
// RoleEmployee.
func ParseRole(s string) Role {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleManager:
		return r
	default:
		return RoleEmployee
	}
}

// Identity is the verified caller of a single request.
type Identity struct {
	Subject string
	Email   string
	Role    Role
}

func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role == RoleAdmin
}

var (
	ErrMissingToken  = errors.New("no token provided")
	ErrInvalidToken  = errors.New("invalid token")
	ErrMisconfigured = errors.New("authentication service misconfigured")
)

// Verifier validates a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored by WithIdentity, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

type chain []Verifier

// Chain tries each verifier in order and returns the first success. The
// error of the last verifier is returned when all fail.
func Chain(verifiers ...Verifier) Verifier {
	if len(verifiers) == 1 {
		return verifiers[0]
	}
	return chain(verifiers)
}

func (c chain) Verify(ctx context.Context, token string) (*Identity, error) {
	err := ErrInvalidToken
	for _, v := range c {
		var id *Identity
		id, err = v.Verify(ctx, token)
		if err == nil {
			return id, nil
		}
	}
	return nil, err
}
