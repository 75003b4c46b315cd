package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"ADMIN", RoleAdmin},
		{"admin", RoleAdmin},
		{"MANAGER", RoleManager},
		{"EMPLOYEE", RoleEmployee},
		{"", RoleEmployee},
		{"authenticated", RoleEmployee},
		{"superuser", RoleEmployee},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"valid", "Bearer abc.def.ghi", "abc.def.ghi", false},
		{"empty", "", "", true},
		{"no scheme", "abc.def.ghi", "", true},
		{"basic scheme", "Basic dXNlcjpwYXNz", "", true},
		{"lowercase bearer", "bearer abc", "", true},
		{"bearer only", "Bearer ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBearer(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBearer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrMissingToken) {
				t.Errorf("expected ErrMissingToken, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseBearer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSecretVerifierRoundTrip(t *testing.T) {
	v := NewSecretVerifier("test-secret", time.Hour)
	token, err := v.Sign(Identity{Subject: "user-1", Email: "a@nyx.ge", Role: RoleManager})
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	id, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.Subject != "user-1" || id.Role != RoleManager || id.Email != "a@nyx.ge" {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestSecretVerifierRejects(t *testing.T) {
	v := NewSecretVerifier("test-secret", time.Hour)
	other := NewSecretVerifier("other-secret", time.Hour)

	expired := NewSecretVerifier("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-3 * time.Hour) }

	wrongSecret, _ := other.Sign(Identity{Subject: "u"})
	old, _ := expired.Sign(Identity{Subject: "u"})
	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u"},
	}).SignedString([]byte("test-secret"))
	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tokens := map[string]string{
		"garbage":      "not.a.token",
		"wrong secret": wrongSecret,
		"expired":      old,
		"no subject":   noSubject,
		"no expiry":    noExpiry,
		"alg none":     unsigned,
	}
	for name, tok := range tokens {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestSecretVerifierMissingRoleDefaultsToEmployee(t *testing.T) {
	v := NewSecretVerifier("s", time.Hour)
	token, _ := v.Sign(Identity{Subject: "u"})
	id, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatal(err)
	}
	if id.Role != RoleEmployee {
		t.Errorf("Role = %q, want EMPLOYEE", id.Role)
	}
}

func TestSecretVerifierEmptySecret(t *testing.T) {
	v := NewSecretVerifier("", time.Hour)
	if _, err := v.Verify(context.Background(), "x"); !errors.Is(err, ErrMisconfigured) {
		t.Errorf("expected ErrMisconfigured, got %v", err)
	}
	if _, err := v.Sign(Identity{Subject: "u"}); !errors.Is(err, ErrMisconfigured) {
		t.Errorf("expected ErrMisconfigured, got %v", err)
	}
}

func rsaJWKS(t *testing.T, kid string, key *rsa.PublicKey) json.RawMessage {
	t.Helper()
	doc := map[string]interface{}{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": kid,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func signRS256(t *testing.T, key *rsa.PrivateKey, kid string, claims Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestJWKSVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	v, err := NewStaticJWKSVerifier(rsaJWKS(t, "k1", &key.PublicKey))
	if err != nil {
		t.Fatalf("NewStaticJWKSVerifier() error = %v", err)
	}

	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	good := signRS256(t, key, "k1", Claims{
		AppMetadata:      AppMetadata{Role: "ADMIN"},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sb-user", ExpiresAt: exp},
	})
	id, err := v.Verify(context.Background(), good)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.Subject != "sb-user" || !id.IsAdmin() {
		t.Errorf("unexpected identity %+v", id)
	}

	other, _ := rsa.GenerateKey(rand.Reader, 2048)
	forged := signRS256(t, other, "k1", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: exp}})
	if _, err := v.Verify(context.Background(), forged); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("forged token: expected ErrInvalidToken, got %v", err)
	}

	hmac, _ := NewSecretVerifier("s", time.Hour).Sign(Identity{Subject: "x"})
	if _, err := v.Verify(context.Background(), hmac); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("hmac token: expected ErrInvalidToken, got %v", err)
	}
}

func TestJWKSVerifierUnconfigured(t *testing.T) {
	v, err := NewJWKSVerifier(context.Background(), "")
	if err == nil {
		t.Error("expected an error for an empty url")
	}
	if v == nil {
		t.Fatal("verifier must still be returned")
	}
	if _, err := v.Verify(context.Background(), "a.b.c"); !errors.Is(err, ErrMisconfigured) {
		t.Errorf("expected ErrMisconfigured, got %v", err)
	}
}

func TestChain(t *testing.T) {
	a := NewSecretVerifier("a", time.Hour)
	b := NewSecretVerifier("b", time.Hour)
	c := Chain(a, b)

	tokB, _ := b.Sign(Identity{Subject: "from-b"})
	id, err := c.Verify(context.Background(), tokB)
	if err != nil || id.Subject != "from-b" {
		t.Errorf("Chain should fall through to b: %v %+v", err, id)
	}

	tokX, _ := NewSecretVerifier("x", time.Hour).Sign(Identity{Subject: "x"})
	if _, err := c.Verify(context.Background(), tokX); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := WithIdentity(context.Background(), &Identity{Subject: "u"})
	if got := FromContext(ctx); got == nil || got.Subject != "u" {
		t.Errorf("FromContext() = %+v", got)
	}
	if FromContext(context.Background()) != nil {
		t.Error("empty context should carry no identity")
	}
}
