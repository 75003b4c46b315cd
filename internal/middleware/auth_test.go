package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Nina932/nyx/internal/auth"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSigner = auth.NewSecretVerifier("test-secret-for-middleware-testing", time.Hour)

func signFor(t *testing.T, role auth.Role) string {
	t.Helper()
	token, err := testSigner.Sign(auth.Identity{Subject: "user-1", Email: "u@nyx.ge", Role: role})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

type misconfigured struct{}

func (misconfigured) Verify(context.Context, string) (*auth.Identity, error) {
	return nil, auth.ErrMisconfigured
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return body.Error
}

func protectedRouter(v auth.Verifier, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(AuthRequired(v))
	router.Use(extra...)
	router.GET("/protected", func(c *gin.Context) {
		id := GetIdentity(c)
		fromCtx := auth.FromContext(c.Request.Context())
		c.JSON(200, gin.H{"sub": id.Subject, "role": id.Role, "same": fromCtx == id})
	})
	return router
}

func TestAuthRequiredRejects(t *testing.T) {
	expired := auth.NewSecretVerifier("test-secret-for-middleware-testing", -time.Hour)
	stale, _ := expired.Sign(auth.Identity{Subject: "user-1", Role: auth.RoleEmployee})

	tests := []struct {
		name     string
		verifier auth.Verifier
		header   string
		message  string
	}{
		{"no header", testSigner, "", "No token provided"},
		{"basic scheme", testSigner, "Basic token123", "No token provided"},
		{"bearer without token", testSigner, "Bearer", "No token provided"},
		{"garbage token", testSigner, "Bearer invalid.jwt.token", "Invalid token"},
		{"expired token", testSigner, "Bearer " + stale, "Invalid token"},
		{"misconfigured", misconfigured{}, "Bearer abc", "Authentication service misconfigured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			protectedRouter(tt.verifier).ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
			}
			if got := errorMessage(t, w); got != tt.message {
				t.Errorf("expected %q, got %q", tt.message, got)
			}
		})
	}
}

func TestAuthRequiredValidToken(t *testing.T) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signFor(t, auth.RoleManager))
	protectedRouter(testSigner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var body struct {
		Sub  string `json:"sub"`
		Role string `json:"role"`
		Same bool   `json:"same"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Sub != "user-1" || body.Role != "MANAGER" || !body.Same {
		t.Errorf("unexpected identity %+v", body)
	}
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name   string
		role   auth.Role
		allow  []auth.Role
		status int
	}{
		{"admin only, admin", auth.RoleAdmin, []auth.Role{auth.RoleAdmin}, http.StatusOK},
		{"admin only, employee", auth.RoleEmployee, []auth.Role{auth.RoleAdmin}, http.StatusForbidden},
		{"writers, manager", auth.RoleManager, []auth.Role{auth.RoleAdmin, auth.RoleManager}, http.StatusOK},
		{"writers, employee", auth.RoleEmployee, []auth.Role{auth.RoleAdmin, auth.RoleManager}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+signFor(t, tt.role))
			protectedRouter(testSigner, RequireRoles(tt.allow...)).ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			if tt.status == http.StatusForbidden && errorMessage(t, w) != "Insufficient permissions" {
				t.Errorf("unexpected message %q", w.Body.String())
			}
		})
	}
}

func TestAdminRequiredWithoutIdentity(t *testing.T) {
	router := gin.New()
	router.Use(AdminRequired())
	router.GET("/admin", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestContextAccessors(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetIdentity(c) != nil || GetUserID(c) != "" || GetRole(c) != "" {
		t.Error("expected zero values without identity")
	}

	c.Set(ContextIdentity, &auth.Identity{Subject: "42", Role: auth.RoleAdmin})
	if GetUserID(c) != "42" {
		t.Errorf("expected %q, got %q", "42", GetUserID(c))
	}
	if GetRole(c) != auth.RoleAdmin {
		t.Errorf("expected %q, got %q", auth.RoleAdmin, GetRole(c))
	}
}
