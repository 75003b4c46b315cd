package middleware

import (
	"errors"

	"github.com/Nina932/nyx/internal/auth"
	"github.com/Nina932/nyx/pkg/response"
	"github.com/gin-gonic/gin"
)

const ContextIdentity = "identity"

// AuthRequired verifies the bearer token and stores the caller identity on
// the gin context and the request context.
func AuthRequired(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ParseBearer(c.GetHeader("Authorization"))
		if err != nil {
			response.Unauthorized(c, "No token provided")
			return
		}

		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrMisconfigured) {
				response.Unauthorized(c, "Authentication service misconfigured")
				return
			}
			response.Unauthorized(c, "Invalid token")
			return
		}

		c.Set(ContextIdentity, id)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// RequireRoles lets the request through only when the caller holds one of
// roles. It must run after AuthRequired.
func RequireRoles(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id == nil {
			response.Unauthorized(c, "No token provided")
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "Insufficient permissions")
	}
}

// AdminRequired is RequireRoles(auth.RoleAdmin).
func AdminRequired() gin.HandlerFunc {
	return RequireRoles(auth.RoleAdmin)
}

// GetIdentity returns the verified caller, or nil outside AuthRequired.
func GetIdentity(c *gin.Context) *auth.Identity {
	if v, exists := c.Get(ContextIdentity); exists {
		if id, ok := v.(*auth.Identity); ok {
			return id
		}
	}
	return nil
}

// GetUserID returns the caller subject, or "" when unauthenticated.
func GetUserID(c *gin.Context) string {
	if id := GetIdentity(c); id != nil {
		return id.Subject
	}
	return ""
}

func GetRole(c *gin.Context) auth.Role {
	if id := GetIdentity(c); id != nil {
		return id.Role
	}
	return ""
}
