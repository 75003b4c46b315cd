package handlers

import (
	"github.com/Nina932/nyx/internal/middleware"
	"github.com/Nina932/nyx/internal/services"
	"github.com/Nina932/nyx/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
	ldapEnabled bool
}

func NewAuthHandler(svc *services.AuthService, ldapEnabled bool) *AuthHandler {
	return &AuthHandler{authService: svc, ldapEnabled: ldapEnabled}
}

// Register creates a local account and signs the caller in
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, invalidBody)
		return
	}
	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, result)
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, invalidBody)
		return
	}
	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

// Me returns the current user
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}

// Config tells the login page which methods are available
// GET /api/auth/config
func (h *AuthHandler) Config(c *gin.Context) {
	response.Success(c, gin.H{
		"localAccounts": h.authService.LocalAccounts(),
		"ldapEnabled":   h.ldapEnabled && h.authService.LocalAccounts(),
	})
}
