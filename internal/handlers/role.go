package handlers

import (
	"github.com/Nina932/nyx/internal/services"
	"github.com/Nina932/nyx/pkg/response"
	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService *services.RoleService
}

func NewRoleHandler(svc *services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: svc}
}

// GET /api/roles
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.roleService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, roles)
}

// GET /api/roles/:id
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "Invalid role ID")
	if !ok {
		return
	}
	role, err := h.roleService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, role)
}

// POST /api/roles
func (h *RoleHandler) Create(c *gin.Context) {
	var req services.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, invalidBody)
		return
	}
	role, err := h.roleService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, role)
}

// PUT /api/roles/:id
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "Invalid role ID")
	if !ok {
		return
	}
	var req services.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, invalidBody)
		return
	}
	role, err := h.roleService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, role)
}

// Delete removes a role and detaches its employees.
// DELETE /api/roles/:id
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "Invalid role ID")
	if !ok {
		return
	}
	if err := h.roleService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}
