package handlers

import (
	"github.com/Nina932/nyx/internal/services"
	"github.com/Nina932/nyx/pkg/response"
	"github.com/gin-gonic/gin"
)

type PolicyHandler struct {
	policyService *services.PolicyService
}

func NewPolicyHandler(svc *services.PolicyService) *PolicyHandler {
	return &PolicyHandler{policyService: svc}
}

// List returns all policies
// GET /api/policies
func (h *PolicyHandler) List(c *gin.Context) {
	policies, err := h.policyService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, policies)
}

// GET /api/policies/:id
func (h *PolicyHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "Invalid policy ID")
	if !ok {
		return
	}
	policy, err := h.policyService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, policy)
}

// POST /api/policies
func (h *PolicyHandler) Create(c *gin.Context) {
	var req services.CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, invalidBody)
		return
	}
	policy, err := h.policyService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, policy)
}

// PUT /api/policies/:id
func (h *PolicyHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "Invalid policy ID")
	if !ok {
		return
	}
	var req services.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, invalidBody)
		return
	}
	policy, err := h.policyService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, policy)
}

// DELETE /api/policies/:id
func (h *PolicyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "Invalid policy ID")
	if !ok {
		return
	}
	if err := h.policyService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}
