package handlers

import (
	"github.com/Nina932/nyx/internal/services"
	"github.com/Nina932/nyx/pkg/response"
	"github.com/gin-gonic/gin"
)

type EmployeeHandler struct {
	employeeService *services.EmployeeService
}

func NewEmployeeHandler(svc *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: svc}
}

// List returns all employees
// GET /api/employees
func (h *EmployeeHandler) List(c *gin.Context) {
	employees, err := h.employeeService.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, employees)
}

// GetByID returns an employee by ID
// GET /api/employees/:id
func (h *EmployeeHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "Invalid employee ID")
	if !ok {
		return
	}
	employee, err := h.employeeService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, employee)
}

// Create creates a new employee
// POST /api/employees
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req services.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, invalidBody)
		return
	}
	employee, err := h.employeeService.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, employee)
}

// Update updates an employee
// PUT /api/employees/:id
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "Invalid employee ID")
	if !ok {
		return
	}
	var req services.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, invalidBody)
		return
	}
	employee, err := h.employeeService.Update(c.Request.Context(), id, &req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, employee)
}

// Delete deletes an employee
// DELETE /api/employees/:id
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "Invalid employee ID")
	if !ok {
		return
	}
	if err := h.employeeService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}
