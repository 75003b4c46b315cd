package services

import (
	"context"
	"errors"

	"github.com/Nina932/nyx/internal/models"
	"github.com/Nina932/nyx/pkg/response"
	"gorm.io/gorm"
)

type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

type CreateRoleRequest struct {
	Title          models.LocalizedString `json:"title"`
	RequiredSkills []string               `json:"requiredSkills"`
}

type UpdateRoleRequest struct {
	Title          *models.LocalizedString `json:"title"`
	RequiredSkills *[]string               `json:"requiredSkills"`
}

var errRoleNotFound = response.NewNotFound("Role not found")

func (s *RoleService) List(ctx context.Context) ([]models.JobRole, error) {
	roles := []models.JobRole{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (s *RoleService) GetByID(ctx context.Context, id uint) (*models.JobRole, error) {
	var role models.JobRole
	if err := s.db.WithContext(ctx).First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (s *RoleService) Create(ctx context.Context, req *CreateRoleRequest) (*models.JobRole, error) {
	if req.Title.IsZero() {
		return nil, response.NewBadRequest("Role title is required")
	}
	role := models.JobRole{
		Title:          req.Title,
		RequiredSkills: nonNil(req.RequiredSkills),
	}
	if err := s.db.WithContext(ctx).Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *RoleService) Update(ctx context.Context, id uint, req *UpdateRoleRequest) (*models.JobRole, error) {
	role, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		role.Title = *req.Title
	}
	if req.RequiredSkills != nil {
		role.RequiredSkills = nonNil(*req.RequiredSkills)
	}
	if err := s.db.WithContext(ctx).Save(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

// Delete removes the role and detaches employees that referenced it.
func (s *RoleService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Employee{}).
			Where("job_role_id = ?", id).
			Update("job_role_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.JobRole{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errRoleNotFound
		}
		return nil
	})
}
