package services

import (
	"context"
	"errors"

	"github.com/Nina932/nyx/internal/models"
	"github.com/Nina932/nyx/pkg/response"
	"gorm.io/gorm"
)

type PolicyService struct {
	db *gorm.DB
}

func NewPolicyService(db *gorm.DB) *PolicyService {
	return &PolicyService{db: db}
}

type CreatePolicyRequest struct {
	Title   models.LocalizedString `json:"title"`
	Content models.LocalizedString `json:"content"`
}

type UpdatePolicyRequest struct {
	Title   *models.LocalizedString `json:"title"`
	Content *models.LocalizedString `json:"content"`
}

var errPolicyNotFound = response.NewNotFound("Policy not found")

func (s *PolicyService) List(ctx context.Context) ([]models.Policy, error) {
	policies := []models.Policy{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}

func (s *PolicyService) GetByID(ctx context.Context, id uint) (*models.Policy, error) {
	var p models.Policy
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPolicyNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PolicyService) Create(ctx context.Context, req *CreatePolicyRequest) (*models.Policy, error) {
	if req.Title.IsZero() {
		return nil, response.NewBadRequest("Policy title is required")
	}
	p := models.Policy{Title: req.Title, Content: req.Content}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PolicyService) Update(ctx context.Context, id uint, req *UpdatePolicyRequest) (*models.Policy, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Content != nil {
		p.Content = *req.Content
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PolicyService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Policy{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errPolicyNotFound
	}
	return nil
}
