package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Nina932/nyx/internal/models"
	"github.com/Nina932/nyx/pkg/response"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultGrade = "C"

type EmployeeService struct {
	db       *gorm.DB
	calendar *WorkCalendar
	now      func() time.Time
}

func NewEmployeeService(db *gorm.DB, calendar *WorkCalendar) *EmployeeService {
	return &EmployeeService{db: db, calendar: calendar, now: time.Now}
}

type CreateEmployeeRequest struct {
	Name             models.LocalizedString    `json:"name"`
	CurrentRole      models.LocalizedString    `json:"currentRole"`
	Department       models.LocalizedString    `json:"department"`
	HireDate         string                    `json:"hireDate"`
	Education        models.LocalizedString    `json:"education"`
	Skills           []string                  `json:"skills"`
	PerformanceScore int                       `json:"performanceScore"`
	Grade            string                    `json:"grade"`
	CareerGoals      []models.LocalizedString  `json:"careerGoals"`
	PerformanceData  []models.PerformancePoint `json:"performanceData"`
	Feedback         models.LocalizedString    `json:"feedback"`
	DigitalTwin      json.RawMessage           `json:"digitalTwin"`
	JobRoleID        *uint                     `json:"jobRoleId"`
}

// UpdateEmployeeRequest changes only the fields that are present.
type UpdateEmployeeRequest struct {
	Name             *models.LocalizedString    `json:"name"`
	CurrentRole      *models.LocalizedString    `json:"currentRole"`
	Department       *models.LocalizedString    `json:"department"`
	HireDate         *string                    `json:"hireDate"`
	Education        *models.LocalizedString    `json:"education"`
	Skills           *[]string                  `json:"skills"`
	PerformanceScore *int                       `json:"performanceScore"`
	Grade            *string                    `json:"grade"`
	CareerGoals      *[]models.LocalizedString  `json:"careerGoals"`
	PerformanceData  *[]models.PerformancePoint `json:"performanceData"`
	Feedback         *models.LocalizedString    `json:"feedback"`
	DigitalTwin      json.RawMessage            `json:"digitalTwin"`
	JobRoleID        *uint                      `json:"jobRoleId"`
}

var errEmployeeNotFound = response.NewNotFound("Employee not found")

func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, error) {
	employees := []models.Employee{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&employees).Error; err != nil {
		return nil, err
	}
	for i := range employees {
		s.fillTenure(&employees[i])
	}
	return employees, nil
}

func (s *EmployeeService) GetByID(ctx context.Context, id uint) (*models.Employee, error) {
	var e models.Employee
	if err := s.db.WithContext(ctx).First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errEmployeeNotFound
		}
		return nil, err
	}
	s.fillTenure(&e)
	return &e, nil
}

func (s *EmployeeService) Create(ctx context.Context, req *CreateEmployeeRequest) (*models.Employee, error) {
	if req.Name.IsZero() {
		return nil, response.NewBadRequest("Employee name is required")
	}
	if err := checkHireDate(req.HireDate); err != nil {
		return nil, err
	}
	if req.Grade == "" {
		req.Grade = defaultGrade
	}

	e := models.Employee{
		Name:             req.Name,
		CurrentRole:      req.CurrentRole,
		Department:       req.Department,
		HireDate:         req.HireDate,
		Education:        req.Education,
		Skills:           nonNil(req.Skills),
		PerformanceScore: req.PerformanceScore,
		Grade:            req.Grade,
		CareerGoals:      nonNil(req.CareerGoals),
		PerformanceData:  nonNil(req.PerformanceData),
		Feedback:         req.Feedback,
		DigitalTwin:      jsonObject(req.DigitalTwin),
		JobRoleID:        req.JobRoleID,
	}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		return nil, err
	}
	s.fillTenure(&e)
	return &e, nil
}

func (s *EmployeeService) Update(ctx context.Context, id uint, req *UpdateEmployeeRequest) (*models.Employee, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.HireDate != nil {
		if err := checkHireDate(*req.HireDate); err != nil {
			return nil, err
		}
		e.HireDate = *req.HireDate
	}
	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.CurrentRole != nil {
		e.CurrentRole = *req.CurrentRole
	}
	if req.Department != nil {
		e.Department = *req.Department
	}
	if req.Education != nil {
		e.Education = *req.Education
	}
	if req.Skills != nil {
		e.Skills = nonNil(*req.Skills)
	}
	if req.PerformanceScore != nil {
		e.PerformanceScore = *req.PerformanceScore
	}
	if req.Grade != nil {
		e.Grade = *req.Grade
	}
	if req.CareerGoals != nil {
		e.CareerGoals = nonNil(*req.CareerGoals)
	}
	if req.PerformanceData != nil {
		e.PerformanceData = nonNil(*req.PerformanceData)
	}
	if req.Feedback != nil {
		e.Feedback = *req.Feedback
	}
	if len(req.DigitalTwin) > 0 {
		e.DigitalTwin = jsonObject(req.DigitalTwin)
	}
	if req.JobRoleID != nil {
		e.JobRoleID = req.JobRoleID
	}

	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return nil, err
	}
	s.fillTenure(e)
	return e, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Employee{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errEmployeeNotFound
	}
	return nil
}

// fillTenure sets TenureWorkdays from the hire date to today.
func (s *EmployeeService) fillTenure(e *models.Employee) {
	hired, err := e.HiredOn()
	if err != nil || s.calendar == nil {
		return
	}
	e.TenureWorkdays = s.calendar.Workdays(hired, s.now())
}

func checkHireDate(v string) error {
	if _, err := time.Parse(models.HireDateLayout, v); err != nil {
		return response.NewBadRequest(fmt.Sprintf("Invalid hireDate %q, expected YYYY-MM-DD", v))
	}
	return nil
}

func nonNil[T any](v []T) datatypes.JSONSlice[T] {
	if v == nil {
		return datatypes.JSONSlice[T]{}
	}
	return datatypes.JSONSlice[T](v)
}

// jsonObject keeps a valid JSON object and turns anything else into {}.
func jsonObject(raw json.RawMessage) datatypes.JSON {
	var probe map[string]interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &probe) != nil || probe == nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}
