package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Nina932/nyx/internal/models"
	"github.com/Nina932/nyx/pkg/logger"
	"github.com/Nina932/nyx/pkg/response"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

type SystemLogService struct {
	db *gorm.DB
}

func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db}
}

// LogEntry is the caller-supplied part of a system log row.
type LogEntry struct {
	Level     string
	Module    string
	Action    string
	Message   string
	UserID    string
	IP        string
	UserAgent string
	Extra     interface{}
}

// Write stores e. Failures are logged and dropped; audit logging never
// fails the request it describes.
func (s *SystemLogService) Write(ctx context.Context, e LogEntry) {
	row := &models.SystemLog{
		Level:     e.Level,
		Module:    e.Module,
		Action:    e.Action,
		Message:   e.Message,
		IP:        e.IP,
		UserAgent: e.UserAgent,
		CreatedAt: time.Now(),
	}
	if row.Level == "" {
		row.Level = LogLevelInfo
	}
	if e.UserID != "" {
		uid := e.UserID
		row.UserID = &uid
	}
	if e.Extra != nil {
		if b, err := json.Marshal(e.Extra); err == nil {
			row.Extra = datatypes.JSON(b)
		}
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		logger.Error().Err(err).Str("module", e.Module).Str("action", e.Action).Msg("failed to write system log")
	}
}

type SystemLogListRequest struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Level     string `form:"level"`
	Module    string `form:"module"`
	Action    string `form:"action"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Search    string `form:"search"`
}

type SystemLogListResponse struct {
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	Items    []models.SystemLog `json:"items"`
}

func (s *SystemLogService) List(ctx context.Context, req *SystemLogListRequest) (*SystemLogListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := s.db.WithContext(ctx).Model(&models.SystemLog{})
	if req.Level != "" {
		query = query.Where("level = ?", req.Level)
	}
	if req.Module != "" {
		query = query.Where("module = ?", req.Module)
	}
	if req.Action != "" {
		query = query.Where("action LIKE ?", "%"+req.Action+"%")
	}
	if req.StartDate != "" {
		start, err := time.Parse(models.HireDateLayout, req.StartDate)
		if err != nil {
			return nil, response.NewBadRequest("Invalid start_date, expected YYYY-MM-DD")
		}
		query = query.Where("created_at >= ?", start)
	}
	if req.EndDate != "" {
		end, err := time.Parse(models.HireDateLayout, req.EndDate)
		if err != nil {
			return nil, response.NewBadRequest("Invalid end_date, expected YYYY-MM-DD")
		}
		query = query.Where("created_at < ?", end.AddDate(0, 0, 1))
	}
	if req.Search != "" {
		query = query.Where("message LIKE ?", "%"+req.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	items := []models.SystemLog{}
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	return &SystemLogListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    items,
	}, nil
}

// Cleanup deletes logs older than retentionDays. A non-positive retention
// keeps everything.
func (s *SystemLogService) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
