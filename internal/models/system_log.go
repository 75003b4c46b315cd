package models

import (
	"time"

	"gorm.io/datatypes"
)

// SystemLog is an audit or operational event.
type SystemLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Level     string         `gorm:"size:20;index" json:"level"` // info, warning, error
	Module    string         `gorm:"size:100;index" json:"module"`
	Action    string         `gorm:"size:200;index" json:"action"`
	Message   string         `gorm:"type:text" json:"message"`
	UserID    *string        `gorm:"size:64" json:"userId"`
	IP        string         `gorm:"size:50" json:"ip"`
	UserAgent string         `gorm:"size:500" json:"userAgent"`
	Extra     datatypes.JSON `json:"extra,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
}

func (SystemLog) TableName() string { return "system_logs" }
