package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// cost is a JSON number on the wire
	decimal.MarshalJSONWithoutQuotes = true
}

// UsageRecord is one successful AI call, written after the response is
// generated. Records are never updated.
type UsageRecord struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    string          `gorm:"size:64;index:idx_usage_user_created,priority:1;not null" json:"userId"`
	Endpoint  string          `gorm:"size:50;index;not null" json:"endpoint"`
	Tokens    int             `gorm:"not null" json:"tokens"`
	Cost      decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"cost"`
	CreatedAt time.Time       `gorm:"index:idx_usage_user_created,priority:2" json:"createdAt"`
}

func (UsageRecord) TableName() string { return "ai_usage_logs" }
