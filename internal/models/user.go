package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AuthTypeLocal = "local"
	AuthTypeLDAP  = "ldap"
)

// User is a login account. Users authenticated only by the external
// identity provider have no row here.
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string     `gorm:"size:255" json:"-"` // empty for LDAP users
	Role         string     `gorm:"size:20;default:EMPLOYEE;not null" json:"role"`
	AuthType     string     `gorm:"size:20;default:local" json:"authType"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
