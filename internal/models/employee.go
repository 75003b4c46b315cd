package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// LocalizedString holds an English and a Georgian rendering of the same text.
// Embedded fields are stored as <prefix>_en / <prefix>_ka columns.
type LocalizedString struct {
	En string `gorm:"column:en;type:text" json:"en"`
	Ka string `gorm:"column:ka;type:text" json:"ka"`
}

// UnmarshalJSON also accepts a bare string, used for both languages.
func (l *LocalizedString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		l.En, l.Ka = s, s
		return nil
	}
	type plain LocalizedString
	return json.Unmarshal(data, (*plain)(l))
}

// IsZero reports whether both renderings are empty.
func (l LocalizedString) IsZero() bool {
	return l.En == "" && l.Ka == ""
}

// PerformancePoint is one month of survey scores on a 0-10 scale.
type PerformancePoint struct {
	Month        string  `json:"month"`
	Engagement   float64 `json:"engagement"`
	Productivity float64 `json:"productivity"`
	Wellbeing    float64 `json:"wellbeing"`
}

// HireDateLayout is the wire and storage format of Employee.HireDate.
const HireDateLayout = "2006-01-02"

type Employee struct {
	ID               uint                                  `gorm:"primaryKey" json:"id"`
	Name             LocalizedString                       `gorm:"embedded;embeddedPrefix:name_" json:"name"`
	CurrentRole      LocalizedString                       `gorm:"embedded;embeddedPrefix:current_role_" json:"currentRole"`
	Department       LocalizedString                       `gorm:"embedded;embeddedPrefix:department_" json:"department"`
	HireDate         string                                `gorm:"size:10;not null" json:"hireDate"`
	Education        LocalizedString                       `gorm:"embedded;embeddedPrefix:education_" json:"education"`
	Skills           datatypes.JSONSlice[string]           `json:"skills"`
	PerformanceScore int                                   `gorm:"default:0" json:"performanceScore"`
	Grade            string                                `gorm:"size:2;default:C" json:"grade"`
	CareerGoals      datatypes.JSONSlice[LocalizedString]  `json:"careerGoals"`
	PerformanceData  datatypes.JSONSlice[PerformancePoint] `json:"performanceData"`
	Feedback         LocalizedString                       `gorm:"embedded;embeddedPrefix:feedback_" json:"feedback"`
	DigitalTwin      datatypes.JSON                        `json:"digitalTwin"`
	JobRoleID        *uint                                 `gorm:"index" json:"jobRoleId,omitempty"`
	TenureWorkdays   int                                   `gorm:"-" json:"tenureWorkdays"`
	CreatedAt        time.Time                             `json:"-"`
	UpdatedAt        time.Time                             `json:"-"`
}

func (Employee) TableName() string { return "employees" }

// HiredOn parses HireDate.
func (e *Employee) HiredOn() (time.Time, error) {
	return time.Parse(HireDateLayout, e.HireDate)
}

// JobRole is a position with the skills it requires.
type JobRole struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	Title          LocalizedString             `gorm:"embedded;embeddedPrefix:title_" json:"title"`
	RequiredSkills datatypes.JSONSlice[string] `json:"requiredSkills"`
	CreatedAt      time.Time                   `json:"-"`
	UpdatedAt      time.Time                   `json:"-"`
}

func (JobRole) TableName() string { return "job_roles" }

type Policy struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Title     LocalizedString `gorm:"embedded;embeddedPrefix:title_" json:"title"`
	Content   LocalizedString `gorm:"embedded;embeddedPrefix:content_" json:"content"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

func (Policy) TableName() string { return "policies" }
