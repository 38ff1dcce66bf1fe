package models

import (
	"time"

	"gorm.io/datatypes"
)

// Hospital represents the hospitals table. The hospital_id is the
// human-facing login id generated at provisioning, distinct from the row id.
type Hospital struct {
	ID          uint           `gorm:"primaryKey" json:"-"`
	HospitalID  string         `gorm:"size:10;not null;uniqueIndex" json:"hospital_id"`
	Name        string         `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Address     datatypes.JSON `json:"address,omitempty"`
	PhoneNumber string         `gorm:"size:20;not null;uniqueIndex" json:"phoneNumber"`
	Email       string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName specifies the table name for Hospital model
func (Hospital) TableName() string {
	return "hospitals"
}
