package models

import "time"

// Account represents the accounts table: one login credential per actor,
// scoped by role. The external id is the human-facing login id (patient id,
// hospital id, or authority id); the password hash is write-once at
// provisioning and never serialized.
type Account struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Role         Role      `gorm:"size:20;not null;uniqueIndex:idx_accounts_role_external" json:"role"`
	ExternalID   string    `gorm:"size:64;not null;uniqueIndex:idx_accounts_role_external" json:"external_id"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the table name for Account model
func (Account) TableName() string {
	return "accounts"
}
