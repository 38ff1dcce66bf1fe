package repository

import (
	"clinical-records-backend/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateAuditLog creates a new audit log entry
func (r *AuditRepository) CreateAuditLog(accountID *uint, action string, details string) error {
	log := &models.AuditLog{
		AccountID: accountID,
		Action:    action,
		Details:   details,
	}
	return r.db.Create(log).Error
}
