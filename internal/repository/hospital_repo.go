package repository

import (
	"errors"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/pkg/apperr"

	"gorm.io/gorm"
)

type HospitalRepository struct {
	db *gorm.DB
}

func NewHospitalRepo(db *gorm.DB) *HospitalRepository {
	return &HospitalRepository{db: db}
}

// Create persists a new hospital and its login account in one transaction,
// so neither can exist without the other. Duplicate name, phone or email is
// a conflict.
func (r *HospitalRepository) Create(hospital *models.Hospital, account *models.Account) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(hospital).Error; err != nil {
			return err
		}
		return tx.Create(account).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("hospital name, phone number or email already exists")
	}
	return err
}

// FindByHospitalID retrieves a hospital by its business key
func (r *HospitalRepository) FindByHospitalID(hospitalID string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.db.Where("hospital_id = ?", hospitalID).First(&hospital).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("hospital not found")
		}
		return nil, err
	}
	return &hospital, nil
}

// Update applies an allow-listed column update and returns the refreshed row
func (r *HospitalRepository) Update(hospitalID string, updates map[string]interface{}) (*models.Hospital, error) {
	result := r.db.Model(&models.Hospital{}).
		Where("hospital_id = ?", hospitalID).
		Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("hospital name, phone number or email already exists")
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("hospital not found")
	}
	return r.FindByHospitalID(hospitalID)
}
