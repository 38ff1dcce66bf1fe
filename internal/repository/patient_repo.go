package repository

import (
	"errors"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/pkg/apperr"

	"gorm.io/gorm"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepo(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// CreateProfile persists the personal half, the clinical half and the login
// account of a new patient in one transaction, so a failure on any of the
// three leaves nothing behind. A profile without a login would be
// unreachable yet hold the phone/email/policy unique slots forever.
// Uniqueness violations surface as conflicts.
func (r *PatientRepository) CreateProfile(personal *models.PatientPersonal, clinical *models.PatientClinical, account *models.Account) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(personal).Error; err != nil {
			return err
		}
		if err := tx.Create(clinical).Error; err != nil {
			return err
		}
		return tx.Create(account).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("phone number, email or policy number already exists")
	}
	return err
}

// FindPersonalByPatientID retrieves the personal half by business key
func (r *PatientRepository) FindPersonalByPatientID(patientID string) (*models.PatientPersonal, error) {
	var personal models.PatientPersonal
	err := r.db.Where("patient_id = ?", patientID).First(&personal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("patient not found")
		}
		return nil, err
	}
	return &personal, nil
}

// FindClinicalByPatientID retrieves the clinical half by business key
func (r *PatientRepository) FindClinicalByPatientID(patientID string) (*models.PatientClinical, error) {
	var clinical models.PatientClinical
	err := r.db.Where("patient_id = ?", patientID).First(&clinical).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("patient clinical data not found")
		}
		return nil, err
	}
	return &clinical, nil
}

// UpdatePersonal applies an allow-listed column update to the personal half
// and returns the refreshed row. The patient_id column is never part of the
// update map; services enforce that before calling.
func (r *PatientRepository) UpdatePersonal(patientID string, updates map[string]interface{}) (*models.PatientPersonal, error) {
	result := r.db.Model(&models.PatientPersonal{}).
		Where("patient_id = ?", patientID).
		Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("phone number or email already exists")
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("patient not found")
	}
	return r.FindPersonalByPatientID(patientID)
}

// UpdateClinical applies an allow-listed column update to the clinical half
func (r *PatientRepository) UpdateClinical(patientID string, updates map[string]interface{}) (*models.PatientClinical, error) {
	result := r.db.Model(&models.PatientClinical{}).
		Where("patient_id = ?", patientID).
		Updates(updates)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("policy number already exists")
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("patient clinical data not found")
	}
	return r.FindClinicalByPatientID(patientID)
}

// PatientIDExists reports whether a personal row already claims patientID
func (r *PatientRepository) PatientIDExists(patientID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.PatientPersonal{}).
		Where("patient_id = ?", patientID).
		Count(&count).Error
	return count > 0, err
}
