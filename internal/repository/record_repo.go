package repository

import (
	"errors"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/pkg/apperr"

	"gorm.io/gorm"
)

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepo(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create persists a new visit record
func (r *RecordRepository) Create(record *models.VisitRecord) error {
	return r.db.Create(record).Error
}

// FindByPatientAndID retrieves one visit record scoped to its patient, so a
// visit id can never be read through another patient's path.
func (r *RecordRepository) FindByPatientAndID(patientID string, visitID uint) (*models.VisitRecord, error) {
	var record models.VisitRecord
	err := r.db.Where("patient_id = ? AND id = ?", patientID, visitID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("record not found")
		}
		return nil, err
	}
	return &record, nil
}

// ListByPatient retrieves one page of visit records, most recent visit first
func (r *RecordRepository) ListByPatient(patientID string, offset, limit int) ([]models.VisitRecord, error) {
	var records []models.VisitRecord
	err := r.db.Where("patient_id = ?", patientID).
		Order("visit_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	return records, err
}

// CountByPatient returns the total number of visit records for a patient
func (r *RecordRepository) CountByPatient(patientID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.VisitRecord{}).
		Where("patient_id = ?", patientID).
		Count(&count).Error
	return count, err
}

// ListRecent retrieves the n most recent visit records
func (r *RecordRepository) ListRecent(patientID string, n int) ([]models.VisitRecord, error) {
	var records []models.VisitRecord
	err := r.db.Where("patient_id = ?", patientID).
		Order("visit_date DESC").
		Limit(n).
		Find(&records).Error
	return records, err
}

// ListChronological retrieves all visit records oldest first, for time series
func (r *RecordRepository) ListChronological(patientID string) ([]models.VisitRecord, error) {
	var records []models.VisitRecord
	err := r.db.Where("patient_id = ?", patientID).
		Order("visit_date ASC").
		Find(&records).Error
	return records, err
}
