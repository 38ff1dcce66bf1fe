package service

import (
	"clinical-records-backend/internal/models"
)

// The services depend on these narrow contracts rather than concrete
// repositories; the gorm implementations live in internal/repository and
// tests substitute func-field mocks.

// AccountStore is the credential store adapter contract
type AccountStore interface {
	FindByExternalID(role models.Role, externalID string) (*models.Account, error)
	Create(account *models.Account) error
}

// PatientStore covers both halves of a patient profile. CreateProfile
// persists the halves and the login account in one transaction.
type PatientStore interface {
	CreateProfile(personal *models.PatientPersonal, clinical *models.PatientClinical, account *models.Account) error
	FindPersonalByPatientID(patientID string) (*models.PatientPersonal, error)
	FindClinicalByPatientID(patientID string) (*models.PatientClinical, error)
	UpdatePersonal(patientID string, updates map[string]interface{}) (*models.PatientPersonal, error)
	UpdateClinical(patientID string, updates map[string]interface{}) (*models.PatientClinical, error)
	PatientIDExists(patientID string) (bool, error)
}

// HospitalStore is the hospital profile contract. Create persists the
// profile and the login account in one transaction.
type HospitalStore interface {
	Create(hospital *models.Hospital, account *models.Account) error
	FindByHospitalID(hospitalID string) (*models.Hospital, error)
	Update(hospitalID string, updates map[string]interface{}) (*models.Hospital, error)
}

// RecordStore is the visit record contract
type RecordStore interface {
	Create(record *models.VisitRecord) error
	FindByPatientAndID(patientID string, visitID uint) (*models.VisitRecord, error)
	ListByPatient(patientID string, offset, limit int) ([]models.VisitRecord, error)
	CountByPatient(patientID string) (int64, error)
	ListRecent(patientID string, n int) ([]models.VisitRecord, error)
	ListChronological(patientID string) ([]models.VisitRecord, error)
}

// AuditTrail records best-effort audit entries
type AuditTrail interface {
	CreateAuditLog(accountID *uint, action string, details string) error
}

// CredentialNotifier queues a fire-and-forget credential email
type CredentialNotifier interface {
	Enqueue(to, loginID, password string)
}
