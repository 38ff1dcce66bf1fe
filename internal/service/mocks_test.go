package service

import (
	"context"

	"clinical-records-backend/internal/models"
)

// MockAccountStore is a func-field mock of AccountStore. Tests set only the
// fields they exercise; an unset field panics and points at the gap.
type MockAccountStore struct {
	FindByExternalIDFunc func(role models.Role, externalID string) (*models.Account, error)
	CreateFunc           func(account *models.Account) error
}

func (m *MockAccountStore) FindByExternalID(role models.Role, externalID string) (*models.Account, error) {
	return m.FindByExternalIDFunc(role, externalID)
}

func (m *MockAccountStore) Create(account *models.Account) error {
	return m.CreateFunc(account)
}

// MockPatientStore is a func-field mock of PatientStore
type MockPatientStore struct {
	CreateProfileFunc           func(personal *models.PatientPersonal, clinical *models.PatientClinical, account *models.Account) error
	FindPersonalByPatientIDFunc func(patientID string) (*models.PatientPersonal, error)
	FindClinicalByPatientIDFunc func(patientID string) (*models.PatientClinical, error)
	UpdatePersonalFunc          func(patientID string, updates map[string]interface{}) (*models.PatientPersonal, error)
	UpdateClinicalFunc          func(patientID string, updates map[string]interface{}) (*models.PatientClinical, error)
	PatientIDExistsFunc         func(patientID string) (bool, error)
}

func (m *MockPatientStore) CreateProfile(personal *models.PatientPersonal, clinical *models.PatientClinical, account *models.Account) error {
	return m.CreateProfileFunc(personal, clinical, account)
}

func (m *MockPatientStore) FindPersonalByPatientID(patientID string) (*models.PatientPersonal, error) {
	return m.FindPersonalByPatientIDFunc(patientID)
}

func (m *MockPatientStore) FindClinicalByPatientID(patientID string) (*models.PatientClinical, error) {
	return m.FindClinicalByPatientIDFunc(patientID)
}

func (m *MockPatientStore) UpdatePersonal(patientID string, updates map[string]interface{}) (*models.PatientPersonal, error) {
	return m.UpdatePersonalFunc(patientID, updates)
}

func (m *MockPatientStore) UpdateClinical(patientID string, updates map[string]interface{}) (*models.PatientClinical, error) {
	return m.UpdateClinicalFunc(patientID, updates)
}

func (m *MockPatientStore) PatientIDExists(patientID string) (bool, error) {
	return m.PatientIDExistsFunc(patientID)
}

// MockHospitalStore is a func-field mock of HospitalStore
type MockHospitalStore struct {
	CreateFunc           func(hospital *models.Hospital, account *models.Account) error
	FindByHospitalIDFunc func(hospitalID string) (*models.Hospital, error)
	UpdateFunc           func(hospitalID string, updates map[string]interface{}) (*models.Hospital, error)
}

func (m *MockHospitalStore) Create(hospital *models.Hospital, account *models.Account) error {
	return m.CreateFunc(hospital, account)
}

func (m *MockHospitalStore) FindByHospitalID(hospitalID string) (*models.Hospital, error) {
	return m.FindByHospitalIDFunc(hospitalID)
}

func (m *MockHospitalStore) Update(hospitalID string, updates map[string]interface{}) (*models.Hospital, error) {
	return m.UpdateFunc(hospitalID, updates)
}

// MockRecordStore is a func-field mock of RecordStore
type MockRecordStore struct {
	CreateFunc             func(record *models.VisitRecord) error
	FindByPatientAndIDFunc func(patientID string, visitID uint) (*models.VisitRecord, error)
	ListByPatientFunc      func(patientID string, offset, limit int) ([]models.VisitRecord, error)
	CountByPatientFunc     func(patientID string) (int64, error)
	ListRecentFunc         func(patientID string, n int) ([]models.VisitRecord, error)
	ListChronologicalFunc  func(patientID string) ([]models.VisitRecord, error)
}

func (m *MockRecordStore) Create(record *models.VisitRecord) error {
	return m.CreateFunc(record)
}

func (m *MockRecordStore) FindByPatientAndID(patientID string, visitID uint) (*models.VisitRecord, error) {
	return m.FindByPatientAndIDFunc(patientID, visitID)
}

func (m *MockRecordStore) ListByPatient(patientID string, offset, limit int) ([]models.VisitRecord, error) {
	return m.ListByPatientFunc(patientID, offset, limit)
}

func (m *MockRecordStore) CountByPatient(patientID string) (int64, error) {
	return m.CountByPatientFunc(patientID)
}

func (m *MockRecordStore) ListRecent(patientID string, n int) ([]models.VisitRecord, error) {
	return m.ListRecentFunc(patientID, n)
}

func (m *MockRecordStore) ListChronological(patientID string) ([]models.VisitRecord, error) {
	return m.ListChronologicalFunc(patientID)
}

// MockObjectStore is a func-field mock of storage.ObjectStore
type MockObjectStore struct {
	PutFunc       func(ctx context.Context, key string, data []byte, contentType string) error
	SignedURLFunc func(ctx context.Context, key string) (string, error)
}

func (m *MockObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return m.PutFunc(ctx, key, data, contentType)
}

func (m *MockObjectStore) SignedURL(ctx context.Context, key string) (string, error) {
	return m.SignedURLFunc(ctx, key)
}

// nopAudit discards audit entries; tests that assert on auditing use
// recordingAudit instead.
type nopAudit struct{}

func (nopAudit) CreateAuditLog(accountID *uint, action, details string) error { return nil }

type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) CreateAuditLog(accountID *uint, action, details string) error {
	r.actions = append(r.actions, action)
	return nil
}

// recordingNotifier captures queued credential mails
type recordingNotifier struct {
	to        []string
	loginIDs  []string
	passwords []string
}

func (r *recordingNotifier) Enqueue(to, loginID, password string) {
	r.to = append(r.to, to)
	r.loginIDs = append(r.loginIDs, loginID)
	r.passwords = append(r.passwords, password)
}
