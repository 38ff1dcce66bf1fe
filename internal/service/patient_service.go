package service

import (
	"encoding/json"
	"fmt"
	"time"

	"clinical-records-backend/internal/logger"
	"clinical-records-backend/internal/models"
	"clinical-records-backend/pkg/apperr"
	"clinical-records-backend/pkg/utils"

	"gorm.io/datatypes"
)

// patientIDAttempts bounds the collision retry loop when generating a new
// patient id. 10-digit ids make collisions vanishingly rare; the unique
// index remains the final arbiter under concurrency.
const patientIDAttempts = 5

type PatientService struct {
	patients PatientStore
	auth     *AuthService
	audit    AuditTrail
	notify   CredentialNotifier
}

func NewPatientService(patients PatientStore, auth *AuthService, audit AuditTrail, notify CredentialNotifier) *PatientService {
	return &PatientService{
		patients: patients,
		auth:     auth,
		audit:    audit,
		notify:   notify,
	}
}

// CreatePatientInput is the explicit input contract for registering a
// patient: the personal half plus the static clinical half.
type CreatePatientInput struct {
	FullName       string
	DateOfBirth    time.Time
	Gender         string
	Height         float64
	Weight         float64
	PhoneNumber    string
	Email          string
	EmergencyPhone string
	Address        *models.Address

	BloodType            string
	Allergies            []models.Allergy
	ChronicConditions    []models.ChronicCondition
	FamilyMedicalHistory []models.FamilyHistoryEntry
	ImmunizationRecords  []models.Immunization
	PolicyNumber         string
	Insurance            *models.InsuranceDetails
}

// UpdatePersonalInput lists the mutable personal fields. Nil means "leave
// unchanged"; the patient id itself is not updatable by design.
type UpdatePersonalInput struct {
	FullName       *string
	Gender         *string
	Height         *float64
	Weight         *float64
	PhoneNumber    *string
	Email          *string
	EmergencyPhone *string
	Address        *models.Address
}

// UpdateClinicalInput lists the mutable clinical fields
type UpdateClinicalInput struct {
	BloodType            *string
	Allergies            []models.Allergy
	ChronicConditions    []models.ChronicCondition
	FamilyMedicalHistory []models.FamilyHistoryEntry
	ImmunizationRecords  []models.Immunization
	PolicyNumber         *string
	Insurance            *models.InsuranceDetails
}

// PatientSummary is the composed view joining both halves of the profile
type PatientSummary struct {
	PatientID string          `json:"patient_id"`
	Age       int             `json:"age"`
	Height    float64         `json:"height"`
	Weight    float64         `json:"weight"`
	BloodType string          `json:"bloodType"`
	Allergies json.RawMessage `json:"allergies"`
}

// CreatePatient provisions a new patient: a fresh 10-digit patient id, a
// random one-time password, both profile halves keyed by the id, a login
// account, and a credential mail. Uniqueness violations on phone, email or
// policy number surface as conflicts for the caller to resolve.
func (s *PatientService) CreatePatient(input CreatePatientInput) (*models.PatientPersonal, error) {
	if input.PhoneNumber == "" {
		return nil, apperr.Validation("phone number is required")
	}
	if input.FullName == "" {
		return nil, apperr.Validation("full name is required")
	}
	if input.DateOfBirth.IsZero() {
		return nil, apperr.Validation("date of birth is required")
	}

	patientID, err := s.newPatientID()
	if err != nil {
		return nil, err
	}

	password, err := utils.GenerateRandomPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	account, err := s.auth.NewProvisionedAccount(models.RolePatient, patientID, password)
	if err != nil {
		return nil, err
	}

	personal := &models.PatientPersonal{
		PatientID:      patientID,
		FullName:       input.FullName,
		DateOfBirth:    input.DateOfBirth,
		Age:            ageAt(input.DateOfBirth, time.Now()),
		Gender:         input.Gender,
		Height:         input.Height,
		Weight:         input.Weight,
		PhoneNumber:    input.PhoneNumber,
		Email:          input.Email,
		EmergencyPhone: input.EmergencyPhone,
	}
	if input.Address != nil {
		personal.Address = mustJSON(input.Address)
	}

	clinical := &models.PatientClinical{
		PatientID:            patientID,
		BloodType:            input.BloodType,
		Allergies:            mustJSON(orEmpty(input.Allergies)),
		ChronicConditions:    mustJSON(orEmpty(input.ChronicConditions)),
		FamilyMedicalHistory: mustJSON(orEmpty(input.FamilyMedicalHistory)),
		ImmunizationRecords:  mustJSON(orEmpty(input.ImmunizationRecords)),
	}
	if input.PolicyNumber != "" {
		clinical.PolicyNumber = &input.PolicyNumber
	}
	if input.Insurance != nil {
		clinical.InsuranceDetails = mustJSON(input.Insurance)
	}

	// One transaction covers both halves and the login account: a failed
	// provisioning run never strands a profile that holds the phone, email
	// and policy unique slots without a way to log in.
	if err := s.patients.CreateProfile(personal, clinical, account); err != nil {
		return nil, err
	}

	if input.Email != "" {
		s.notify.Enqueue(input.Email, patientID, password)
	}

	_ = s.audit.CreateAuditLog(nil, "patient_create", fmt.Sprintf("patient %s registered", patientID))
	logger.WithField("patient_id", patientID).Info("Patient registered")

	return personal, nil
}

// GetPersonalData returns the personal half of a patient profile
func (s *PatientService) GetPersonalData(patientID string) (*models.PatientPersonal, error) {
	personal, err := s.patients.FindPersonalByPatientID(patientID)
	if err != nil {
		return nil, err
	}
	personal.Age = ageAt(personal.DateOfBirth, time.Now())
	return personal, nil
}

// GetMedicalData returns the clinical half of a patient profile
func (s *PatientService) GetMedicalData(patientID string) (*models.PatientClinical, error) {
	return s.patients.FindClinicalByPatientID(patientID)
}

// GetSummary joins the two halves into one view. A missing half is a data
// integrity error and reads as not found; partial data is never returned.
func (s *PatientService) GetSummary(patientID string) (*PatientSummary, error) {
	personal, err := s.patients.FindPersonalByPatientID(patientID)
	if err != nil {
		return nil, err
	}
	clinical, err := s.patients.FindClinicalByPatientID(patientID)
	if err != nil {
		return nil, err
	}

	allergies := json.RawMessage(clinical.Allergies)
	if len(allergies) == 0 {
		allergies = json.RawMessage("[]")
	}

	return &PatientSummary{
		PatientID: patientID,
		Age:       ageAt(personal.DateOfBirth, time.Now()),
		Height:    personal.Height,
		Weight:    personal.Weight,
		BloodType: clinical.BloodType,
		Allergies: allergies,
	}, nil
}

// UpdatePersonal applies the allow-listed personal fields. Anything the
// input struct does not model, including the patient id, cannot reach the
// database.
func (s *PatientService) UpdatePersonal(patientID string, input UpdatePersonalInput) (*models.PatientPersonal, error) {
	updates := map[string]interface{}{}
	if input.FullName != nil {
		updates["full_name"] = *input.FullName
	}
	if input.Gender != nil {
		updates["gender"] = *input.Gender
	}
	if input.Height != nil {
		updates["height"] = *input.Height
	}
	if input.Weight != nil {
		updates["weight"] = *input.Weight
	}
	if input.PhoneNumber != nil {
		updates["phone_number"] = *input.PhoneNumber
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.EmergencyPhone != nil {
		updates["emergency_phone"] = *input.EmergencyPhone
	}
	if input.Address != nil {
		updates["address"] = mustJSON(input.Address)
	}
	if len(updates) == 0 {
		return nil, apperr.Validation("no updatable fields supplied")
	}

	personal, err := s.patients.UpdatePersonal(patientID, updates)
	if err != nil {
		return nil, err
	}

	_ = s.audit.CreateAuditLog(nil, "patient_update", fmt.Sprintf("patient %s personal data updated", patientID))
	return personal, nil
}

// UpdateClinical applies the allow-listed clinical fields
func (s *PatientService) UpdateClinical(patientID string, input UpdateClinicalInput) (*models.PatientClinical, error) {
	updates := map[string]interface{}{}
	if input.BloodType != nil {
		updates["blood_type"] = *input.BloodType
	}
	if input.Allergies != nil {
		updates["allergies"] = mustJSON(input.Allergies)
	}
	if input.ChronicConditions != nil {
		updates["chronic_conditions"] = mustJSON(input.ChronicConditions)
	}
	if input.FamilyMedicalHistory != nil {
		updates["family_medical_history"] = mustJSON(input.FamilyMedicalHistory)
	}
	if input.ImmunizationRecords != nil {
		updates["immunization_records"] = mustJSON(input.ImmunizationRecords)
	}
	if input.PolicyNumber != nil {
		updates["policy_number"] = *input.PolicyNumber
	}
	if input.Insurance != nil {
		updates["insurance_details"] = mustJSON(input.Insurance)
	}
	if len(updates) == 0 {
		return nil, apperr.Validation("no updatable fields supplied")
	}

	clinical, err := s.patients.UpdateClinical(patientID, updates)
	if err != nil {
		return nil, err
	}

	_ = s.audit.CreateAuditLog(nil, "patient_clinical_update", fmt.Sprintf("patient %s clinical data updated", patientID))
	return clinical, nil
}

// newPatientID draws random 10-digit ids until one is unclaimed. A race on
// the final insert still resolves through the unique index as a conflict.
func (s *PatientService) newPatientID() (string, error) {
	for i := 0; i < patientIDAttempts; i++ {
		id, err := utils.GenerateNumericID()
		if err != nil {
			return "", err
		}
		exists, err := s.patients.PatientIDExists(id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", apperr.Conflict("could not allocate a unique patient id")
}

// ageAt computes whole years between dob and now, original calendar logic
func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}

func mustJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		// Only reachable with unmarshalable values, which the input
		// structs cannot produce.
		return datatypes.JSON("null")
	}
	return datatypes.JSON(data)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
