package service

import (
	"fmt"

	"clinical-records-backend/internal/logger"
	"clinical-records-backend/internal/models"
	"clinical-records-backend/pkg/apperr"
	"clinical-records-backend/pkg/utils"
)

type HospitalService struct {
	hospitals HospitalStore
	auth      *AuthService
	audit     AuditTrail
	notify    CredentialNotifier
}

func NewHospitalService(hospitals HospitalStore, auth *AuthService, audit AuditTrail, notify CredentialNotifier) *HospitalService {
	return &HospitalService{
		hospitals: hospitals,
		auth:      auth,
		audit:     audit,
		notify:    notify,
	}
}

// CreateHospitalInput is the input contract for provisioning a hospital
type CreateHospitalInput struct {
	Name        string
	Address     *models.Address
	PhoneNumber string
	Email       string
}

// UpdateHospitalInput lists the mutable hospital fields; the hospital id
// itself is immutable.
type UpdateHospitalInput struct {
	Name        *string
	Address     *models.Address
	PhoneNumber *string
	Email       *string
}

// CreateHospital provisions a hospital: generated 10-digit hospital id,
// random one-time password, profile row, login account, credential mail.
func (s *HospitalService) CreateHospital(input CreateHospitalInput) (*models.Hospital, error) {
	if input.Name == "" {
		return nil, apperr.Validation("hospital name is required")
	}
	if input.PhoneNumber == "" || input.Email == "" {
		return nil, apperr.Validation("phone number and email are required")
	}

	hospitalID, err := utils.GenerateNumericID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate hospital id: %w", err)
	}

	password, err := utils.GenerateRandomPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	account, err := s.auth.NewProvisionedAccount(models.RoleHospital, hospitalID, password)
	if err != nil {
		return nil, err
	}

	hospital := &models.Hospital{
		HospitalID:  hospitalID,
		Name:        input.Name,
		PhoneNumber: input.PhoneNumber,
		Email:       input.Email,
	}
	if input.Address != nil {
		hospital.Address = mustJSON(input.Address)
	}

	// Profile and login account land in one transaction; a failure leaves
	// no hospital row holding the name/phone/email unique slots.
	if err := s.hospitals.Create(hospital, account); err != nil {
		return nil, err
	}

	s.notify.Enqueue(input.Email, hospitalID, password)

	_ = s.audit.CreateAuditLog(nil, "hospital_create", fmt.Sprintf("hospital %s (%s) registered", input.Name, hospitalID))
	logger.WithField("hospital_id", hospitalID).Info("Hospital registered")

	return hospital, nil
}

// GetHospital returns a hospital profile by its business key
func (s *HospitalService) GetHospital(hospitalID string) (*models.Hospital, error) {
	return s.hospitals.FindByHospitalID(hospitalID)
}

// UpdateHospital applies the allow-listed hospital fields
func (s *HospitalService) UpdateHospital(hospitalID string, input UpdateHospitalInput) (*models.Hospital, error) {
	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Address != nil {
		updates["address"] = mustJSON(input.Address)
	}
	if input.PhoneNumber != nil {
		updates["phone_number"] = *input.PhoneNumber
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if len(updates) == 0 {
		return nil, apperr.Validation("no updatable fields supplied")
	}

	hospital, err := s.hospitals.Update(hospitalID, updates)
	if err != nil {
		return nil, err
	}

	_ = s.audit.CreateAuditLog(nil, "hospital_update", fmt.Sprintf("hospital %s updated", hospitalID))
	return hospital, nil
}
