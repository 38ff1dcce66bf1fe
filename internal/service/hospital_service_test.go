package service

import (
	"testing"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/pkg/apperr"
	"clinical-records-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHospitalProvisionsProfileAndAccount(t *testing.T) {
	var stored *models.Hospital
	var account *models.Account
	hospitals := &MockHospitalStore{
		CreateFunc: func(hospital *models.Hospital, a *models.Account) error {
			stored, account = hospital, a
			return nil
		},
	}
	notifier := &recordingNotifier{}
	svc := NewHospitalService(hospitals, newTestAuth(), nopAudit{}, notifier)

	hospital, err := svc.CreateHospital(CreateHospitalInput{
		Name:        "St. Elsewhere",
		PhoneNumber: "+31200000001",
		Email:       "admin@st-elsewhere.example",
	})
	require.NoError(t, err)
	require.NotNil(t, stored)

	// Profile and login account arrive in the same store call.
	assert.Len(t, hospital.HospitalID, 10)
	require.NotNil(t, account)
	assert.Equal(t, models.RoleHospital, account.Role)
	assert.Equal(t, hospital.HospitalID, account.ExternalID)

	// Hospitals always have a contact address, so the mail is unconditional.
	require.Len(t, notifier.to, 1)
	assert.Equal(t, "admin@st-elsewhere.example", notifier.to[0])
	assert.Equal(t, hospital.HospitalID, notifier.loginIDs[0])
	assert.True(t, utils.ComparePassword(account.PasswordHash, notifier.passwords[0]))
}

func TestCreateHospitalSendsNoMailWhenPersistFails(t *testing.T) {
	hospitals := &MockHospitalStore{
		CreateFunc: func(hospital *models.Hospital, a *models.Account) error {
			return apperr.Conflict("hospital name, phone number or email already exists")
		},
	}
	notifier := &recordingNotifier{}
	svc := NewHospitalService(hospitals, newTestAuth(), nopAudit{}, notifier)

	_, err := svc.CreateHospital(CreateHospitalInput{
		Name:        "St. Elsewhere",
		PhoneNumber: "+31200000001",
		Email:       "admin@st-elsewhere.example",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	assert.Empty(t, notifier.to)
}

func TestCreateHospitalValidatesRequiredFields(t *testing.T) {
	svc := NewHospitalService(&MockHospitalStore{}, nil, nopAudit{}, &recordingNotifier{})

	_, err := svc.CreateHospital(CreateHospitalInput{PhoneNumber: "+312", Email: "a@b"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.CreateHospital(CreateHospitalInput{Name: "Clinic"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestUpdateHospitalAllowList(t *testing.T) {
	var gotUpdates map[string]interface{}
	hospitals := &MockHospitalStore{
		UpdateFunc: func(hospitalID string, updates map[string]interface{}) (*models.Hospital, error) {
			gotUpdates = updates
			return &models.Hospital{HospitalID: hospitalID}, nil
		},
	}
	svc := NewHospitalService(hospitals, nil, nopAudit{}, &recordingNotifier{})

	phone := "+31200000099"
	_, err := svc.UpdateHospital("5555555555", UpdateHospitalInput{PhoneNumber: &phone})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"phone_number": "+31200000099"}, gotUpdates)

	_, err = svc.UpdateHospital("5555555555", UpdateHospitalInput{})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
