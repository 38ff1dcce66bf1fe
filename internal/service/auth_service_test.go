package service

import (
	"context"
	"testing"
	"time"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/internal/session"
	"clinical-records-backend/pkg/apperr"
	"clinical-records-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens() *utils.TokenManager {
	return utils.NewTokenManager("test-secret", time.Hour)
}

func storedAccount(t *testing.T, role models.Role, externalID, password string) *models.Account {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return &models.Account{
		Role:         role,
		ExternalID:   externalID,
		PasswordHash: hash,
	}
}

func TestLoginMintsVerifiableToken(t *testing.T) {
	tokens := newTestTokens()
	account := storedAccount(t, models.RolePatient, "1234567890", "correct horse")
	accounts := &MockAccountStore{
		FindByExternalIDFunc: func(role models.Role, externalID string) (*models.Account, error) {
			assert.Equal(t, models.RolePatient, role)
			assert.Equal(t, "1234567890", externalID)
			return account, nil
		},
	}
	audit := &recordingAudit{}
	svc := NewAuthService(accounts, audit, tokens, session.NewMemoryRevoker())

	resp, err := svc.Login(models.RolePatient, "1234567890", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", resp.SubjectID)
	assert.Equal(t, models.RolePatient, resp.Role)

	claims, err := tokens.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", claims.SubjectID)
	assert.Equal(t, "patient", claims.Role)
	assert.NotEmpty(t, claims.ID)

	assert.Contains(t, audit.actions, "login")
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	tokens := newTestTokens()
	account := storedAccount(t, models.RoleHospital, "9999999999", "right password")
	accounts := &MockAccountStore{
		FindByExternalIDFunc: func(role models.Role, externalID string) (*models.Account, error) {
			if externalID == "9999999999" {
				return account, nil
			}
			return nil, apperr.NotFound("account not found")
		},
	}
	svc := NewAuthService(accounts, nopAudit{}, tokens, session.NewMemoryRevoker())

	_, unknownErr := svc.Login(models.RoleHospital, "0000000000", "whatever")
	_, wrongPwErr := svc.Login(models.RoleHospital, "9999999999", "wrong password")

	// Unknown id and wrong password must look identical on the wire so ids
	// cannot be enumerated through the login endpoint.
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(unknownErr))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(wrongPwErr))
	assert.Equal(t, apperr.Message(unknownErr), apperr.Message(wrongPwErr))
	assert.Equal(t, apperr.Status(unknownErr), apperr.Status(wrongPwErr))
}

func TestLoginValidation(t *testing.T) {
	svc := NewAuthService(&MockAccountStore{}, nopAudit{}, newTestTokens(), session.NewMemoryRevoker())

	_, err := svc.Login(models.RolePatient, "", "pw")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Login(models.RolePatient, "1234567890", "")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Login(models.Role("superuser"), "1234567890", "pw")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestRegisterAuthorityPropagatesConflict(t *testing.T) {
	accounts := &MockAccountStore{
		CreateFunc: func(account *models.Account) error {
			return apperr.Conflict("account already exists")
		},
	}
	svc := NewAuthService(accounts, nopAudit{}, newTestTokens(), session.NewMemoryRevoker())

	_, err := svc.RegisterAuthority("admin", "pw")
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestNewProvisionedAccountHashesWithoutPersisting(t *testing.T) {
	storeTouched := false
	accounts := &MockAccountStore{
		CreateFunc: func(account *models.Account) error {
			storeTouched = true
			return nil
		},
	}
	svc := NewAuthService(accounts, nopAudit{}, newTestTokens(), session.NewMemoryRevoker())

	account, err := svc.NewProvisionedAccount(models.RoleHospital, "5555555555", "one-time-pw")
	require.NoError(t, err)
	assert.Equal(t, models.RoleHospital, account.Role)
	assert.Equal(t, "5555555555", account.ExternalID)
	assert.NotEqual(t, "one-time-pw", account.PasswordHash)
	assert.True(t, utils.ComparePassword(account.PasswordHash, "one-time-pw"))

	// Persistence belongs to the caller's transaction.
	assert.False(t, storeTouched)
}

func TestLogoutRevokesToken(t *testing.T) {
	tokens := newTestTokens()
	revoker := session.NewMemoryRevoker()
	svc := NewAuthService(&MockAccountStore{}, nopAudit{}, tokens, revoker)

	token, claims, err := tokens.Generate("1234567890", "patient")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token))

	revoked, err := revoker.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLogoutIgnoresUnverifiableTokens(t *testing.T) {
	svc := NewAuthService(&MockAccountStore{}, nopAudit{}, newTestTokens(), session.NewMemoryRevoker())

	assert.NoError(t, svc.Logout(context.Background(), ""))
	assert.NoError(t, svc.Logout(context.Background(), "garbage"))

	// A token signed with another secret carries nothing we trust enough to
	// act on.
	foreign, _, err := utils.NewTokenManager("other-secret", time.Hour).Generate("x", "patient")
	require.NoError(t, err)
	assert.NoError(t, svc.Logout(context.Background(), foreign))
}
