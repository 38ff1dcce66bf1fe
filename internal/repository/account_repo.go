package repository

import (
	"errors"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/pkg/apperr"

	"gorm.io/gorm"
)

// AccountRepository is the credential store adapter: hashed-password lookup
// and creation per role-scoped collection.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepo(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByExternalID finds an account by role and human-facing login id
func (r *AccountRepository) FindByExternalID(role models.Role, externalID string) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("role = ? AND external_id = ?", role, externalID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("account not found")
		}
		return nil, err
	}
	return &account, nil
}

// Create persists a new account. The password must already be hashed; a
// duplicate (role, external_id) pair is a conflict.
func (r *AccountRepository) Create(account *models.Account) error {
	err := r.db.Create(account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("account already exists")
	}
	return err
}
