package service

import (
	"context"
	"fmt"

	"clinical-records-backend/internal/models"
	"clinical-records-backend/internal/session"
	"clinical-records-backend/pkg/apperr"
	"clinical-records-backend/pkg/utils"
)

// A throwaway bcrypt hash compared against when the account does not
// exist, so unknown-id and wrong-password logins take the same time.
const decoyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

type AuthService struct {
	accounts AccountStore
	audit    AuditTrail
	tokens   *utils.TokenManager
	revoker  session.Revoker
}

func NewAuthService(accounts AccountStore, audit AuditTrail, tokens *utils.TokenManager, revoker session.Revoker) *AuthService {
	return &AuthService{
		accounts: accounts,
		audit:    audit,
		tokens:   tokens,
		revoker:  revoker,
	}
}

// LoginResponse carries the minted token and the identity it asserts
type LoginResponse struct {
	Token     string
	SubjectID string
	Role      models.Role
}

// Login authenticates a role-scoped credential pair and mints a session
// token. Unknown id and wrong password collapse into one generic failure;
// the caller can never tell which ids exist.
func (s *AuthService) Login(role models.Role, externalID, password string) (*LoginResponse, error) {
	if externalID == "" || password == "" {
		return nil, apperr.Validation("id and password are required")
	}
	if !role.Valid() {
		return nil, apperr.Validation("unknown role")
	}

	account, err := s.accounts.FindByExternalID(role, externalID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			utils.ComparePassword(decoyHash, password)
			return nil, apperr.InvalidCredentials()
		}
		return nil, err
	}

	if !utils.ComparePassword(account.PasswordHash, password) {
		return nil, apperr.InvalidCredentials()
	}

	token, _, err := s.tokens.Generate(account.ExternalID, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	accountID := account.ID
	_ = s.audit.CreateAuditLog(&accountID, "login", fmt.Sprintf("%s %s logged in", role, externalID))

	return &LoginResponse{
		Token:     token,
		SubjectID: account.ExternalID,
		Role:      account.Role,
	}, nil
}

// RegisterAuthority self-registers an authority account, the only role
// with open signup, and logs it in immediately.
func (s *AuthService) RegisterAuthority(externalID, password string) (*LoginResponse, error) {
	if externalID == "" || password == "" {
		return nil, apperr.Validation("id and password are required")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Role:         models.RoleAuthority,
		ExternalID:   externalID,
		PasswordHash: hash,
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, err
	}

	token, _, err := s.tokens.Generate(account.ExternalID, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	accountID := account.ID
	_ = s.audit.CreateAuditLog(&accountID, "authority_signup", fmt.Sprintf("authority %s registered", externalID))

	return &LoginResponse{
		Token:     token,
		SubjectID: account.ExternalID,
		Role:      account.Role,
	}, nil
}

// NewProvisionedAccount builds the credential record for a provisioned
// actor (patient or hospital) with the password already hashed. It does not
// persist anything: the caller writes the account in the same transaction
// as the profile, so a failure can never leave a profile without a login.
// The plaintext never leaves the provisioning flow except through the
// credential mail.
func (s *AuthService) NewProvisionedAccount(role models.Role, externalID, password string) (*models.Account, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &models.Account{
		Role:         role,
		ExternalID:   externalID,
		PasswordHash: hash,
	}, nil
}

// Logout deny-lists the token's jti until its natural expiry. Tokens are
// stateless, so this is the only server-side invalidation; a token that
// does not verify carries nothing to revoke and is ignored.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		return nil
	}

	claims, err := s.tokens.ParseAllowExpired(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}

	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	_ = s.audit.CreateAuditLog(nil, "logout", fmt.Sprintf("%s %s logged out", claims.Role, claims.SubjectID))
	return nil
}
