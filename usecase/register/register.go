// Package register implements self-service account management: registration
// of pending users plus password and email changes.
package register

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/internal/notify"
	"github.com/gisgate/backend/pkg/password"
	"github.com/gisgate/backend/repository"
)

type UseCase struct {
	users    repository.UserRepository
	tenants  repository.TenantRepository
	notifier notify.Dispatcher
	pepper   string
	adminURL string
	logger   *zap.Logger
}

func New(
	users repository.UserRepository,
	tenants repository.TenantRepository,
	notifier notify.Dispatcher,
	pepper string,
	adminURL string,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		tenants:  tenants,
		notifier: notifier,
		pepper:   pepper,
		adminURL: adminURL,
		logger:   logger,
	}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name        string
	Email       string
	Agency      string
	Password    string
	Application string
	Access      *domain.AccessWindow
}

// Register creates a pending user and notifies the tenant administrators.
// The new record is neither approved nor active until an administrator
// decides; roles stay empty until acceptance.
func (uc *UseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Email == "" || input.Password == "" || input.Application == "" {
		return nil, domain.ErrMalformedRequest
	}

	cfg, err := uc.tenants.Load(ctx, input.Application)
	if err != nil {
		return nil, err
	}

	salt, err := password.GenerateSalt()
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to generate salt", err)
	}
	hash, err := password.Hash(input.Password, salt, uc.pepper)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        domain.NormalizeEmail(input.Email),
		Name:         input.Name,
		Agency:       input.Agency,
		Application:  input.Application,
		Roles:        []string{},
		Approved:     false,
		Active:       false,
		Access:       input.Access,
		PasswordHash: hash,
		Salt:         salt,
	}

	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.notifier.NewUserRegistered(notify.RegisteredPayload{
		To:          cfg.AdministrativeEmails,
		Name:        user.Name,
		Email:       user.Email,
		Agency:      user.Agency,
		Application: input.Application,
		Description: cfg.Description,
		Roles:       cfg.Roles,
		AdminURL:    uc.adminURL,
	}); err != nil {
		uc.logger.Error("failed to queue registration notification",
			zap.String("email", user.Email), zap.Error(err))
	}

	return user, nil
}

// ChangePasswordInput carries a password-change request.
type ChangePasswordInput struct {
	Email       string
	Application string
	Current     string
	New         string
	NewRepeated string
}

// ChangePassword verifies the current password and re-salts and re-hashes the
// new one. The fresh salt means two users choosing the same password never
// share a digest.
func (uc *UseCase) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	if input.New == "" || input.New != input.NewRepeated {
		return domain.ErrMalformedRequest
	}

	user, err := uc.users.FindByEmail(ctx, input.Application, input.Email)
	if err != nil {
		return err
	}

	if !password.Verify(input.Current, user.PasswordHash, user.Salt, uc.pepper) {
		return domain.ErrInvalidCredentials
	}

	salt, err := password.GenerateSalt()
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "failed to generate salt", err)
	}
	hash, err := password.Hash(input.New, salt, uc.pepper)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}

	user.Salt = salt
	user.PasswordHash = hash
	return uc.users.Save(ctx, user)
}

// ChangeEmailInput carries an email-change request.
type ChangeEmailInput struct {
	Email       string
	NewEmail    string
	Password    string
	Application string
}

// ChangeEmail verifies the password and moves the account to the new address.
func (uc *UseCase) ChangeEmail(ctx context.Context, input ChangeEmailInput) error {
	if input.NewEmail == "" {
		return domain.ErrMalformedRequest
	}

	user, err := uc.users.FindByEmail(ctx, input.Application, input.Email)
	if err != nil {
		return err
	}

	if !password.Verify(input.Password, user.PasswordHash, user.Salt, uc.pepper) {
		return domain.ErrInvalidCredentials
	}

	user.Email = domain.NormalizeEmail(input.NewEmail)
	return uc.users.Save(ctx, user)
}
