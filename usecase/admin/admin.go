// Package admin implements the authorization lifecycle: approving and
// rejecting registration requests and the queries administrators use to
// review them.
package admin

import (
	"context"

	"go.uber.org/zap"

	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/internal/notify"
	"github.com/gisgate/backend/repository"
)

// Links carries the URLs embedded in notification emails.
type Links struct {
	BaseURL  string
	AdminURL string
}

type UseCase struct {
	users    repository.UserRepository
	tenants  repository.TenantRepository
	notifier notify.Dispatcher
	links    Links
	logger   *zap.Logger
}

func New(
	users repository.UserRepository,
	tenants repository.TenantRepository,
	notifier notify.Dispatcher,
	links Links,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		tenants:  tenants,
		notifier: notifier,
		links:    links,
		logger:   logger,
	}
}

// Accept approves the user and grants the requested roles atomically. Every
// requested role must exist in the tenant configuration; nothing is mutated
// otherwise. Reapplying the same acceptance is a no-op at the state layer.
func (uc *UseCase) Accept(ctx context.Context, application, email string, roles []string) (*domain.User, error) {
	cfg, err := uc.tenants.Load(ctx, application)
	if err != nil {
		return nil, err
	}

	normalized := domain.NormalizeRoles(roles)
	if len(normalized) == 0 {
		return nil, domain.ErrMalformedRequest
	}
	for _, role := range normalized {
		if !cfg.HasRole(role) {
			return nil, domain.ErrRoleUnknown
		}
	}

	user, err := uc.users.FindByEmail(ctx, application, email)
	if err != nil {
		return nil, err
	}

	user.Approved = true
	user.Active = true
	user.Roles = normalized
	if err := uc.users.Save(ctx, user); err != nil {
		return nil, err
	}

	// hand-off only: delivery failure never undoes the approval
	if err := uc.notifier.UserAccepted(notify.AcceptedPayload{
		To:          []string{user.Email},
		AdminEmails: cfg.AdministrativeEmails,
		Name:        user.Name,
		Email:       user.Email,
		Roles:       user.Roles,
		Application: application,
		BaseURL:     uc.links.BaseURL,
	}); err != nil {
		uc.logger.Error("failed to queue acceptance notification",
			zap.String("email", user.Email), zap.Error(err))
	}

	return user, nil
}

// Reject revokes approval, deactivates the user and clears both the role set
// and any outstanding admin token. Safe to reapply.
func (uc *UseCase) Reject(ctx context.Context, application, email string) (*domain.User, error) {
	cfg, err := uc.tenants.Load(ctx, application)
	if err != nil {
		return nil, err
	}

	user, err := uc.users.FindByEmail(ctx, application, email)
	if err != nil {
		return nil, err
	}

	user.Approved = false
	user.Active = false
	user.Roles = []string{}
	user.AdminToken = ""
	if err := uc.users.Save(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.notifier.UserRejected(notify.RejectedPayload{
		To:          []string{user.Email},
		AdminEmails: cfg.AdministrativeEmails,
		Name:        user.Name,
		Application: application,
	}); err != nil {
		uc.logger.Error("failed to queue rejection notification",
			zap.String("email", user.Email), zap.Error(err))
	}

	return user, nil
}

// Waiting lists registrations that have not been decided yet.
func (uc *UseCase) Waiting(ctx context.Context, application string) ([]*domain.User, error) {
	return uc.users.ListWaiting(ctx, application)
}

// Roles returns the granted roles for a user.
func (uc *UseCase) Roles(ctx context.Context, application, email string) ([]string, error) {
	user, err := uc.users.FindByEmail(ctx, application, email)
	if err != nil {
		return nil, err
	}
	return user.Roles, nil
}

// CreateApplication records the tenant configuration administration depends
// on. Provisioning mechanics beyond this record live elsewhere.
func (uc *UseCase) CreateApplication(ctx context.Context, cfg *domain.TenantConfig) error {
	if cfg == nil || cfg.Application == "" || len(cfg.AdministrativeEmails) == 0 || len(cfg.Roles) == 0 {
		return domain.ErrMalformedRequest
	}
	return uc.tenants.Create(ctx, cfg)
}

// ValidateAdminToken resolves an admin token to the privileged user who owns
// it, for protecting administrative endpoints.
func (uc *UseCase) ValidateAdminToken(ctx context.Context, application, token string) (*domain.User, error) {
	user, err := uc.users.FindByAdminToken(ctx, application, token)
	if err != nil {
		return nil, domain.ErrTicketInvalid
	}
	if !user.IsAuthorized() {
		return nil, domain.ErrTicketInvalid
	}
	return user, nil
}
