// Package authn orchestrates authentication: credential verification,
// approval and access-window checks, downstream token exchange, admin-token
// rotation, and session continuation.
package authn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/pkg/password"
	"github.com/gisgate/backend/pkg/ticket"
	"github.com/gisgate/backend/repository"
)

// TokenClient exchanges an application and role for a downstream GIS token.
type TokenClient interface {
	RequestToken(ctx context.Context, application, role string) (*domain.DownstreamToken, error)
}

// UseCase is the login/session orchestrator.
type UseCase struct {
	users          repository.UserRepository
	tenants        repository.TenantRepository
	continuations  repository.ContinuationRepository
	tokens         TokenClient
	tickets        *ticket.Codec
	pepper         string
	privilegedRole string
	logger         *zap.Logger
	now            func() time.Time
}

func New(
	users repository.UserRepository,
	tenants repository.TenantRepository,
	continuations repository.ContinuationRepository,
	tokens TokenClient,
	tickets *ticket.Codec,
	pepper string,
	privilegedRole string,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if privilegedRole == "" {
		privilegedRole = "admin"
	}
	return &UseCase{
		users:          users,
		tenants:        tenants,
		continuations:  continuations,
		tokens:         tokens,
		tickets:        tickets,
		pepper:         pepper,
		privilegedRole: privilegedRole,
		logger:         logger,
		now:            time.Now,
	}
}

// PersistentTTL exposes the lifetime of persistent continuation tickets, for
// callers that surface the ticket as a cookie.
func (uc *UseCase) PersistentTTL() time.Duration {
	return uc.tickets.TTL(true)
}

// LoginInput carries the credentials presented by the caller.
type LoginInput struct {
	Email       string
	Password    string
	Application string
	Persist     bool
}

// Login runs the authentication flow in strict order, short-circuiting on the
// first failure. Each denial is a typed domain outcome, never a panic.
func (uc *UseCase) Login(ctx context.Context, input LoginInput) (*domain.SessionArtifact, error) {
	user, err := uc.users.FindByEmail(ctx, input.Application, input.Email)
	if err != nil {
		return nil, err
	}

	if !password.Verify(input.Password, user.PasswordHash, user.Salt, uc.pepper) {
		return nil, domain.ErrInvalidCredentials
	}

	if user.Application != input.Application {
		return nil, domain.ErrTenantMismatch
	}

	artifact, err := uc.establishSession(ctx, user, input.Application)
	if err != nil {
		return nil, err
	}

	if uc.tickets != nil {
		if err := uc.issueContinuation(ctx, artifact, user, input.Persist); err != nil {
			// a session without a continuation ticket is still a valid login
			uc.logger.Warn("failed to issue continuation ticket",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return artifact, nil
}

// Resume replays the authentication flow for a previously issued continuation
// ticket. The ticket is the proof of prior authentication, so the password
// check is skipped; everything else is re-evaluated, including admin-token
// rotation for privileged roles.
func (uc *UseCase) Resume(ctx context.Context, opaqueTicket, application string) (*domain.SessionArtifact, error) {
	claims, err := uc.tickets.Decode(opaqueTicket)
	if err != nil {
		return nil, err
	}
	if claims.Application != application {
		return nil, domain.ErrTenantMismatch
	}

	session, err := uc.continuations.Get(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.now()) || session.Email != claims.Subject || session.Application != application {
		return nil, domain.ErrTicketInvalid
	}

	user, err := uc.users.FindByEmail(ctx, application, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user.Application != application {
		return nil, domain.ErrTenantMismatch
	}

	return uc.establishSession(ctx, user, application)
}

// Revoke invalidates the continuation session referenced by the ticket.
// Signing out with an invalid ticket is a no-op, not an error.
func (uc *UseCase) Revoke(ctx context.Context, opaqueTicket string) error {
	claims, err := uc.tickets.Decode(opaqueTicket)
	if err != nil {
		return nil
	}
	return uc.continuations.Delete(ctx, claims.ID)
}

// establishSession performs the shared tail of the flow: access window,
// downstream token, admin-token rotation, last-login stamp.
func (uc *UseCase) establishSession(ctx context.Context, user *domain.User, application string) (*domain.SessionArtifact, error) {
	cfg, err := uc.tenants.Load(ctx, application)
	if err != nil {
		return nil, err
	}

	if cfg.UsersCanExpire {
		decision, bound := domain.EvaluateWindow(uc.now(), user.Access)
		if decision != domain.WindowPermitted {
			return nil, &domain.AccessWindowError{Reason: decision, Bound: bound}
		}
	}

	// a pending or rejected user carries no roles and must be denied before
	// the downstream client is ever reached
	if !user.IsAuthorized() || len(user.Roles) == 0 {
		return nil, domain.ErrRoleNotAssigned
	}

	token, err := uc.tokens.RequestToken(ctx, application, user.PrimaryRole())
	if err != nil {
		var dErr *domain.DownstreamError
		if !errors.As(err, &dErr) {
			uc.logger.Error("token exchange transport failure",
				zap.String("user_id", user.ID), zap.Error(err))
		}
		return nil, err
	}

	if user.HasRole(uc.privilegedRole) {
		user.AdminToken = fmt.Sprintf("%s.%s", user.ID, uuid.NewString())
		if err := uc.users.Save(ctx, user); err != nil {
			return nil, domain.WrapError(domain.ErrCodeInternal, "failed to rotate admin token", err)
		}
	}

	if err := uc.users.RecordLogin(ctx, user.ID); err != nil {
		uc.logger.Warn("failed to record last login",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	return &domain.SessionArtifact{
		Token:      *token,
		Email:      user.Email,
		Name:       user.Name,
		Roles:      user.Roles,
		AdminToken: user.AdminToken,
	}, nil
}

func (uc *UseCase) issueContinuation(ctx context.Context, artifact *domain.SessionArtifact, user *domain.User, persist bool) error {
	opaque, id, err := uc.tickets.Issue(user.Email, user.Application, persist)
	if err != nil {
		return err
	}

	now := uc.now()
	session := &domain.ContinuationSession{
		ID:          id,
		Email:       domain.NormalizeEmail(user.Email),
		Application: user.Application,
		Persist:     persist,
		CreatedAt:   now,
		ExpiresAt:   now.Add(uc.tickets.TTL(persist)),
	}
	if err := uc.continuations.Save(ctx, session); err != nil {
		return err
	}

	artifact.Ticket = opaque
	return nil
}
