package repository

import (
	"context"

	"github.com/gisgate/backend/domain"
)

type UserRepository interface {
	// FindByEmail returns exactly one user for the normalized email within
	// the application, or domain.ErrUserNotFound.
	FindByEmail(ctx context.Context, application, email string) (*domain.User, error)
	FindByAdminToken(ctx context.Context, application, adminToken string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Save(ctx context.Context, user *domain.User) error
	// RecordLogin stamps the last-login instant. Best-effort at call sites.
	RecordLogin(ctx context.Context, id string) error
	ListWaiting(ctx context.Context, application string) ([]*domain.User, error)
}
