package repository

import (
	"context"

	"github.com/gisgate/backend/domain"
)

type TenantRepository interface {
	// Load returns the tenant configuration or domain.ErrTenantNotFound.
	Load(ctx context.Context, application string) (*domain.TenantConfig, error)
	Create(ctx context.Context, config *domain.TenantConfig) error
}
