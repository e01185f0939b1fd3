package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/repository"
)

type tenantRepository struct {
	pool *pgxpool.Pool
}

// NewTenantRepository instantiates a Postgres-backed tenant config repository.
func NewTenantRepository(pool *pgxpool.Pool) repository.TenantRepository {
	return &tenantRepository{pool: pool}
}

func (r *tenantRepository) Load(ctx context.Context, application string) (*domain.TenantConfig, error) {
	const query = `
		SELECT application, admin_emails, description, roles, users_can_expire
		FROM tenants
		WHERE application = $1
	`
	row := r.pool.QueryRow(ctx, query, application)

	var cfg domain.TenantConfig
	err := row.Scan(&cfg.Application, &cfg.AdministrativeEmails, &cfg.Description, &cfg.Roles, &cfg.UsersCanExpire)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTenantNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *tenantRepository) Create(ctx context.Context, config *domain.TenantConfig) error {
	if config == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tenants (application, admin_emails, description, roles, users_can_expire)
	VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		config.Application,
		config.AdministrativeEmails,
		config.Description,
		domain.NormalizeRoles(config.Roles),
		config.UsersCanExpire,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.NewError(domain.ErrCodeConflict, "application already provisioned")
		}
		return err
	}
	return nil
}
