package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/repository"
)

const uniqueViolation = "23505"

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `
	id, application, email, name, agency, password_hash, salt, roles,
	approved, active, access_start, access_end, admin_token, last_login_at,
	created_at, updated_at
`

func (r *userRepository) FindByEmail(ctx context.Context, application, email string) (*domain.User, error) {
	query := `SELECT` + userColumns + `FROM users WHERE application = $1 AND email = $2`
	row := r.pool.QueryRow(ctx, query, application, domain.NormalizeEmail(email))
	return scanUser(row)
}

func (r *userRepository) FindByAdminToken(ctx context.Context, application, adminToken string) (*domain.User, error) {
	if adminToken == "" {
		return nil, domain.ErrUserNotFound
	}
	query := `SELECT` + userColumns + `FROM users WHERE application = $1 AND admin_token = $2`
	row := r.pool.QueryRow(ctx, query, application, adminToken)
	return scanUser(row)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (id, application, email, name, agency, password_hash, salt, roles,
		approved, active, access_start, access_end, admin_token, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	RETURNING created_at, updated_at;
	`

	start, end := windowBounds(user.Access)
	var createdAt, updatedAt time.Time
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Application,
		domain.NormalizeEmail(user.Email),
		user.Name,
		user.Agency,
		user.PasswordHash,
		user.Salt,
		user.Roles,
		user.Approved,
		user.Active,
		start,
		end,
		nullString(user.AdminToken),
	).Scan(&createdAt, &updatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateUser
		}
		return err
	}

	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE users
	SET email = $2,
		name = $3,
		agency = $4,
		password_hash = $5,
		salt = $6,
		roles = $7,
		approved = $8,
		active = $9,
		access_start = $10,
		access_end = $11,
		admin_token = $12,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at;
	`

	start, end := windowBounds(user.Access)
	var updatedAt time.Time
	err := r.pool.QueryRow(ctx, query,
		user.ID,
		domain.NormalizeEmail(user.Email),
		user.Name,
		user.Agency,
		user.PasswordHash,
		user.Salt,
		user.Roles,
		user.Approved,
		user.Active,
		start,
		end,
		nullString(user.AdminToken),
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateUser
		}
		return err
	}

	user.UpdatedAt = updatedAt
	return nil
}

func (r *userRepository) RecordLogin(ctx context.Context, id string) error {
	const query = `UPDATE users SET last_login_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *userRepository) ListWaiting(ctx context.Context, application string) ([]*domain.User, error) {
	query := `SELECT` + userColumns + `FROM users
	WHERE application = $1 AND approved = FALSE AND active = FALSE
	ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, application)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var agency, adminToken *string
	var accessStart, accessEnd, lastLogin *time.Time

	err := row.Scan(
		&user.ID,
		&user.Application,
		&user.Email,
		&user.Name,
		&agency,
		&user.PasswordHash,
		&user.Salt,
		&user.Roles,
		&user.Approved,
		&user.Active,
		&accessStart,
		&accessEnd,
		&adminToken,
		&lastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if agency != nil {
		user.Agency = *agency
	}
	if adminToken != nil {
		user.AdminToken = *adminToken
	}
	if lastLogin != nil {
		user.LastLoginAt = *lastLogin
	}
	if accessStart != nil || accessEnd != nil {
		user.Access = &domain.AccessWindow{}
		if accessStart != nil {
			user.Access.Start = *accessStart
		}
		if accessEnd != nil {
			user.Access.End = *accessEnd
		}
	}
	return &user, nil
}

func windowBounds(w *domain.AccessWindow) (interface{}, interface{}) {
	if w == nil {
		return nil, nil
	}
	return nullTime(w.Start), nullTime(w.End)
}
