// Package repository provides data access for resident and staff accounts.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"barangay_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User is an account owning certificate requests and appointments.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash *string
	FirstName    string
	LastName     string
	Phone        string
	Role         string
	CreatedAt    time.Time
}

// FullName joins the name parts for display.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CreateUserParams holds the fields for a new account.
type CreateUserParams struct {
	Email        string
	PasswordHash *string
	FirstName    string
	LastName     string
	Phone        string
	Role         string
}

// Repository is the storage contract for user accounts.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// CreateOrGet inserts the user, or returns the existing row when another
	// caller created the same email first. Two racing create-or-reuse calls
	// must resolve to a single account.
	CreateOrGet(ctx context.Context, params CreateUserParams) (*User, error)
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	CountByRole(ctx context.Context, role string) (int, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed user repository.
func New(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone, role, created_at`

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	)
	return scanUser(row)
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *postgresRepository) CreateOrGet(ctx context.Context, params CreateUserParams) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	// ON CONFLICT DO NOTHING followed by a re-read resolves the race where
	// two public submissions for the same new email arrive together.
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, phone, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING `+userColumns,
		email, params.PasswordHash, params.FirstName, params.LastName, params.Phone, params.Role,
	)

	user, err := scanUser(row)
	if err == nil {
		return user, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	// Insert was skipped, the row already exists.
	return r.FindByEmail(ctx, email)
}

func (r *postgresRepository) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update password", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}

func (r *postgresRepository) CountByRole(ctx context.Context, role string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "failed to count users", err)
	}
	return count, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Phone, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to scan user", err)
	}
	return &u, nil
}
