package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, password, role, is_verified,
	reset_otp, reset_otp_expiry, two_factor_enabled, two_factor_secret,
	created_at, updated_at`

// PostgresRepository implements Repository backed by PostgreSQL
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL user repository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.Role,
		&u.IsVerified,
		&u.ResetOtp,
		&u.ResetOtpExpiry,
		&u.TwoFactorEnabled,
		&u.TwoFactorSecret,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}

// CreateUser creates a new user, enforcing email uniqueness
func (r *PostgresRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	query := `
		INSERT INTO users (name, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRow(ctx, query,
		params.Name, normalizeEmail(params.Email), params.Password, params.Role))
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation on the email index
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, ErrEmailExists
		}
		return User{}, err
	}
	return u, nil
}

// FindUserByEmail finds a user by email
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, normalizeEmail(email)))
}

// FindUserByID finds a user by id
func (r *PostgresRepository) FindUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// UpdateUser persists the mutable fields of an existing user
func (r *PostgresRepository) UpdateUser(ctx context.Context, u User) (User, error) {
	query := `
		UPDATE users
		SET name = $2,
		    password = $3,
		    role = $4,
		    is_verified = $5,
		    reset_otp = $6,
		    reset_otp_expiry = $7,
		    two_factor_enabled = $8,
		    two_factor_secret = $9,
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRow(ctx, query,
		u.ID, u.Name, u.Password, u.Role, u.IsVerified,
		u.ResetOtp, u.ResetOtpExpiry, u.TwoFactorEnabled, u.TwoFactorSecret))
}

// DeleteUser removes a user and returns the deleted record
func (r *PostgresRepository) DeleteUser(ctx context.Context, id uuid.UUID) (User, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns
	return scanUser(r.db.QueryRow(ctx, query, id))
}
