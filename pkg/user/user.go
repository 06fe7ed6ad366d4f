package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the durable identity record. Password and ResetOtp hold bcrypt
// hashes, never plaintext.
type User struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Password         string     `json:"-"`
	Role             string     `json:"role"`
	IsVerified       bool       `json:"isVerified"`
	ResetOtp         *string    `json:"-"`
	ResetOtpExpiry   *time.Time `json:"-"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled"`
	TwoFactorSecret  *string    `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// CreateUserParams holds the fields required to create a new user record.
type CreateUserParams struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Repository defines the persistence operations the auth flows need.
type Repository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (User, error)
	// UpdateUser persists the mutable fields of an existing user
	// (password, verification flag, reset OTP fields, 2FA fields).
	UpdateUser(ctx context.Context, u User) (User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (User, error)
}
