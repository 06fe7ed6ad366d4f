// Package signup handles user registration.
package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/securevault/authd/pkg/emailverification"
	"github.com/securevault/authd/pkg/login"
	"github.com/securevault/authd/pkg/user"
)

// ErrEmailExists is returned when the email is already registered
var ErrEmailExists = errors.New("email already exists")

// ValidationError carries field-level validation detail back to the caller
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// SignupService handles user registration business logic
type SignupService struct {
	repo                     user.Repository
	emailVerificationService *emailverification.EmailVerificationService
	passwordHasher           login.PasswordHasher
	passwordPolicy           login.PasswordPolicy
	defaultRole              string
	minNameLength            int
}

// SignupServiceOption is a functional option for configuring SignupService
type SignupServiceOption func(*SignupService)

// WithDefaultRole sets the role assigned to new users
func WithDefaultRole(role string) SignupServiceOption {
	return func(s *SignupService) {
		s.defaultRole = role
	}
}

// WithPasswordHasher overrides the default bcrypt hasher
func WithPasswordHasher(h login.PasswordHasher) SignupServiceOption {
	return func(s *SignupService) {
		s.passwordHasher = h
	}
}

// WithPasswordPolicy overrides the default password policy
func WithPasswordPolicy(p login.PasswordPolicy) SignupServiceOption {
	return func(s *SignupService) {
		s.passwordPolicy = p
	}
}

// NewSignupService creates a new SignupService
func NewSignupService(
	repo user.Repository,
	emailVerificationService *emailverification.EmailVerificationService,
	opts ...SignupServiceOption,
) *SignupService {
	s := &SignupService{
		repo:                     repo,
		emailVerificationService: emailVerificationService,
		passwordHasher:           login.NewBcryptHasher(0),
		passwordPolicy:           login.DefaultPasswordPolicy(),
		defaultRole:              "user",
		minNameLength:            3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SignupService) validate(req RegisterRequest) error {
	fields := make(map[string]string)

	if len(strings.TrimSpace(req.Name)) < s.minNameLength {
		fields["name"] = fmt.Sprintf("must be at least %d characters", s.minNameLength)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "invalid email address"
	}
	if err := s.passwordPolicy.Validate(req.Password); err != nil {
		fields["password"] = fmt.Sprintf("must be at least %d characters", s.passwordPolicy.MinLength)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Register creates a new unverified user and attempts to send the
// verification email. A failed email send does not roll back the account:
// the record already exists and verification can be retried independently.
func (s *SignupService) Register(ctx context.Context, req RegisterRequest) (user.User, error) {
	if err := s.validate(req); err != nil {
		return user.User{}, err
	}

	hashed, err := s.passwordHasher.Hash(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.repo.CreateUser(ctx, user.CreateUserParams{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: hashed,
		Role:     s.defaultRole,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailExists) {
			return user.User{}, ErrEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.emailVerificationService.SendVerificationEmail(ctx, u); err != nil {
		// account creation already succeeded; surface nothing to the caller
		slog.Error("Email sending failed", "userID", u.ID, "err", err)
	}

	slog.Info("User registered", "userID", u.ID)
	return u, nil
}
