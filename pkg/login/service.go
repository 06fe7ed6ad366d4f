package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/securevault/authd/pkg/notification"
	"github.com/securevault/authd/pkg/otp"
	"github.com/securevault/authd/pkg/tokengenerator"
	"github.com/securevault/authd/pkg/user"
)

// DefaultResetOtpTTL is how long a password-reset OTP stays valid
const DefaultResetOtpTTL = 5 * time.Minute

// TokenPair is the result of a completed OTP-gated login
type TokenPair struct {
	AccessToken  tokengenerator.TokenValue
	RefreshToken tokengenerator.TokenValue
}

// LoginService orchestrates the password+OTP login protocol and the
// password reset flow. Login OTPs live in the ephemeral registry; reset
// OTPs are hashed onto the durable user row.
type LoginService struct {
	repo                user.Repository
	otpRegistry         otp.Registry
	tokenService        *tokengenerator.TokenService
	notificationManager *notification.NotificationManager
	passwordHasher      PasswordHasher
	passwordPolicy      PasswordPolicy
	resetOtpTTL         time.Duration
}

// LoginServiceOption is a functional option for configuring LoginService
type LoginServiceOption func(*LoginService)

// WithPasswordHasher overrides the default bcrypt hasher
func WithPasswordHasher(h PasswordHasher) LoginServiceOption {
	return func(s *LoginService) {
		s.passwordHasher = h
	}
}

// WithPasswordPolicy overrides the default password policy
func WithPasswordPolicy(p PasswordPolicy) LoginServiceOption {
	return func(s *LoginService) {
		s.passwordPolicy = p
	}
}

// WithResetOtpTTL overrides the reset OTP lifetime
func WithResetOtpTTL(ttl time.Duration) LoginServiceOption {
	return func(s *LoginService) {
		s.resetOtpTTL = ttl
	}
}

// NewLoginService creates a new LoginService
func NewLoginService(
	repo user.Repository,
	otpRegistry otp.Registry,
	tokenService *tokengenerator.TokenService,
	notificationManager *notification.NotificationManager,
	opts ...LoginServiceOption,
) *LoginService {
	s := &LoginService{
		repo:                repo,
		otpRegistry:         otpRegistry,
		tokenService:        tokenService,
		notificationManager: notificationManager,
		passwordHasher:      NewBcryptHasher(0),
		passwordPolicy:      DefaultPasswordPolicy(),
		resetOtpTTL:         DefaultResetOtpTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login runs the ordered login preconditions and, when they all pass,
// issues a step-up OTP and emails it. No tokens are minted here; the
// caller must complete VerifyOtp first.
//
// Check order is fixed: user exists, email verified, password matches.
// Unknown email and wrong password both surface as ErrInvalidCredentials.
func (s *LoginService) Login(ctx context.Context, email, password string) error {
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			slog.Info("Login attempt for unknown email")
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !u.IsVerified {
		slog.Info("Login attempt for unverified account", "userID", u.ID)
		return ErrEmailNotVerified
	}

	match, err := s.passwordHasher.Verify(password, u.Password)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		slog.Info("Login attempt with wrong password", "userID", u.ID)
		return ErrInvalidCredentials
	}

	return s.issueLoginOtp(ctx, u)
}

// ResendOtp re-issues the step-up OTP, overwriting any live code for the
// email. Unknown or unverified accounts are ignored so the response stays
// non-enumerable.
func (s *LoginService) ResendOtp(ctx context.Context, email string) error {
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			slog.Info("Resend OTP requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if !u.IsVerified {
		return nil
	}

	if err := s.issueLoginOtp(ctx, u); err != nil {
		// resend responds with a generic ack either way
		slog.Error("Failed to resend OTP", "userID", u.ID, "err", err)
	}
	return nil
}

func (s *LoginService) issueLoginOtp(ctx context.Context, u user.User) error {
	code, err := s.otpRegistry.Issue(ctx, u.Email)
	if err != nil {
		return fmt.Errorf("failed to issue OTP: %w", err)
	}

	err = s.notificationManager.Send(notification.LoginOtpNotice, notification.NotificationData{
		To: u.Email,
		Data: map[string]string{
			"Email": u.Email,
			"Otp":   code,
		},
	})
	if err != nil {
		slog.Error("Failed to send login OTP", "userID", u.ID, "err", err)
		return ErrNotificationFailed
	}

	slog.Info("Login OTP issued", "userID", u.ID)
	return nil
}

// VerifyOtp consumes the step-up code and, on success, mints the
// access/refresh token pair. Absent, expired and wrong codes all surface
// as ErrInvalidOtp.
func (s *LoginService) VerifyOtp(ctx context.Context, email, code string) (TokenPair, error) {
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return TokenPair{}, ErrInvalidOtp
		}
		return TokenPair{}, fmt.Errorf("failed to look up user: %w", err)
	}

	// codes are keyed by the stored email; the submitted one may differ in case
	ok, err := s.otpRegistry.Verify(ctx, u.Email, code)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to verify OTP: %w", err)
	}
	if !ok {
		return TokenPair{}, ErrInvalidOtp
	}

	accessToken, err := s.tokenService.GenerateAccessToken(u.ID.String())
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.tokenService.GenerateRefreshToken(u.ID.String())
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	slog.Info("Login completed", "userID", u.ID)
	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ForgetPassword generates a reset OTP, stores its hash and expiry on the
// user row and emails the plaintext code. The response is a generic ack
// whether or not the account exists.
func (s *LoginService) ForgetPassword(ctx context.Context, email string) error {
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			slog.Info("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	code, err := otp.GenerateCode(otp.CodeLength)
	if err != nil {
		return fmt.Errorf("failed to generate reset OTP: %w", err)
	}

	hashed, err := s.passwordHasher.Hash(code)
	if err != nil {
		return fmt.Errorf("failed to hash reset OTP: %w", err)
	}

	expiry := time.Now().UTC().Add(s.resetOtpTTL)
	u.ResetOtp = &hashed
	u.ResetOtpExpiry = &expiry
	if _, err := s.repo.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("failed to store reset OTP: %w", err)
	}

	err = s.notificationManager.Send(notification.PasswordResetOtpNotice, notification.NotificationData{
		To: u.Email,
		Data: map[string]string{
			"Email": u.Email,
			"Otp":   code,
		},
	})
	if err != nil {
		// the stored hash stays valid; the caller can retry
		slog.Error("Failed to send reset OTP", "userID", u.ID, "err", err)
	}

	slog.Info("Password reset OTP issued", "userID", u.ID)
	return nil
}

// ResetPassword verifies the submitted reset OTP against the stored hash
// and replaces the password. The reset OTP fields are cleared on success
// so the code cannot be replayed.
func (s *LoginService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := s.passwordPolicy.Validate(newPassword); err != nil {
		return err
	}

	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrInvalidOtp
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if u.ResetOtp == nil || u.ResetOtpExpiry == nil {
		return ErrInvalidOtp
	}
	if time.Now().UTC().After(*u.ResetOtpExpiry) {
		// clear the dead entry so it cannot linger
		u.ResetOtp = nil
		u.ResetOtpExpiry = nil
		if _, err := s.repo.UpdateUser(ctx, u); err != nil {
			slog.Error("Failed to clear expired reset OTP", "userID", u.ID, "err", err)
		}
		return ErrInvalidOtp
	}

	match, err := s.passwordHasher.Verify(code, *u.ResetOtp)
	if err != nil {
		return fmt.Errorf("failed to verify reset OTP: %w", err)
	}
	if !match {
		return ErrInvalidOtp
	}

	hashed, err := s.passwordHasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	u.Password = hashed
	u.ResetOtp = nil
	u.ResetOtpExpiry = nil
	if _, err := s.repo.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("Password reset completed", "userID", u.ID)
	return nil
}
