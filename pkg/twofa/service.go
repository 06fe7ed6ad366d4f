// Package twofa implements TOTP two-factor enrollment: secret generation,
// provisioning QR rendering and the confirmation round-trip that activates
// the factor.
package twofa

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/securevault/authd/pkg/user"
)

const (
	// DefaultIssuer is the issuer name embedded in provisioning URIs
	DefaultIssuer = "SecureVault"

	// SecretSize is the generated secret length in bytes (160 bits)
	SecretSize = 20

	// Period is the TOTP time step in seconds
	Period = 30

	// Skew is the clock-drift tolerance in periods on verification
	Skew = 1

	qrImageSize = 200
)

var (
	// ErrUserNotFound is returned when no user exists for the given id
	ErrUserNotFound = errors.New("user not found")

	// ErrNotEnrolled is returned when verifying before setup has run
	ErrNotEnrolled = errors.New("two-factor enrollment not initiated")

	// ErrInvalidPasscode is returned for a code that does not match any
	// accepted time step
	ErrInvalidPasscode = errors.New("invalid passcode")
)

// SetupResult is returned from Setup: the scannable provisioning image and
// the raw secret for manual entry.
type SetupResult struct {
	Secret     string
	OtpauthURL string
	QRCode     string // base64 PNG data URL
}

// TwoFaService handles TOTP enrollment and verification
type TwoFaService struct {
	repo   user.Repository
	issuer string
	now    func() time.Time
}

// TwoFaServiceOption configures a TwoFaService
type TwoFaServiceOption func(*TwoFaService)

// WithIssuer overrides the issuer name in provisioning URIs
func WithIssuer(issuer string) TwoFaServiceOption {
	return func(s *TwoFaService) {
		s.issuer = issuer
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) TwoFaServiceOption {
	return func(s *TwoFaService) {
		s.now = now
	}
}

// NewTwoFaService creates a new TwoFaService
func NewTwoFaService(repo user.Repository, opts ...TwoFaServiceOption) *TwoFaService {
	s := &TwoFaService{
		repo:   repo,
		issuer: DefaultIssuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Setup generates a fresh TOTP secret for the user, unconditionally
// replacing any prior secret, and persists it with the enabled flag set to
// false. Enrollment only becomes active after Verify succeeds; setup alone
// never enables the factor.
func (s *TwoFaService) Setup(ctx context.Context, userID uuid.UUID) (SetupResult, error) {
	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return SetupResult{}, ErrUserNotFound
		}
		return SetupResult{}, fmt.Errorf("failed to look up user: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: u.Email,
		SecretSize:  SecretSize,
		Period:      Period,
	})
	if err != nil {
		slog.Error("Failed to generate totp secret", "userID", userID, "issuer", s.issuer, "err", err)
		return SetupResult{}, err
	}

	secret := key.Secret()
	u.TwoFactorSecret = &secret
	u.TwoFactorEnabled = false
	if _, err := s.repo.UpdateUser(ctx, u); err != nil {
		return SetupResult{}, fmt.Errorf("failed to store 2FA secret: %w", err)
	}

	qrCode, err := renderQRCode(key)
	if err != nil {
		return SetupResult{}, fmt.Errorf("failed to render QR code: %w", err)
	}

	slog.Info("Generated new totp secret", "userID", userID)
	return SetupResult{
		Secret:     secret,
		OtpauthURL: key.URL(),
		QRCode:     qrCode,
	}, nil
}

// Verify validates a user-submitted code against the stored secret with
// one period of clock-drift tolerance. On match the enabled flag is set;
// on mismatch nothing is mutated.
func (s *TwoFaService) Verify(ctx context.Context, userID uuid.UUID, passcode string) error {
	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if u.TwoFactorSecret == nil {
		return ErrNotEnrolled
	}

	valid, err := totp.ValidateCustom(passcode, *u.TwoFactorSecret, s.now().UTC(), totp.ValidateOpts{
		Period:    Period,
		Skew:      Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to validate totp passcode", "userID", userID, "err", err)
		return fmt.Errorf("failed to validate passcode: %w", err)
	}
	if !valid {
		return ErrInvalidPasscode
	}

	if !u.TwoFactorEnabled {
		u.TwoFactorEnabled = true
		if _, err := s.repo.UpdateUser(ctx, u); err != nil {
			return fmt.Errorf("failed to enable 2FA: %w", err)
		}
	}

	slog.Info("Two-factor authentication enabled", "userID", userID)
	return nil
}

func renderQRCode(key *otp.Key) (string, error) {
	img, err := key.Image(qrImageSize, qrImageSize)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
