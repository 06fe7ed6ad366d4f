// Package emailverification issues and redeems the single-purpose email
// verification token. The token is a signed assertion of the user id; no
// verification state is stored outside the user row's verified flag.
package emailverification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"
	"github.com/securevault/authd/pkg/notification"
	"github.com/securevault/authd/pkg/tokengenerator"
	"github.com/securevault/authd/pkg/user"
)

// EmailVerificationService handles email verification operations
type EmailVerificationService struct {
	repo                user.Repository
	tokenService        *tokengenerator.TokenService
	notificationManager *notification.NotificationManager
}

// NewEmailVerificationService creates a new email verification service
func NewEmailVerificationService(
	repo user.Repository,
	tokenService *tokengenerator.TokenService,
	notificationManager *notification.NotificationManager,
) *EmailVerificationService {
	return &EmailVerificationService{
		repo:                repo,
		tokenService:        tokenService,
		notificationManager: notificationManager,
	}
}

// SendVerificationEmail mints a verification token for the user and emails
// the redemption link.
func (s *EmailVerificationService) SendVerificationEmail(ctx context.Context, u user.User) error {
	token, err := s.tokenService.GenerateVerificationToken(u.ID.String())
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	link := fmt.Sprintf("%s/verify-email/%s", s.notificationManager.BaseURL(), url.PathEscape(token.Token))

	err = s.notificationManager.Send(notification.EmailVerificationNotice, notification.NotificationData{
		To: u.Email,
		Data: map[string]string{
			"Name": u.Name,
			"Link": link,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	slog.Info("Verification email sent", "userID", u.ID)
	return nil
}

// VerifyEmail redeems a verification token, flipping the user's verified
// flag. Redeeming an already-used but unexpired token is idempotent.
func (s *EmailVerificationService) VerifyEmail(ctx context.Context, tokenStr string) (user.User, error) {
	subject, err := s.tokenService.ParseVerificationToken(tokenStr)
	if err != nil {
		return user.User{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		slog.Error("Verification token subject is not a user id", "err", err)
		return user.User{}, ErrInvalidToken
	}

	u, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if u.IsVerified {
		slog.Info("Email already verified", "userID", u.ID)
		return u, nil
	}

	u.IsVerified = true
	u, err = s.repo.UpdateUser(ctx, u)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to mark user verified: %w", err)
	}

	slog.Info("Email verified", "userID", u.ID)
	return u, nil
}
