package login

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securevault/authd/pkg/notification"
	"github.com/securevault/authd/pkg/otp"
	"github.com/securevault/authd/pkg/tokengenerator"
	"github.com/securevault/authd/pkg/user"
)

func newTestNotificationManager(t *testing.T) (*notification.NotificationManager, *notification.MockNotifier) {
	t.Helper()

	nm, err := notification.NewNotificationManager("http://localhost:4000")
	require.NoError(t, err)

	mock := &notification.MockNotifier{}
	nm.RegisterNotifier(notification.EmailSystem, mock)

	for _, noticeType := range []notification.NoticeType{
		notification.LoginOtpNotice,
		notification.PasswordResetOtpNotice,
		notification.EmailVerificationNotice,
	} {
		err = nm.RegisterNotification(noticeType, notification.EmailSystem, notification.NoticeTemplate{
			Subject: "test",
			Text:    "{{.Otp}}{{.Link}}",
		})
		require.NoError(t, err)
	}
	return nm, mock
}

func newTestTokenService() *tokengenerator.TokenService {
	return tokengenerator.NewTokenService(
		"access-secret", "refresh-secret", "verification-secret",
		"test-issuer", "test-audience",
	)
}

type loginFixture struct {
	repo     *user.InMemoryRepository
	registry *otp.InMemoryRegistry
	mock     *notification.MockNotifier
	service  *LoginService
}

func newLoginFixture(t *testing.T, opts ...LoginServiceOption) *loginFixture {
	t.Helper()

	repo := user.NewInMemoryRepository()
	registry := otp.NewInMemoryRegistry()
	nm, mock := newTestNotificationManager(t)

	// cost 4 keeps bcrypt cheap in tests
	opts = append([]LoginServiceOption{WithPasswordHasher(NewBcryptHasher(4))}, opts...)
	service := NewLoginService(repo, registry, newTestTokenService(), nm, opts...)

	return &loginFixture{repo: repo, registry: registry, mock: mock, service: service}
}

func (f *loginFixture) createUser(t *testing.T, email, password string, verified bool) user.User {
	t.Helper()

	hashed, err := NewBcryptHasher(4).Hash(password)
	require.NoError(t, err)

	u, err := f.repo.CreateUser(context.Background(), user.CreateUserParams{
		Name:     "Test User",
		Email:    email,
		Password: hashed,
		Role:     "user",
	})
	require.NoError(t, err)

	if verified {
		u.IsVerified = true
		u, err = f.repo.UpdateUser(context.Background(), u)
		require.NoError(t, err)
	}
	return u
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newLoginFixture(t)

	err := f.service.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, f.mock.SentNotifications)
}

func TestLoginUnverifiedBeforePasswordCheck(t *testing.T) {
	f := newLoginFixture(t)
	f.createUser(t, "alice@example.com", "password123", false)

	// Even the correct password must not get past the verified check
	err := f.service.Login(context.Background(), "alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	err = f.service.Login(context.Background(), "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newLoginFixture(t)
	f.createUser(t, "alice@example.com", "password123", true)

	err := f.service.Login(context.Background(), "alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, f.mock.SentNotifications)
}

func TestLoginIssuesOtpAndVerifyMintsTokens(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	u := f.createUser(t, "alice@example.com", "password123", true)

	err := f.service.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	require.Len(t, f.mock.SentNotifications, 1)
	code := f.mock.SentNotifications[0].Data["Otp"]
	require.Len(t, code, otp.CodeLength)

	pair, err := f.service.VerifyOtp(ctx, "alice@example.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken.Token)
	assert.NotEmpty(t, pair.RefreshToken.Token)

	subject, err := f.service.tokenService.ParseAccessToken(pair.AccessToken.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), subject)

	// The code is single use
	_, err = f.service.VerifyOtp(ctx, "alice@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidOtp)
}

func TestVerifyOtpWrongCode(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.createUser(t, "alice@example.com", "password123", true)

	err := f.service.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	code := f.mock.SentNotifications[0].Data["Otp"]

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err = f.service.VerifyOtp(ctx, "alice@example.com", wrong)
	assert.ErrorIs(t, err, ErrInvalidOtp)

	// Mismatch keeps the entry; the real code still works
	pair, err := f.service.VerifyOtp(ctx, "alice@example.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken.Token)
}

func TestVerifyOtpMixedCaseEmail(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.createUser(t, "alice@example.com", "password123", true)

	// The stored email is lowercased; the client may submit any casing,
	// and both steps of the flow must accept it.
	err := f.service.Login(ctx, "Alice@Example.COM", "password123")
	require.NoError(t, err)
	require.Len(t, f.mock.SentNotifications, 1)
	code := f.mock.SentNotifications[0].Data["Otp"]

	pair, err := f.service.VerifyOtp(ctx, "Alice@Example.COM", code)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken.Token)
	assert.NotEmpty(t, pair.RefreshToken.Token)
}

func TestVerifyOtpWithoutLogin(t *testing.T) {
	f := newLoginFixture(t)
	f.createUser(t, "alice@example.com", "password123", true)

	_, err := f.service.VerifyOtp(context.Background(), "alice@example.com", "123456")
	assert.ErrorIs(t, err, ErrInvalidOtp)
}

func TestResendOtpOverwritesCode(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.createUser(t, "alice@example.com", "password123", true)

	err := f.service.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	first := f.mock.SentNotifications[0].Data["Otp"]

	err = f.service.ResendOtp(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Len(t, f.mock.SentNotifications, 2)
	second := f.mock.SentNotifications[1].Data["Otp"]

	if first != second {
		_, err = f.service.VerifyOtp(ctx, "alice@example.com", first)
		assert.ErrorIs(t, err, ErrInvalidOtp, "old code must be invalid after resend")
	}

	pair, err := f.service.VerifyOtp(ctx, "alice@example.com", second)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken.Token)
}

func TestResendOtpUnknownEmailSilent(t *testing.T) {
	f := newLoginFixture(t)

	err := f.service.ResendOtp(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Empty(t, f.mock.SentNotifications)
}

func TestForgetPasswordStoresHashedOtp(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.createUser(t, "alice@example.com", "password123", true)

	err := f.service.ForgetPassword(ctx, "alice@example.com")
	require.NoError(t, err)

	require.Len(t, f.mock.SentNotifications, 1)
	code := f.mock.SentNotifications[0].Data["Otp"]
	require.Len(t, code, otp.CodeLength)

	u, err := f.repo.FindUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.ResetOtp)
	require.NotNil(t, u.ResetOtpExpiry)

	// Only the hash is stored, never the plaintext
	assert.NotEqual(t, code, *u.ResetOtp)
	match, err := NewBcryptHasher(4).Verify(code, *u.ResetOtp)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestForgetPasswordUnknownEmailSilent(t *testing.T) {
	f := newLoginFixture(t)

	err := f.service.ForgetPassword(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Empty(t, f.mock.SentNotifications)
}

func TestResetPasswordFlow(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.createUser(t, "alice@example.com", "oldpassword", true)

	err := f.service.ForgetPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	code := f.mock.SentNotifications[0].Data["Otp"]

	err = f.service.ResetPassword(ctx, "alice@example.com", code, "newpassword")
	require.NoError(t, err)

	u, err := f.repo.FindUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, u.ResetOtp, "reset OTP must be cleared after use")
	assert.Nil(t, u.ResetOtpExpiry)

	// Old password no longer works, new one does
	err = f.service.Login(ctx, "alice@example.com", "oldpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	err = f.service.Login(ctx, "alice@example.com", "newpassword")
	assert.NoError(t, err)

	// The reset code cannot be replayed
	err = f.service.ResetPassword(ctx, "alice@example.com", code, "anotherpassword")
	assert.ErrorIs(t, err, ErrInvalidOtp)
}

func TestResetPasswordWrongCode(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.createUser(t, "alice@example.com", "oldpassword", true)

	err := f.service.ForgetPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	code := f.mock.SentNotifications[0].Data["Otp"]

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	err = f.service.ResetPassword(ctx, "alice@example.com", wrong, "newpassword")
	assert.ErrorIs(t, err, ErrInvalidOtp)

	// A mismatch does not consume the stored hash
	err = f.service.ResetPassword(ctx, "alice@example.com", code, "newpassword")
	assert.NoError(t, err)
}

func TestResetPasswordExpiredCode(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t, WithResetOtpTTL(-1*time.Minute))
	f.createUser(t, "alice@example.com", "oldpassword", true)

	err := f.service.ForgetPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	code := f.mock.SentNotifications[0].Data["Otp"]

	err = f.service.ResetPassword(ctx, "alice@example.com", code, "newpassword")
	assert.ErrorIs(t, err, ErrInvalidOtp)

	// Expired entries are cleared on read
	u, err := f.repo.FindUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, u.ResetOtp)
	assert.Nil(t, u.ResetOtpExpiry)
}

func TestResetPasswordPolicyViolation(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t)
	f.createUser(t, "alice@example.com", "oldpassword", true)

	err := f.service.ForgetPassword(ctx, "alice@example.com")
	require.NoError(t, err)
	code := f.mock.SentNotifications[0].Data["Otp"]

	err = f.service.ResetPassword(ctx, "alice@example.com", code, "short")
	assert.ErrorIs(t, err, ErrPasswordPolicy)

	// Policy failure happens before the OTP is consumed
	err = f.service.ResetPassword(ctx, "alice@example.com", code, "longenoughpassword")
	assert.NoError(t, err)
}

func TestResetPasswordWithoutRequest(t *testing.T) {
	f := newLoginFixture(t)
	f.createUser(t, "alice@example.com", "oldpassword", true)

	err := f.service.ResetPassword(context.Background(), "alice@example.com", "123456", "newpassword")
	assert.ErrorIs(t, err, ErrInvalidOtp)
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(4)

	hashed, err := hasher.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hashed)

	match, err := hasher.Verify("password123", hashed)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = hasher.Verify("wrong", hashed)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestPasswordPolicy(t *testing.T) {
	policy := DefaultPasswordPolicy()

	assert.NoError(t, policy.Validate("12345678"))
	assert.ErrorIs(t, policy.Validate("1234567"), ErrPasswordPolicy)
	assert.ErrorIs(t, policy.Validate(""), ErrPasswordPolicy)
}
