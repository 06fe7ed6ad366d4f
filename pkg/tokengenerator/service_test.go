package tokengenerator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(opts ...TokenServiceOption) *TokenService {
	return NewTokenService(
		"access-secret",
		"refresh-secret",
		"verification-secret",
		"test-issuer",
		"test-audience",
		opts...,
	)
}

func TestGenerateAndParseTokens(t *testing.T) {
	ts := newTestTokenService()
	userID := uuid.New().String()

	access, err := ts.GenerateAccessToken(userID)
	require.NoError(t, err)
	assert.Equal(t, ACCESS_TOKEN_NAME, access.Name)
	assert.NotEmpty(t, access.Token)
	assert.WithinDuration(t, time.Now().Add(DefaultAccessTokenExpiry), access.Expiry, time.Minute)

	refresh, err := ts.GenerateRefreshToken(userID)
	require.NoError(t, err)
	assert.Equal(t, REFRESH_TOKEN_NAME, refresh.Name)

	verification, err := ts.GenerateVerificationToken(userID)
	require.NoError(t, err)
	assert.Equal(t, VERIFICATION_TOKEN_NAME, verification.Name)

	subject, err := ts.ParseAccessToken(access.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, subject)

	subject, err = ts.ParseRefreshToken(refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, subject)

	subject, err = ts.ParseVerificationToken(verification.Token)
	require.NoError(t, err)
	assert.Equal(t, userID, subject)
}

func TestTokenClassesAreNotInterchangeable(t *testing.T) {
	ts := newTestTokenService()
	userID := uuid.New().String()

	access, err := ts.GenerateAccessToken(userID)
	require.NoError(t, err)
	verification, err := ts.GenerateVerificationToken(userID)
	require.NoError(t, err)

	// An access token must not redeem email verification, and the
	// verification token must not authenticate a session.
	_, err = ts.ParseVerificationToken(access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ts.ParseAccessToken(verification.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ts.ParseRefreshToken(access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseExpiredToken(t *testing.T) {
	ts := newTestTokenService(WithAccessTokenExpiry(-1 * time.Minute))

	access, err := ts.GenerateAccessToken(uuid.New().String())
	require.NoError(t, err)

	_, err = ts.ParseAccessToken(access.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTamperedToken(t *testing.T) {
	ts := newTestTokenService()

	access, err := ts.GenerateAccessToken(uuid.New().String())
	require.NoError(t, err)

	tampered := access.Token[:len(access.Token)-2] + "xx"
	_, err = ts.ParseAccessToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ts.ParseAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGeneratorRejectsWrongSecret(t *testing.T) {
	g := NewJwtTokenGenerator("secret-a", "test-issuer", "test-audience")
	other := NewJwtTokenGenerator("secret-b", "test-issuer", "test-audience")

	token, _, err := g.GenerateToken("subject", time.Minute)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
