package tokengenerator

import (
	"time"
)

// Token type constants
const (
	ACCESS_TOKEN_NAME       = "access_token"
	REFRESH_TOKEN_NAME      = "refresh_token"
	VERIFICATION_TOKEN_NAME = "verification_token"
)

// Default token expiry durations
const (
	DefaultAccessTokenExpiry       = 15 * time.Minute
	DefaultRefreshTokenExpiry      = 7 * 24 * time.Hour
	DefaultVerificationTokenExpiry = 24 * time.Hour
)

// TokenValue is a minted token together with its expiry
type TokenValue struct {
	Name   string
	Token  string
	Expiry time.Time
}

// TokenService mints and validates the three token classes: short-lived
// access tokens, long-lived refresh tokens, and single-purpose email
// verification tokens. Each class is signed with its own secret so the
// classes cannot be used interchangeably.
type TokenService struct {
	accessGenerator       TokenGenerator
	refreshGenerator      TokenGenerator
	verificationGenerator TokenGenerator

	AccessTokenExpiry       time.Duration
	RefreshTokenExpiry      time.Duration
	VerificationTokenExpiry time.Duration
}

// TokenServiceOption is a function that configures a TokenService
type TokenServiceOption func(*TokenService)

// WithAccessTokenExpiry sets the access token expiry duration
func WithAccessTokenExpiry(expiry time.Duration) TokenServiceOption {
	return func(ts *TokenService) {
		ts.AccessTokenExpiry = expiry
	}
}

// WithRefreshTokenExpiry sets the refresh token expiry duration
func WithRefreshTokenExpiry(expiry time.Duration) TokenServiceOption {
	return func(ts *TokenService) {
		ts.RefreshTokenExpiry = expiry
	}
}

// WithVerificationTokenExpiry sets the verification token expiry duration
func WithVerificationTokenExpiry(expiry time.Duration) TokenServiceOption {
	return func(ts *TokenService) {
		ts.VerificationTokenExpiry = expiry
	}
}

// NewTokenService creates a TokenService with one generator per token class
func NewTokenService(accessSecret, refreshSecret, verificationSecret, issuer, audience string, opts ...TokenServiceOption) *TokenService {
	ts := &TokenService{
		accessGenerator:         NewJwtTokenGenerator(accessSecret, issuer, audience),
		refreshGenerator:        NewJwtTokenGenerator(refreshSecret, issuer, audience),
		verificationGenerator:   NewJwtTokenGenerator(verificationSecret, issuer, audience),
		AccessTokenExpiry:       DefaultAccessTokenExpiry,
		RefreshTokenExpiry:      DefaultRefreshTokenExpiry,
		VerificationTokenExpiry: DefaultVerificationTokenExpiry,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// GenerateAccessToken mints a short-lived access token bound to the user id
func (ts *TokenService) GenerateAccessToken(userID string) (TokenValue, error) {
	token, expiry, err := ts.accessGenerator.GenerateToken(userID, ts.AccessTokenExpiry)
	if err != nil {
		return TokenValue{}, err
	}
	return TokenValue{Name: ACCESS_TOKEN_NAME, Token: token, Expiry: expiry}, nil
}

// GenerateRefreshToken mints a long-lived refresh token bound to the user id
func (ts *TokenService) GenerateRefreshToken(userID string) (TokenValue, error) {
	token, expiry, err := ts.refreshGenerator.GenerateToken(userID, ts.RefreshTokenExpiry)
	if err != nil {
		return TokenValue{}, err
	}
	return TokenValue{Name: REFRESH_TOKEN_NAME, Token: token, Expiry: expiry}, nil
}

// GenerateVerificationToken mints the single-purpose email verification
// token. Redeeming it only flips the verified flag, it never authenticates
// a session.
func (ts *TokenService) GenerateVerificationToken(userID string) (TokenValue, error) {
	token, expiry, err := ts.verificationGenerator.GenerateToken(userID, ts.VerificationTokenExpiry)
	if err != nil {
		return TokenValue{}, err
	}
	return TokenValue{Name: VERIFICATION_TOKEN_NAME, Token: token, Expiry: expiry}, nil
}

// ParseAccessToken validates an access token and returns the user id
func (ts *TokenService) ParseAccessToken(tokenStr string) (string, error) {
	return ts.accessGenerator.ParseToken(tokenStr)
}

// ParseRefreshToken validates a refresh token and returns the user id
func (ts *TokenService) ParseRefreshToken(tokenStr string) (string, error) {
	return ts.refreshGenerator.ParseToken(tokenStr)
}

// ParseVerificationToken validates a verification token and returns the user id
func (ts *TokenService) ParseVerificationToken(tokenStr string) (string, error) {
	return ts.verificationGenerator.ParseToken(tokenStr)
}
