package config

import (
	"time"
)

// JWTConfig holds token signing configuration. Each token class gets its
// own secret so the classes cannot be used interchangeably.
type JWTConfig struct {
	AccessSecret            string `env:"JWT_ACCESS_SECRET" env-default:"very-secure-access-secret"`
	RefreshSecret           string `env:"JWT_REFRESH_SECRET" env-default:"very-secure-refresh-secret"`
	VerificationSecret      string `env:"JWT_VERIFICATION_SECRET" env-default:"very-secure-verification-secret"`
	AccessTokenExpiry       string `env:"ACCESS_TOKEN_EXPIRY" env-default:"15m"`
	RefreshTokenExpiry      string `env:"REFRESH_TOKEN_EXPIRY" env-default:"168h"`
	VerificationTokenExpiry string `env:"VERIFICATION_TOKEN_EXPIRY" env-default:"24h"`
	Issuer                  string `env:"JWT_ISSUER" env-default:"securevault-authd"`
	Audience                string `env:"JWT_AUDIENCE" env-default:"securevault"`
}

// ParseAccessTokenExpiry parses the access token expiry duration
func (j JWTConfig) ParseAccessTokenExpiry() (time.Duration, error) {
	return time.ParseDuration(j.AccessTokenExpiry)
}

// ParseRefreshTokenExpiry parses the refresh token expiry duration
func (j JWTConfig) ParseRefreshTokenExpiry() (time.Duration, error) {
	return time.ParseDuration(j.RefreshTokenExpiry)
}

// ParseVerificationTokenExpiry parses the verification token expiry duration
func (j JWTConfig) ParseVerificationTokenExpiry() (time.Duration, error) {
	return time.ParseDuration(j.VerificationTokenExpiry)
}
