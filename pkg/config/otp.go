package config

import (
	"time"
)

// OTPConfig holds one-time-password registry configuration. When
// RedisAddr is set the registry is Redis-backed, otherwise in-memory.
type OTPConfig struct {
	TTL         string `env:"OTP_TTL" env-default:"5m"`
	MaxAttempts int    `env:"OTP_MAX_ATTEMPTS" env-default:"5"`
	RedisAddr   string `env:"OTP_REDIS_ADDR" env-default:""`
	RedisDB     int    `env:"OTP_REDIS_DB" env-default:"0"`
}

// ParseTTL parses the OTP lifetime
func (o OTPConfig) ParseTTL() (time.Duration, error) {
	return time.ParseDuration(o.TTL)
}
