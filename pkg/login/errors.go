package login

import "errors"

var (
	// ErrInvalidCredentials collapses unknown-email and wrong-password so
	// the login path does not leak account existence
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotVerified is returned when the account exists but the
	// email has not been verified yet
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrInvalidOtp collapses absent, expired and mismatched codes
	ErrInvalidOtp = errors.New("invalid or expired OTP")

	// ErrPasswordPolicy is wrapped by password policy violations
	ErrPasswordPolicy = errors.New("password does not meet policy")

	// ErrNotificationFailed is returned when a required OTP delivery fails
	ErrNotificationFailed = errors.New("failed to send OTP")
)
