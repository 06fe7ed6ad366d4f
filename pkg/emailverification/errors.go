package emailverification

import "errors"

var (
	// ErrInvalidToken is returned for tampered and expired tokens alike
	ErrInvalidToken = errors.New("invalid or expired verification token")

	// ErrUserNotFound is returned when the token's user no longer exists
	ErrUserNotFound = errors.New("user not found")
)
