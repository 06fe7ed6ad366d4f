package user

import "errors"

var (
	// ErrUserNotFound is returned when no user exists for the given email or id
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when creating a user with an email that is already registered
	ErrEmailExists = errors.New("email already exists")
)
