package login

// PasswordHasher defines the interface for password hashing implementations.
// The same hasher is used for user passwords and for the password-reset OTP
// hash stored on the user row.
type PasswordHasher interface {
	// Hash hashes a secret irreversibly
	Hash(password string) (string, error)

	// Verify checks if the provided secret matches the stored hash
	Verify(password, hashedPassword string) (bool, error)
}
