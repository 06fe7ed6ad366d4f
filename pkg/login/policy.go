package login

import "fmt"

// PasswordPolicy holds the password acceptance rules applied at
// registration and password reset.
type PasswordPolicy struct {
	MinLength int
}

// DefaultPasswordPolicy returns the default policy
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 8}
}

// Validate checks a candidate password against the policy
func (p PasswordPolicy) Validate(password string) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordPolicy, p.MinLength)
	}
	return nil
}
