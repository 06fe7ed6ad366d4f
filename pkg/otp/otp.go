// Package otp implements the ephemeral one-time-password registry used for
// login step-up and password reset. Codes are fixed-width numeric, single
// use, and expire after a short TTL. A new issuance for an identifier
// overwrites any previous code for that identifier.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// CodeLength is the number of digits in a generated code
	CodeLength = 6

	// DefaultTTL is how long an issued code stays valid
	DefaultTTL = 5 * time.Minute
)

// Registry is the keyed one-time-code store. Implementations must treat
// each identifier's entry as a single mutable slot: Issue overwrites,
// Verify consumes on match and evicts expired entries lazily.
type Registry interface {
	// Issue generates a fresh code for the identifier, replacing any
	// existing entry. The previous code, if any, becomes invalid.
	Issue(ctx context.Context, identifier string) (string, error)

	// Verify checks candidate against the stored code. It returns false
	// for an absent, expired or mismatched code; expired entries are
	// deleted on read and are indistinguishable from absent ones. On a
	// match the entry is consumed and true is returned. A mismatch
	// leaves the entry intact.
	Verify(ctx context.Context, identifier, candidate string) (bool, error)

	// Remove invalidates the entry for the identifier, if any.
	Remove(ctx context.Context, identifier string) error
}

// GenerateCode returns a uniformly random numeric code of the given width,
// zero-padded.
func GenerateCode(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
