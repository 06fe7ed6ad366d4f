package otp

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

type entry struct {
	code      string
	expiresAt time.Time
}

// InMemoryRegistry implements Registry with process-local storage. A
// process restart discards all live codes, which is acceptable given the
// short TTL; callers simply re-initiate the step-up.
type InMemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// InMemoryRegistryOption configures an InMemoryRegistry
type InMemoryRegistryOption func(*InMemoryRegistry)

// WithTTL overrides the default code lifetime
func WithTTL(ttl time.Duration) InMemoryRegistryOption {
	return func(r *InMemoryRegistry) {
		r.ttl = ttl
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) InMemoryRegistryOption {
	return func(r *InMemoryRegistry) {
		r.now = now
	}
}

// NewInMemoryRegistry creates a new in-memory OTP registry
func NewInMemoryRegistry(opts ...InMemoryRegistryOption) *InMemoryRegistry {
	r := &InMemoryRegistry{
		entries: make(map[string]entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Issue generates a fresh code for the identifier, replacing any existing entry
func (r *InMemoryRegistry) Issue(ctx context.Context, identifier string) (string, error) {
	code, err := GenerateCode(CodeLength)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[identifier] = entry{
		code:      code,
		expiresAt: r.now().Add(r.ttl),
	}
	return code, nil
}

// Verify checks candidate against the stored code, consuming it on match
func (r *InMemoryRegistry) Verify(ctx context.Context, identifier, candidate string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[identifier]
	if !ok {
		return false, nil
	}
	if r.now().After(e.expiresAt) {
		delete(r.entries, identifier)
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(e.code), []byte(candidate)) != 1 {
		return false, nil
	}

	delete(r.entries, identifier)
	return true, nil
}

// Remove invalidates the entry for the identifier, if any
func (r *InMemoryRegistry) Remove(ctx context.Context, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, identifier)
	return nil
}
