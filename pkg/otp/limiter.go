package otp

import (
	"context"
	"sync"
)

// DefaultMaxAttempts is the default failed-attempt cap applied by
// WithMaxAttempts before an entry is invalidated.
const DefaultMaxAttempts = 5

// limitedRegistry wraps a Registry with a bounded failed-attempt counter
// per identifier. The cap is a policy layer: the wrapped registry keeps its
// retry-until-expiry semantics, this wrapper additionally removes the entry
// once too many consecutive mismatches have been seen.
type limitedRegistry struct {
	inner       Registry
	maxAttempts int

	mu       sync.Mutex
	failures map[string]int
}

// WithMaxAttempts wraps a registry so that maxAttempts consecutive failed
// verifications invalidate the entry. Counters reset on issue and on a
// successful verification.
func WithMaxAttempts(inner Registry, maxAttempts int) Registry {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &limitedRegistry{
		inner:       inner,
		maxAttempts: maxAttempts,
		failures:    make(map[string]int),
	}
}

func (l *limitedRegistry) Issue(ctx context.Context, identifier string) (string, error) {
	code, err := l.inner.Issue(ctx, identifier)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	delete(l.failures, identifier)
	l.mu.Unlock()
	return code, nil
}

func (l *limitedRegistry) Verify(ctx context.Context, identifier, candidate string) (bool, error) {
	ok, err := l.inner.Verify(ctx, identifier, candidate)
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if ok {
		delete(l.failures, identifier)
		return true, nil
	}

	l.failures[identifier]++
	if l.failures[identifier] >= l.maxAttempts {
		delete(l.failures, identifier)
		if err := l.inner.Remove(ctx, identifier); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (l *limitedRegistry) Remove(ctx context.Context, identifier string) error {
	l.mu.Lock()
	delete(l.failures, identifier)
	l.mu.Unlock()
	return l.inner.Remove(ctx, identifier)
}
