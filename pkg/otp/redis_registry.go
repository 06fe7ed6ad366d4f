package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRegistryUnavailable is returned when the backing store cannot be reached
var ErrRegistryUnavailable = errors.New("otp registry backend unavailable")

// RedisRegistry implements Registry on Redis so the step-up state survives
// process restarts and is shared across instances. Expiry is delegated to
// the key TTL, so an expired code reads the same as an absent one.
type RedisRegistry struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisRegistryOption configures a RedisRegistry
type RedisRegistryOption func(*RedisRegistry)

// WithRedisTTL overrides the default code lifetime
func WithRedisTTL(ttl time.Duration) RedisRegistryOption {
	return func(r *RedisRegistry) {
		r.ttl = ttl
	}
}

// WithKeyPrefix overrides the default key prefix
func WithKeyPrefix(prefix string) RedisRegistryOption {
	return func(r *RedisRegistry) {
		r.prefix = prefix
	}
}

// NewRedisRegistry creates a new Redis-backed OTP registry
func NewRedisRegistry(client redis.UniversalClient, opts ...RedisRegistryOption) *RedisRegistry {
	r := &RedisRegistry{
		client: client,
		prefix: "otp",
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisRegistry) key(identifier string) string {
	return r.prefix + ":" + identifier
}

// Issue generates a fresh code for the identifier, replacing any existing entry
func (r *RedisRegistry) Issue(ctx context.Context, identifier string) (string, error) {
	code, err := GenerateCode(CodeLength)
	if err != nil {
		return "", err
	}
	if err := r.client.Set(ctx, r.key(identifier), code, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return code, nil
}

// verifyScript compares and deletes in one server-side step so that two
// concurrent submissions of the correct code cannot both consume it.
// A mismatch leaves the entry intact.
var verifyScript = redis.NewScript(`
local stored = redis.call("GET", KEYS[1])
if stored == false then
	return 0
end
if stored == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// Verify checks candidate against the stored code, consuming it on match
func (r *RedisRegistry) Verify(ctx context.Context, identifier, candidate string) (bool, error) {
	res, err := verifyScript.Run(ctx, r.client, []string{r.key(identifier)}, candidate).Int()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return res == 1, nil
}

// Remove invalidates the entry for the identifier, if any
func (r *RedisRegistry) Remove(ctx context.Context, identifier string) error {
	if err := r.client.Del(ctx, r.key(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return nil
}
