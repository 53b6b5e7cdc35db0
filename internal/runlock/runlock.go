// Package runlock keeps overlapping discovery runs from racing each other
// past the duplicate check.
package runlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis key guarding discovery runs.
const DefaultKey = "honeyscout:discovery:lock"

// ErrHeld is returned by Acquire when another run holds the lock.
var ErrHeld = errors.New("another discovery run holds the lock")

// Lease is a held lock.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker hands out at most one lease at a time.
type Locker interface {
	Acquire(ctx context.Context) (Lease, error)
	Close() error
}

// New returns a Redis-backed locker, or a no-op locker when url is empty.
func New(url string, ttl time.Duration) (Locker, error) {
	if url == "" {
		return Noop{}, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return NewRedisLocker(redis.NewClient(opts), DefaultKey, ttl), nil
}

// Noop always grants the lease. Used when no Redis is configured.
type Noop struct{}

func (Noop) Acquire(ctx context.Context) (Lease, error) { return noopLease{}, nil }
func (Noop) Close() error                               { return nil }

type noopLease struct{}

func (noopLease) Release(ctx context.Context) error { return nil }

// RedisLocker is a single-key SET NX lock with a TTL so a crashed run cannot
// hold it forever.
type RedisLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisLocker creates a locker on client.
func NewRedisLocker(client *redis.Client, key string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisLocker{client: client, key: key, ttl: ttl}
}

// Acquire takes the lock or returns ErrHeld.
func (l *RedisLocker) Acquire(ctx context.Context) (Lease, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &redisLease{client: l.client, key: l.key, token: token}, nil
}

// Close closes the Redis client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLease struct {
	client *redis.Client
	key    string
	token  string
}

func (l *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	return nil
}
