package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLoginAttempts = 5
	defaultLoginWindow   = 15 * time.Minute
)

// Fixed window: the first failure in a window starts its expiry.
var loginFailureScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// LoginLimiter caps failed login attempts per identifier within a fixed
// window. A successful login clears the count.
// Key format: login:failures:<identifier>
type LoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginLimiter creates a LoginLimiter. Non-positive limits fall back to
// five failures per fifteen minutes.
func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultLoginAttempts
	}
	if window <= 0 {
		window = defaultLoginWindow
	}
	return &LoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow reports whether identifier has fewer than maxAttempts failures in
// the current window.
func (l *LoginLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	n, err := l.client.Get(ctx, l.key(identifier)).Int64()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("login limiter: %w", err)
	}
	return n < int64(l.maxAttempts), nil
}

// Fail counts one failed attempt.
func (l *LoginLimiter) Fail(ctx context.Context, identifier string) error {
	if err := loginFailureScript.Run(ctx, l.client, []string{l.key(identifier)}, l.window.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	return nil
}

// Reset drops the failure count for identifier.
func (l *LoginLimiter) Reset(ctx context.Context, identifier string) error {
	if err := l.client.Del(ctx, l.key(identifier)).Err(); err != nil {
		return fmt.Errorf("login limiter: %w", err)
	}
	return nil
}

func (l *LoginLimiter) key(identifier string) string {
	return "login:failures:" + identifier
}
