package ports

import (
	"context"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// PasswordHasher hashes and verifies plaintext passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash; it never errors.
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs new bearer tokens.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	Validate(token string) (*domain.Claims, error)
}

// LoginLimiter throttles failed login attempts per identifier.
type LoginLimiter interface {
	// Allow reports whether the identifier is still below the failure limit.
	// It does not count the attempt.
	Allow(ctx context.Context, identifier string) (bool, error)
	// Fail records one failed attempt.
	Fail(ctx context.Context, identifier string) error
	// Reset clears the failures after a successful login.
	Reset(ctx context.Context, identifier string) error
}
