package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// MinSecretLength is the shortest accepted HS256 signing key, in bytes.
const MinSecretLength = 32

// ErrWeakSecret is returned by NewTokenService for a short signing key.
var ErrWeakSecret = fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)

// tokenClaims is the wire shape of the payload:
// {sub, userId, role, iat, exp}.
type tokenClaims struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 bearer tokens. The key and TTL
// are fixed for the lifetime of the process.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	s := &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Expiry is checked in Validate: jwt/v5 already rejects at now == exp.
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	return s, nil
}

// TTL reports the fixed token lifetime.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for user.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature, then the expiry, and returns the claims.
// The error is always one of domain.ErrTokenMalformed,
// domain.ErrTokenBadSignature or domain.ErrTokenExpired.
func (s *TokenService) Validate(raw string) (*domain.Claims, error) {
	var claims tokenClaims
	if _, err := s.parser.ParseWithClaims(raw, &claims, s.key); err != nil {
		return nil, classifyTokenError(err)
	}
	if claims.ExpiresAt == nil {
		return nil, domain.ErrTokenMalformed
	}
	// a token is still valid at the exp instant itself
	if s.now().After(claims.ExpiresAt.Time) {
		return nil, domain.ErrTokenExpired
	}

	role := domain.Role(claims.Role)
	if claims.Subject == "" || claims.UserID <= 0 || !role.Valid() {
		return nil, domain.ErrTokenMalformed
	}

	return &domain.Claims{
		Subject:   claims.Subject,
		UserID:    claims.UserID,
		Role:      role,
		IssuedAt:  numericTime(claims.IssuedAt),
		ExpiresAt: numericTime(claims.ExpiresAt),
	}, nil
}

func (s *TokenService) key(_ *jwt.Token) (any, error) {
	return s.secret, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.ErrTokenMalformed
	default:
		// signature mismatch, unexpected alg, unverifiable token
		return domain.ErrTokenBadSignature
	}
}

func numericTime(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time.UTC()
}
