package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

// AuthService implements registration, login and availability checks.
type AuthService struct {
	users    ports.CredentialRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	limiter  ports.LoginLimiter
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService wires the auth use cases. limiter may be nil, in which case
// logins are not throttled.
func NewAuthService(
	users ports.CredentialRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	limiter ports.LoginLimiter,
	notifier ports.Notifier,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		limiter:  limiter,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)

	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}
	taken, err = s.users.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, domain.ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Role:         domain.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")

	s.notifier.Notify(ctx, domain.Notification{
		Kind:        domain.NotifyWelcome,
		RecipientID: created.ID,
		Email:       created.Email,
		Subject:     "Welcome to TaskNexus",
		Data:        map[string]string{"username": created.Username, "fullName": created.FullName},
	})

	return created, nil
}

// Login authenticates by email or username. An unknown identifier and a
// wrong password both yield domain.ErrInvalidCredentials. The inactive flag
// is only reported once the password has been verified.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	key := strings.ToLower(identifier)
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, key)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
		case !ok:
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.lookup(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}
	s.resetFailures(ctx, key)
	if !user.Active {
		return nil, domain.ErrCredentialInactive
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user logged in")

	return &ports.LoginResult{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	}, nil
}

// Only failed attempts count towards the limit.
func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Fail(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("login limiter unavailable, failure not recorded")
	}
}

func (s *AuthService) resetFailures(ctx context.Context, key string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("login limiter unavailable, failures not reset")
	}
}

func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.users.ExistsByEmail(ctx, normalizeEmail(email))
}

func (s *AuthService) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.users.ExistsByUsername(ctx, strings.TrimSpace(username))
}

func (s *AuthService) lookup(ctx context.Context, identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		user, err := s.users.FindByEmail(ctx, normalizeEmail(identifier))
		if !errors.Is(err, domain.ErrUserNotFound) {
			return user, err
		}
	}
	return s.users.FindByUsername(ctx, identifier)
}

func validateRegistration(input ports.RegisterInput) error {
	fields := map[string]string{}
	if input.Email == "" {
		fields["email"] = "email is required"
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		fields["email"] = "email must be a valid address"
	}
	if n := len(input.Username); n < 3 || n > 50 {
		fields["username"] = "username must be between 3 and 50 characters"
	}
	if msg := passwordProblem("password", input.Password); msg != "" {
		fields["password"] = msg
	}
	if input.FullName == "" {
		fields["fullName"] = "fullName is required"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// passwordProblem describes why pw is unacceptable, or returns "".
func passwordProblem(field, pw string) string {
	switch {
	case utf8.RuneCountInString(pw) < domain.MinPasswordLength:
		return field + " must be at least " + strconv.Itoa(domain.MinPasswordLength) + " characters"
	case len(pw) > domain.MaxPasswordBytes:
		return field + " must be at most " + strconv.Itoa(domain.MaxPasswordBytes) + " bytes"
	}
	return ""
}
