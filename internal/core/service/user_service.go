package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

// UserService implements the profile use cases. Every operation acts on the
// principal's own record.
type UserService struct {
	users  ports.CredentialRepository
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewUserService(users ports.CredentialRepository, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, log: log}
}

func (s *UserService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	return s.users.FindByID(ctx, p.SubjectID)
}

func (s *UserService) Get(ctx context.Context, p domain.Principal, id int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := EnsureOwner(p, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, p domain.Principal, update ports.ProfileUpdate) (*domain.User, error) {
	if update.FullName != nil && *update.FullName == "" {
		return nil, domain.NewValidationError("fullName", "fullName must not be empty")
	}
	return s.users.UpdateProfile(ctx, p.SubjectID, update)
}

func (s *UserService) ChangePassword(ctx context.Context, p domain.Principal, current, next string) error {
	if msg := passwordProblem("newPassword", next); msg != "" {
		return domain.NewValidationError("newPassword", msg)
	}

	user, err := s.users.FindByID(ctx, p.SubjectID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return domain.ErrInvalidCurrentPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("password changed")
	return nil
}

// Deactivate marks the principal inactive. Tokens already issued stay valid
// until they expire; only new logins are refused.
func (s *UserService) Deactivate(ctx context.Context, p domain.Principal) error {
	if err := s.users.Deactivate(ctx, p.SubjectID); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", p.SubjectID).Msg("user deactivated")
	return nil
}
