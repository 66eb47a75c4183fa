package ports

import (
	"context"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// ProfileUpdate carries the optional profile fields a user may change.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FullName        *string
	PhoneNumber     *string
	ProfileImageURL *string
}

// CredentialRepository persists user credentials and profiles.
// Lookups return domain.ErrUserNotFound when nothing matches.
type CredentialRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*domain.User, error)
	// UpdatePasswordHash and Deactivate are single-document atomic writes.
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	Deactivate(ctx context.Context, id int64) error
}
