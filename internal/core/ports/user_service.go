package ports

import (
	"context"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// UserService defines profile operations performed on behalf of a principal.
type UserService interface {
	Me(ctx context.Context, p domain.Principal) (*domain.User, error)
	// Get returns the profile with id, which must belong to p.
	Get(ctx context.Context, p domain.Principal, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, p domain.Principal, update ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, p domain.Principal, current, next string) error
	Deactivate(ctx context.Context, p domain.Principal) error
}
