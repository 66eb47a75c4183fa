package ports

import (
	"context"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

// LoginResult is returned on successful login. RefreshToken is always nil:
// refresh tokens are not issued.
type LoginResult struct {
	UserID       int64
	Username     string
	Email        string
	Token        string
	RefreshToken *string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, emailOrUsername, password string) (*LoginResult, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}
