// Package memory provides process-local repositories for development runs
// and tests. Data is lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

// CredentialRepository implements ports.CredentialRepository in memory.
type CredentialRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
}

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{users: make(map[int64]domain.User)}
}

func (r *CredentialRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
		if u.Username == user.Username {
			return nil, domain.ErrUsernameTaken
		}
	}
	r.nextID++
	stored := *user
	stored.ID = r.nextID
	r.users[stored.ID] = stored
	return &stored, nil
}

func (r *CredentialRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *CredentialRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *CredentialRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *CredentialRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *CredentialRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *CredentialRepository) UpdateProfile(_ context.Context, id int64, update ports.ProfileUpdate) (*domain.User, error) {
	var out domain.User
	err := r.mutate(id, func(u *domain.User) {
		if update.FullName != nil {
			u.FullName = *update.FullName
		}
		if update.PhoneNumber != nil {
			u.PhoneNumber = *update.PhoneNumber
		}
		if update.ProfileImageURL != nil {
			u.ProfileImageURL = *update.ProfileImageURL
		}
		out = *u
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CredentialRepository) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	return r.mutate(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (r *CredentialRepository) Deactivate(_ context.Context, id int64) error {
	return r.mutate(id, func(u *domain.User) { u.Active = false })
}

func (r *CredentialRepository) find(match func(domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *CredentialRepository) mutate(id int64, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}
