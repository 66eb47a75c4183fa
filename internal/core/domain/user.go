package domain

import "time"

// Role is the authorization role carried by a credential and its tokens.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// MinPasswordLength is the shortest plaintext password accepted on
// registration and password change.
const MinPasswordLength = 6

// MaxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
const MaxPasswordBytes = 72

// User models a stored credential together with its profile fields.
type User struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	FullName        string    `json:"fullName"`
	PhoneNumber     string    `json:"phoneNumber,omitempty"`
	ProfileImageURL string    `json:"profileImageUrl,omitempty"`
	Role            Role      `json:"role"`
	Active          bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Owner satisfies Owned: a user profile is owned by the user itself.
func (u *User) Owner() int64 { return u.ID }
