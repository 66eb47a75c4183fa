package domain

import "time"

// Claims is the identity payload extracted from a validated token.
type Claims struct {
	Subject   string
	UserID    int64
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal projects the claims onto a request principal.
func (c *Claims) Principal() Principal {
	return Principal{
		SubjectID: c.UserID,
		Username:  c.Subject,
		Role:      c.Role,
	}
}
