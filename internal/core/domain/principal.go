package domain

// Principal is the authenticated identity attached to a single request.
// It is derived from validated token claims and never persisted.
type Principal struct {
	SubjectID int64
	Username  string
	Role      Role
}

// HasRole reports whether the principal holds any of roles.
func (p Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// Owned is implemented by every resource that has exactly one owner.
type Owned interface {
	Owner() int64
}
