package domain

import "github.com/google/uuid"

// Principal is the acting entity whose authorization is evaluated.
type Principal struct {
	UserID  int64
	RoleIDs []int64
}

// Manager is an authorization unit granting administrative actions over a
// forum or a trace configuration. It is shared many-to-many with both.
type Manager struct {
	ID            uuid.UUID
	Name          string
	CustomMessage string
	Roles         []int64
	Users         []int64
}

// Matches reports whether the principal belongs to this manager, either by
// user id or by any of its role ids.
func (m Manager) Matches(p Principal) bool {
	for _, user := range m.Users {
		if user == p.UserID {
			return true
		}
	}
	for _, role := range m.Roles {
		for _, held := range p.RoleIDs {
			if held == role {
				return true
			}
		}
	}
	return false
}
