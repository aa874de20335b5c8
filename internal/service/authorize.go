package service

import "github.com/threaddesk/threaddesk/internal/domain"

// ResolveManager returns the first manager in the set matching the principal.
// The set's order is the deterministic iteration order. Absence of a match is
// a normal outcome, not an error.
func ResolveManager(p domain.Principal, managers []domain.Manager) (*domain.Manager, bool) {
	for i := range managers {
		if managers[i].Matches(p) {
			return &managers[i], true
		}
	}
	return nil, false
}

// IsAuthorized reports whether the principal resolves to any manager.
func IsAuthorized(p domain.Principal, managers []domain.Manager) bool {
	_, ok := ResolveManager(p, managers)
	return ok
}

// CanUseTag reports whether the principal may open trace tickets with the
// configured tag. This is the usage allow-list, a distinct authorization axis
// from the config's manager set.
func CanUseTag(p domain.Principal, config domain.TraceConfig) bool {
	for _, user := range config.UsersAllowed {
		if user == p.UserID {
			return true
		}
	}
	for _, role := range config.RolesAllowed {
		for _, held := range p.RoleIDs {
			if held == role {
				return true
			}
		}
	}
	return false
}
