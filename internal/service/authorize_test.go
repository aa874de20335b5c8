package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/threaddesk/threaddesk/internal/domain"
)

func TestResolveManagerMatchesByUserAndRole(t *testing.T) {
	byRole := domain.Manager{ID: uuid.New(), Name: "by-role", Roles: []int64{10}}
	byUser := domain.Manager{ID: uuid.New(), Name: "by-user", Users: []int64{55}}
	managers := []domain.Manager{byRole, byUser}

	tests := []struct {
		name      string
		principal domain.Principal
		wantName  string
		wantOK    bool
	}{
		{"role member", domain.Principal{UserID: 1, RoleIDs: []int64{10}}, "by-role", true},
		{"direct user", domain.Principal{UserID: 55}, "by-user", true},
		{"no match", domain.Principal{UserID: 2, RoleIDs: []int64{99}}, "", false},
		{"empty roles", domain.Principal{UserID: 3}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, ok := ResolveManager(tt.principal, managers)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				require.Equal(t, tt.wantName, manager.Name)
			}
		})
	}
}

func TestResolveManagerFirstMatchWins(t *testing.T) {
	first := domain.Manager{ID: uuid.New(), Name: "first", Roles: []int64{10}}
	second := domain.Manager{ID: uuid.New(), Name: "second", Roles: []int64{10}}

	manager, ok := ResolveManager(domain.Principal{UserID: 1, RoleIDs: []int64{10}}, []domain.Manager{first, second})
	require.True(t, ok)
	require.Equal(t, "first", manager.Name)
}

func TestIsAuthorizedEmptySet(t *testing.T) {
	require.False(t, IsAuthorized(domain.Principal{UserID: 1, RoleIDs: []int64{10}}, nil))
}

func TestCanUseTag(t *testing.T) {
	config := domain.TraceConfig{
		RolesAllowed: []int64{20},
		UsersAllowed: []int64{7},
	}

	require.True(t, CanUseTag(domain.Principal{UserID: 7}, config))
	require.True(t, CanUseTag(domain.Principal{UserID: 1, RoleIDs: []int64{20}}, config))
	require.False(t, CanUseTag(domain.Principal{UserID: 1, RoleIDs: []int64{21}}, config))
	require.False(t, CanUseTag(domain.Principal{UserID: 1}, domain.TraceConfig{}))
}
