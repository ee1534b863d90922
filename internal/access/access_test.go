package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/internal/roles"
	"github.com/eventora/backend/pkg/apperr"
)

func testGuards(t *testing.T) *Guards {
	t.Helper()
	reg, err := roles.NewRegistry([]models.Role{
		{ID: 1, Name: roles.NameAdmin},
		{ID: 2, Name: roles.NameOrganizer},
		{ID: 3, Name: roles.NameUser},
		{ID: 4, Name: roles.NameModerator},
	})
	require.NoError(t, err)
	return NewGuards(reg)
}

func identityWithRole(roleID int) models.Identity {
	return models.Identity{
		User:    &models.User{ID: uuid.New(), RoleID: roleID, Status: models.StatusActive},
		Session: &models.Session{ID: uuid.New()},
	}
}

func TestGuardsAnonymous(t *testing.T) {
	g := testGuards(t)
	anon := models.Identity{}

	checks := []func(models.Identity) (*models.User, error){
		g.RequireAuth, g.RequireAdmin, g.RequireModerator, g.RequireOrganizer,
	}
	for _, check := range checks {
		user, err := check(anon)
		require.Nil(t, user)
		require.True(t, apperr.IsCode(err, apperr.CodeUnauthenticated))
	}
}

func TestGuardsRoleMatrix(t *testing.T) {
	g := testGuards(t)

	cases := []struct {
		name      string
		roleID    int
		admin     bool
		moderator bool
		organizer bool
	}{
		{"admin", 1, true, true, true},
		{"organizer", 2, false, false, true},
		{"simple user", 3, false, false, false},
		{"moderator", 4, false, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := identityWithRole(tc.roleID)

			user, err := g.RequireAuth(id)
			require.NoError(t, err)
			require.Equal(t, id.User, user)

			_, err = g.RequireAdmin(id)
			requireGuard(t, tc.admin, err)
			_, err = g.RequireModerator(id)
			requireGuard(t, tc.moderator, err)
			_, err = g.RequireOrganizer(id)
			requireGuard(t, tc.organizer, err)
		})
	}
}

func requireGuard(t *testing.T, allowed bool, err error) {
	t.Helper()
	if allowed {
		require.NoError(t, err)
		return
	}
	require.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}
