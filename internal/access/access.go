// Package access holds the role guards. Guards are pure predicates over a
// resolved Identity: they either return the authenticated user or a typed
// error, never a degraded result, and are safe to call repeatedly.
package access

import (
	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/internal/roles"
	"github.com/eventora/backend/pkg/apperr"
)

// Guards evaluates role predicates against the role registry.
type Guards struct {
	roles *roles.Registry
}

// NewGuards creates the guard set bound to the resolved role registry.
func NewGuards(r *roles.Registry) *Guards {
	return &Guards{roles: r}
}

// RequireAuth succeeds iff the identity carries a user.
func (g *Guards) RequireAuth(id models.Identity) (*models.User, error) {
	if id.Anonymous() {
		return nil, apperr.Unauthenticated("you must be logged in")
	}
	return id.User, nil
}

// RequireAdmin succeeds iff the caller is authenticated and an admin.
func (g *Guards) RequireAdmin(id models.Identity) (*models.User, error) {
	user, err := g.RequireAuth(id)
	if err != nil {
		return nil, err
	}
	if user.RoleID != g.roles.Admin() {
		return nil, apperr.Forbidden("admin access required")
	}
	return user, nil
}

// RequireModerator succeeds for admins and moderators.
func (g *Guards) RequireModerator(id models.Identity) (*models.User, error) {
	user, err := g.RequireAuth(id)
	if err != nil {
		return nil, err
	}
	if user.RoleID != g.roles.Admin() && user.RoleID != g.roles.Moderator() {
		return nil, apperr.Forbidden("moderator access required")
	}
	return user, nil
}

// RequireOrganizer succeeds for admins and organizers.
func (g *Guards) RequireOrganizer(id models.Identity) (*models.User, error) {
	user, err := g.RequireAuth(id)
	if err != nil {
		return nil, err
	}
	if user.RoleID != g.roles.Admin() && user.RoleID != g.roles.Organizer() {
		return nil, apperr.Forbidden("organizer access required")
	}
	return user, nil
}
