// Package roles resolves role identifiers from the roles reference table.
// The source data had drifting numberings across revisions; resolving by
// name once at startup keeps guards free of literals.
package roles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventora/backend/internal/models"
)

// Canonical role names as seeded in the roles table.
const (
	NameAdmin     = "admin"
	NameOrganizer = "organizer"
	NameUser      = "user simple"
	NameModerator = "moderator"
)

// Registry maps canonical role names to their table IDs.
type Registry struct {
	byName map[string]int
	byID   map[int]string
}

// NewRegistry builds a registry from role rows. Returns an error when any
// canonical role is missing, so a misseeded database fails at startup.
func NewRegistry(rows []models.Role) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]int, len(rows)),
		byID:   make(map[int]string, len(rows)),
	}
	for _, row := range rows {
		r.byName[row.Name] = row.ID
		r.byID[row.ID] = row.Name
	}
	for _, name := range []string{NameAdmin, NameOrganizer, NameUser, NameModerator} {
		if _, ok := r.byName[name]; !ok {
			return nil, fmt.Errorf("roles table missing %q", name)
		}
	}
	return r, nil
}

// Load reads the roles table and builds the registry.
func Load(ctx context.Context, pool *pgxpool.Pool) (*Registry, error) {
	rows, err := pool.Query(ctx, `SELECT id, name FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()
	var list []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		list = append(list, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return NewRegistry(list)
}

// Admin returns the admin role ID.
func (r *Registry) Admin() int { return r.byName[NameAdmin] }

// Organizer returns the organizer role ID.
func (r *Registry) Organizer() int { return r.byName[NameOrganizer] }

// User returns the simple-user role ID.
func (r *Registry) User() int { return r.byName[NameUser] }

// Moderator returns the moderator role ID.
func (r *Registry) Moderator() int { return r.byName[NameModerator] }

// NameOf returns the role name for an ID, or "" when unknown.
func (r *Registry) NameOf(id int) string { return r.byID[id] }

// Exists reports whether the role ID is present in the table.
func (r *Registry) Exists(id int) bool {
	_, ok := r.byID[id]
	return ok
}
