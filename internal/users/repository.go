package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/pkg/apperr"
)

const userColumns = `id, email, password_hash, name, role_id, status, organizer_status, COALESCE(image,''), created_at, updated_at`

// Repository handles admin-facing user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.RoleID, &u.Status,
		&u.OrganizerStatus, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetRole overwrites a user's role. Deliberately bypasses the organizer
// workflow bookkeeping: this is the admin escape hatch.
func (r *Repository) SetRole(ctx context.Context, userID uuid.UUID, roleID int) (*models.User, error) {
	const q = `UPDATE users SET role_id = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, userID, roleID))
}

// SetStatus overwrites a user's account status.
func (r *Repository) SetStatus(ctx context.Context, userID uuid.UUID, status string) (*models.User, error) {
	const q = `UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, userID, status))
}

// List returns all users, newest first.
func (r *Repository) List(ctx context.Context) ([]models.UserPublic, error) {
	const q = `SELECT id, email, name, role_id, status, organizer_status, COALESCE(image,''), created_at
		FROM users ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.RoleID, &u.Status,
			&u.OrganizerStatus, &u.Image, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
