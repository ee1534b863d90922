package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/pkg/apperr"
)

const pgUniqueViolation = "23505"

const userColumns = `id, email, password_hash, name, role_id, status, organizer_status, COALESCE(image,''), created_at, updated_at`

// Repository handles user and session persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
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

// GetUserByID returns a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail returns a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// CreateUser inserts a new user with the given role and active status.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash, name string, roleID int) (*models.User, error) {
	const q = `INSERT INTO users (id, email, password_hash, name, role_id, status, organizer_status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	user, err := scanUser(r.pool.QueryRow(ctx, q, email, passwordHash, name, roleID,
		models.StatusActive, models.OrganizerStatusNone))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, err
	}
	return user, nil
}

// CreateSession inserts a session row for the user.
func (r *Repository) CreateSession(ctx context.Context, userID uuid.UUID, lifetime time.Duration) (*models.Session, error) {
	const q = `INSERT INTO sessions (id, user_id, expires_at)
		VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, user_id, expires_at, created_at`
	var s models.Session
	err := r.pool.QueryRow(ctx, q, userID, time.Now().Add(lifetime)).
		Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession returns a session by ID, or NotFound when absent.
func (r *Repository) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	const q = `SELECT id, user_id, expires_at, created_at FROM sessions WHERE id = $1`
	var s models.Session
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("session not found")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session row. Deleting an absent session is not an
// error: logout is idempotent.
func (r *Repository) DeleteSession(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpiredSessions clears sessions past expiry, returning the count.
func (r *Repository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
