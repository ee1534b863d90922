package categories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/pkg/apperr"
)

const pgUniqueViolation = "23505"

// Repository handles category persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a categories repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a category; duplicate names surface as Conflict.
func (r *Repository) Create(ctx context.Context, name string) (*models.Category, error) {
	const q = `INSERT INTO categories (id, name) VALUES (gen_random_uuid(), $1)
		RETURNING id, name, created_at`
	var cat models.Category
	err := r.pool.QueryRow(ctx, q, name).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperr.Conflict("category already exists")
		}
		return nil, err
	}
	return &cat, nil
}

// GetByID returns a category by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	const q = `SELECT id, name, created_at FROM categories WHERE id = $1`
	var cat models.Category
	err := r.pool.QueryRow(ctx, q, id).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("category not found")
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// List returns all categories ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, cat)
	}
	return list, rows.Err()
}

// Rename updates a category name.
func (r *Repository) Rename(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	const q = `UPDATE categories SET name = $2 WHERE id = $1 RETURNING id, name, created_at`
	var cat models.Category
	err := r.pool.QueryRow(ctx, q, id, name).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("category not found")
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperr.Conflict("category already exists")
		}
		return nil, err
	}
	return &cat, nil
}

// Delete removes a category.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("category not found")
	}
	return nil
}
