// Package cities serves the reference list of cities events are listed
// under.
package cities

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/pkg/apperr"
	"github.com/eventora/backend/pkg/response"
)

const pgUniqueViolation = "23505"

// Repository handles city persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a cities repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a city; duplicate names surface as Conflict.
func (r *Repository) Create(ctx context.Context, name string) (*models.City, error) {
	const q = `INSERT INTO cities (id, name) VALUES (gen_random_uuid(), $1)
		RETURNING id, name, created_at`
	var city models.City
	err := r.pool.QueryRow(ctx, q, name).Scan(&city.ID, &city.Name, &city.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperr.Conflict("city already exists")
		}
		return nil, err
	}
	return &city, nil
}

// List returns all cities ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.City, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM cities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.City
	for rows.Next() {
		var city models.City
		if err := rows.Scan(&city.ID, &city.Name, &city.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, city)
	}
	return list, rows.Err()
}

// Handler handles city HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a cities handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateBody is the body for POST /cities.
type CreateBody struct {
	Name string `json:"name" binding:"required"`
}

// Create handles POST /cities. Mounted behind the moderator guard.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "city name is required")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		response.BadRequest(c, "city name is required")
		return
	}
	city, err := h.repo.Create(c.Request.Context(), name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, city)
}

// List handles GET /cities.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load cities")
		return
	}
	response.OK(c, list)
}
