// Package newsletter handles newsletter signups.
package newsletter

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

// Repository handles newsletter subscription persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a newsletter repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Subscribe inserts a subscription; a duplicate email is Conflict.
func (r *Repository) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	const q = `INSERT INTO newsletter_subscriptions (id, email) VALUES (gen_random_uuid(), $1)
		RETURNING id, email, created_at`
	var sub models.NewsletterSubscription
	err := r.pool.QueryRow(ctx, q, email).Scan(&sub.ID, &sub.Email, &sub.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperr.Conflict("email already subscribed")
		}
		return nil, err
	}
	return &sub, nil
}

// List returns all subscriptions, newest first.
func (r *Repository) List(ctx context.Context) ([]models.NewsletterSubscription, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, created_at FROM newsletter_subscriptions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.NewsletterSubscription
	for rows.Next() {
		var sub models.NewsletterSubscription
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, sub)
	}
	return list, rows.Err()
}

// Handler handles newsletter HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a newsletter handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// SubscribeBody is the body for POST /newsletter.
type SubscribeBody struct {
	Email string `json:"email" binding:"required,email"`
}

// Subscribe handles POST /newsletter.
func (h *Handler) Subscribe(c *gin.Context) {
	var body SubscribeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "a valid email is required")
		return
	}
	sub, err := h.repo.Subscribe(c.Request.Context(), strings.ToLower(strings.TrimSpace(body.Email)))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// List handles GET /admin/newsletter. Mounted behind the admin guard.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load subscriptions")
		return
	}
	response.OK(c, list)
}
