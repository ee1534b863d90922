// Package favorites lets authenticated users save events.
package favorites

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventora/backend/internal/middleware"
	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/pkg/apperr"
	"github.com/eventora/backend/pkg/response"
)

const pgForeignKeyViolation = "23503"

// Repository handles favorite persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a favorites repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Exists reports whether the user favorited the event.
func (r *Repository) Exists(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND event_id = $2)`
	var exists bool
	err := r.pool.QueryRow(ctx, q, userID, eventID).Scan(&exists)
	return exists, err
}

// Add saves an event for the user.
func (r *Repository) Add(ctx context.Context, userID, eventID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO favorites (user_id, event_id) VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING`, userID, eventID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return apperr.NotFound("event not found")
		}
		return err
	}
	return nil
}

// Remove deletes a favorite.
func (r *Repository) Remove(ctx context.Context, userID, eventID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	return err
}

// ListEvents returns the user's favorited events, newest first.
func (r *Repository) ListEvents(ctx context.Context, userID uuid.UUID) ([]*models.Event, error) {
	const q = `SELECT e.id, e.title, e.description, COALESCE(e.details,''), e.location,
		e.event_date, e.start_date, COALESCE(e.end_date,''), e.image, e.price, e.price_type, e.status,
		e.featured, e.views, e.user_id, e.city_id, e.category_id, e.created_at, e.updated_at
		FROM favorites f
		INNER JOIN events e ON e.id = f.event_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Details, &e.Location,
			&e.EventDate, &e.StartDate, &e.EndDate, &e.Image, &e.Price, &e.PriceType, &e.Status,
			&e.Featured, &e.Views, &e.UserID, &e.CityID, &e.CategoryID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// Handler handles favorite HTTP endpoints. All routes are mounted behind
// the auth guard.
type Handler struct {
	repo *Repository
}

// NewHandler creates a favorites handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ToggleBody is the body for POST /favorites.
type ToggleBody struct {
	EventID uuid.UUID `json:"event_id" binding:"required"`
}

// Toggle handles POST /favorites: adds the event to the caller's favorites,
// or removes it when already saved.
func (h *Handler) Toggle(c *gin.Context) {
	user := middleware.User(c)
	var body ToggleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "event_id is required")
		return
	}

	exists, err := h.repo.Exists(c.Request.Context(), user.ID, body.EventID)
	if err != nil {
		response.Internal(c, "failed to toggle favorite")
		return
	}
	if exists {
		if err := h.repo.Remove(c.Request.Context(), user.ID, body.EventID); err != nil {
			response.Internal(c, "failed to remove favorite")
			return
		}
		response.OK(c, gin.H{"status": "removed", "event_id": body.EventID})
		return
	}
	if err := h.repo.Add(c.Request.Context(), user.ID, body.EventID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"status": "added", "event_id": body.EventID})
}

// List handles GET /favorites: the caller's saved events.
func (h *Handler) List(c *gin.Context) {
	user := middleware.User(c)
	list, err := h.repo.ListEvents(c.Request.Context(), user.ID)
	if err != nil {
		response.Internal(c, "failed to load favorites")
		return
	}
	response.OK(c, list)
}

// Delete handles DELETE /favorites/:eventId.
func (h *Handler) Delete(c *gin.Context) {
	user := middleware.User(c)
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.Remove(c.Request.Context(), user.ID, eventID); err != nil {
		response.Internal(c, "failed to remove favorite")
		return
	}
	response.OK(c, gin.H{"status": "removed", "event_id": eventID})
}
