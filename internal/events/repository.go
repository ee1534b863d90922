package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/pkg/apperr"
)

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateParams holds the fields of a new event.
type CreateParams struct {
	Title       string
	Description string
	Details     string
	Location    string
	EventDate   time.Time
	StartDate   string
	EndDate     string
	Price       *float64
	PriceType   string
	Status      string
	UserID      uuid.UUID
	CityID      uuid.UUID
	CategoryID  uuid.UUID
	ImageURLs   []string
}

// Create inserts an event and its image rows in one transaction. The first
// image URL doubles as the cover image.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*models.Event, error) {
	if len(p.ImageURLs) == 0 {
		return nil, apperr.Invalid("at least one image is required")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to create event", err)
	}
	defer tx.Rollback(ctx)

	var e models.Event
	err = tx.QueryRow(ctx, `INSERT INTO events
		(id, title, description, details, location, event_date, start_date, end_date, image, price, price_type, status, user_id, city_id, category_id)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3,''), $4, $5, $6, NULLIF($7,''), $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`,
		p.Title, p.Description, p.Details, p.Location, p.EventDate, p.StartDate, p.EndDate,
		p.ImageURLs[0], p.Price, p.PriceType, p.Status, p.UserID, p.CityID, p.CategoryID).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, apperr.Internal("failed to create event", err)
	}

	for _, url := range p.ImageURLs {
		var img models.EventImage
		err = tx.QueryRow(ctx, `INSERT INTO event_images (id, event_id, url)
			VALUES (gen_random_uuid(), $1, $2) RETURNING id`, e.ID, url).Scan(&img.ID)
		if err != nil {
			return nil, apperr.Internal("failed to save event image", err)
		}
		img.EventID = e.ID
		img.URL = url
		e.Images = append(e.Images, img)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Internal("failed to create event", err)
	}

	e.Title, e.Description, e.Details, e.Location = p.Title, p.Description, p.Details, p.Location
	e.EventDate, e.StartDate, e.EndDate = p.EventDate, p.StartDate, p.EndDate
	e.Image, e.Price, e.PriceType, e.Status = p.ImageURLs[0], p.Price, p.PriceType, p.Status
	e.UserID, e.CityID, e.CategoryID = p.UserID, p.CityID, p.CategoryID
	return &e, nil
}

const eventSelect = `SELECT e.id, e.title, e.description, COALESCE(e.details,''), e.location,
	e.event_date, e.start_date, COALESCE(e.end_date,''), e.image, e.price, e.price_type, e.status,
	e.featured, e.views, e.user_id, e.city_id, e.category_id, e.created_at, e.updated_at,
	c.id, c.name, c.created_at,
	cat.id, cat.name, cat.created_at,
	u.id, u.email, u.name, u.role_id, u.status, u.organizer_status, COALESCE(u.image,''), u.created_at
	FROM events e
	INNER JOIN cities c ON c.id = e.city_id
	INNER JOIN categories cat ON cat.id = e.category_id
	INNER JOIN users u ON u.id = e.user_id`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	e.City = &models.City{}
	e.Category = &models.Category{}
	e.Owner = &models.UserPublic{}
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Details, &e.Location,
		&e.EventDate, &e.StartDate, &e.EndDate, &e.Image, &e.Price, &e.PriceType, &e.Status,
		&e.Featured, &e.Views, &e.UserID, &e.CityID, &e.CategoryID, &e.CreatedAt, &e.UpdatedAt,
		&e.City.ID, &e.City.Name, &e.City.CreatedAt,
		&e.Category.ID, &e.Category.Name, &e.Category.CreatedAt,
		&e.Owner.ID, &e.Owner.Email, &e.Owner.Name, &e.Owner.RoleID, &e.Owner.Status,
		&e.Owner.OrganizerStatus, &e.Owner.Image, &e.Owner.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("event not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByID returns one event with city, category, owner, and images.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		return nil, err
	}
	images, err := r.listImages(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Images = images
	return e, nil
}

func (r *Repository) listImages(ctx context.Context, eventID uuid.UUID) ([]models.EventImage, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, event_id, url FROM event_images WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EventImage
	for rows.Next() {
		var img models.EventImage
		if err := rows.Scan(&img.ID, &img.EventID, &img.URL); err != nil {
			return nil, err
		}
		list = append(list, img)
	}
	return list, rows.Err()
}

func (r *Repository) list(ctx context.Context, where string, args ...any) ([]*models.Event, error) {
	rows, err := r.pool.Query(ctx, eventSelect+where+` ORDER BY e.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// ListAll returns every event, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]*models.Event, error) {
	return r.list(ctx, "")
}

// ListByOwner returns events owned by a user, newest first.
func (r *Repository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]*models.Event, error) {
	return r.list(ctx, ` WHERE e.user_id = $1`, userID)
}

// ListPublished returns published events for the public listing.
func (r *Repository) ListPublished(ctx context.Context) ([]*models.Event, error) {
	return r.list(ctx, ` WHERE e.status = $1`, models.EventStatusPublished)
}

// UpdateParams holds the patchable fields of an event. Nil pointers are
// left unchanged.
type UpdateParams struct {
	Title       *string
	Description *string
	Details     *string
	Location    *string
	EventDate   *time.Time
	StartDate   *string
	EndDate     *string
	Price       *float64
	PriceType   *string
	Status      *string
	CityID      *uuid.UUID
	CategoryID  *uuid.UUID
}

// Update patches an event and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.Event, error) {
	set := ""
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		set += fmt.Sprintf(", %s = $%d", col, len(args))
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Details != nil {
		add("details", *p.Details)
	}
	if p.Location != nil {
		add("location", *p.Location)
	}
	if p.EventDate != nil {
		add("event_date", *p.EventDate)
	}
	if p.StartDate != nil {
		add("start_date", *p.StartDate)
	}
	if p.EndDate != nil {
		add("end_date", *p.EndDate)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.PriceType != nil {
		add("price_type", *p.PriceType)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.CityID != nil {
		add("city_id", *p.CityID)
	}
	if p.CategoryID != nil {
		add("category_id", *p.CategoryID)
	}
	if set == "" {
		return r.GetByID(ctx, id)
	}

	tag, err := r.pool.Exec(ctx, `UPDATE events SET updated_at = NOW()`+set+` WHERE id = $1`, args...)
	if err != nil {
		return nil, apperr.Internal("failed to update event", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("event not found")
	}
	return r.GetByID(ctx, id)
}

// Delete removes an event; image rows go with it via cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("event not found")
	}
	return nil
}

// IncrementViews bumps the view counter.
func (r *Repository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE events SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("event not found")
	}
	return nil
}

// SetFeatured marks an event featured (admin spotlight).
func (r *Repository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*models.Event, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE events SET featured = $2, updated_at = NOW() WHERE id = $1`, id, featured)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("event not found")
	}
	return r.GetByID(ctx, id)
}

// CountByOwner counts a user's events, optionally bounded by creation time.
func (r *Repository) CountByOwner(ctx context.Context, userID uuid.UUID, from, to *time.Time) (int, error) {
	q := `SELECT COUNT(*) FROM events WHERE user_id = $1`
	args := []any{userID}
	if from != nil {
		args = append(args, *from)
		q += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		q += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	var count int
	err := r.pool.QueryRow(ctx, q, args...).Scan(&count)
	return count, err
}

// OrganizerCount pairs an organizer with their event count.
type OrganizerCount struct {
	OrganizerID uuid.UUID `json:"organizer_id"`
	Name        string    `json:"name"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	Count       int       `json:"count"`
}

// CountByOrganizers returns organizers ranked by event count.
func (r *Repository) CountByOrganizers(ctx context.Context, organizerRoleID int) ([]OrganizerCount, error) {
	const q = `SELECT u.id, u.name, COALESCE(u.image,''), COALESCE(p.description,''), COUNT(e.id)
		FROM users u
		LEFT JOIN organizer_profiles p ON p.user_id = u.id
		LEFT JOIN events e ON e.user_id = u.id
		WHERE u.role_id = $1
		GROUP BY u.id, u.name, u.image, p.description
		ORDER BY COUNT(e.id) DESC`
	rows, err := r.pool.Query(ctx, q, organizerRoleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []OrganizerCount
	for rows.Next() {
		var oc OrganizerCount
		if err := rows.Scan(&oc.OrganizerID, &oc.Name, &oc.Image, &oc.Description, &oc.Count); err != nil {
			return nil, err
		}
		list = append(list, oc)
	}
	return list, rows.Err()
}
