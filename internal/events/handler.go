package events

import (
	"context"
	"fmt"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventora/backend/internal/middleware"
	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/internal/roles"
	"github.com/eventora/backend/pkg/response"
	"github.com/eventora/backend/pkg/storage"
)

// Store is the persistence surface of the event endpoints.
type Store interface {
	Create(ctx context.Context, p CreateParams) (*models.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListAll(ctx context.Context) ([]*models.Event, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]*models.Event, error)
	ListPublished(ctx context.Context) ([]*models.Event, error)
	Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*models.Event, error)
	CountByOwner(ctx context.Context, userID uuid.UUID, from, to *time.Time) (int, error)
	CountByOrganizers(ctx context.Context, organizerRoleID int) ([]OrganizerCount, error)
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo   Store
	roles  *roles.Registry
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates an events handler. s3 may be nil when image storage is
// not configured; creation then rejects uploads.
func NewHandler(repo Store, reg *roles.Registry, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, roles: reg, s3: s3, logger: logger}
}

// List handles GET /events. Admin sees everything, organizers see their own
// events, everyone else gets an empty list.
func (h *Handler) List(c *gin.Context) {
	user := middleware.User(c)

	var (
		list []*models.Event
		err  error
	)
	switch user.RoleID {
	case h.roles.Admin():
		list, err = h.repo.ListAll(c.Request.Context())
	case h.roles.Organizer():
		list, err = h.repo.ListByOwner(c.Request.Context(), user.ID)
	default:
		response.OK(c, []*models.Event{})
		return
	}
	if err != nil {
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, list)
}

// ListFront handles GET /events/front: the public published listing.
func (h *Handler) ListFront(c *gin.Context) {
	list, err := h.repo.ListPublished(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}

// Create handles POST /events (multipart). Requires the organizer guard;
// images are uploaded to S3 before the event row is written.
func (h *Handler) Create(c *gin.Context) {
	user := middleware.User(c)

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "multipart form data required")
		return
	}
	field := func(name string) string {
		if vs := form.Value[name]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	title := field("title")
	description := field("description")
	location := field("location")
	eventDateRaw := field("event_date")
	startDate := field("start_date")
	cityIDRaw := field("city_id")
	categoryIDRaw := field("category_id")
	images := form.File["images"]
	if len(images) == 0 {
		images = form.File["image"]
	}

	if title == "" || description == "" || location == "" || eventDateRaw == "" ||
		startDate == "" || cityIDRaw == "" || categoryIDRaw == "" || len(images) == 0 {
		response.BadRequest(c, "title, description, location, event_date, start_date, city_id, category_id and at least one image are required")
		return
	}

	eventDate, err := parseEventDate(eventDateRaw)
	if err != nil {
		response.BadRequest(c, "invalid event_date")
		return
	}
	cityID, err := uuid.Parse(cityIDRaw)
	if err != nil {
		response.BadRequest(c, "invalid city_id")
		return
	}
	categoryID, err := uuid.Parse(categoryIDRaw)
	if err != nil {
		response.BadRequest(c, "invalid category_id")
		return
	}

	var price *float64
	if raw := field("price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			response.BadRequest(c, "invalid price")
			return
		}
		price = &v
	}
	priceType := normalizePriceType(field("price_type"), price)
	status := field("status")
	if status == "" {
		status = models.EventStatusDraft
	}
	if status != models.EventStatusDraft && status != models.EventStatusPublished {
		response.BadRequest(c, "status must be DRAFT or PUBLISHED")
		return
	}

	if h.s3 == nil {
		response.Internal(c, "image storage not configured")
		return
	}
	eventKey := uuid.New().String()
	urls := make([]string, 0, len(images))
	for _, file := range images {
		url, err := h.uploadImage(c, eventKey, file)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		urls = append(urls, url)
	}

	event, err := h.repo.Create(c.Request.Context(), CreateParams{
		Title:       title,
		Description: description,
		Details:     field("details"),
		Location:    location,
		EventDate:   eventDate,
		StartDate:   startDate,
		EndDate:     field("end_date"),
		Price:       price,
		PriceType:   priceType,
		Status:      status,
		UserID:      user.ID,
		CityID:      cityID,
		CategoryID:  categoryID,
		ImageURLs:   urls,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.logger.Info("event created", zap.String("event_id", event.ID.String()), zap.String("user_id", user.ID.String()))
	response.Created(c, event)
}

func (h *Handler) uploadImage(c *gin.Context, eventKey string, file *multipart.FileHeader) (string, error) {
	contentType := file.Header.Get("Content-Type")
	key := storage.EventImageKey(eventKey, file.Filename, contentType)
	rc, err := file.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return h.s3.UploadImage(c.Request.Context(), key, contentType, rc, file.Size)
}

// UpdateBody is the body for PATCH /events/:id.
type UpdateBody struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Details     *string    `json:"details"`
	Location    *string    `json:"location"`
	EventDate   *string    `json:"event_date"`
	StartDate   *string    `json:"start_date"`
	EndDate     *string    `json:"end_date"`
	Price       *float64   `json:"price"`
	PriceType   *string    `json:"price_type"`
	Status      *string    `json:"status"`
	CityID      *uuid.UUID `json:"city_id"`
	CategoryID  *uuid.UUID `json:"category_id"`
}

// Update handles PATCH /events/:id. Mounted behind the ownership middleware.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var body UpdateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	params := UpdateParams{
		Title:       body.Title,
		Description: body.Description,
		Details:     body.Details,
		Location:    body.Location,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		Price:       body.Price,
		PriceType:   body.PriceType,
		Status:      body.Status,
		CityID:      body.CityID,
		CategoryID:  body.CategoryID,
	}
	if body.EventDate != nil {
		d, err := parseEventDate(*body.EventDate)
		if err != nil {
			response.BadRequest(c, "invalid event_date")
			return
		}
		params.EventDate = &d
	}
	if body.Status != nil && *body.Status != models.EventStatusDraft && *body.Status != models.EventStatusPublished {
		response.BadRequest(c, "status must be DRAFT or PUBLISHED")
		return
	}

	event, err := h.repo.Update(c.Request.Context(), id, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}

// Delete handles DELETE /events/:id. Mounted behind the ownership middleware.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "event deleted"})
}

// View handles POST /events/:id/view: public view-counter increment.
func (h *Handler) View(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.IncrementViews(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "view recorded"})
}

// Feature handles PATCH /admin/events/:id/feature.
func (h *Handler) Feature(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.repo.SetFeatured(c.Request.Context(), id, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}

// CountAll handles GET /events/count: organizers ranked by event count.
func (h *Handler) CountAll(c *gin.Context) {
	list, err := h.repo.CountByOrganizers(c.Request.Context(), h.roles.Organizer())
	if err != nil {
		response.Internal(c, "failed to count events")
		return
	}
	response.OK(c, list)
}

// CountByOrganizer handles GET /events/count/:organizerId with optional
// start/end date bounds (YYYY-MM-DD).
func (h *Handler) CountByOrganizer(c *gin.Context) {
	organizerID, err := uuid.Parse(c.Param("organizerId"))
	if err != nil {
		response.BadRequest(c, "invalid organizer id")
		return
	}

	var from, to *time.Time
	if raw := c.Query("start"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "invalid start date")
			return
		}
		from = &d
	}
	if raw := c.Query("end"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "invalid end date")
			return
		}
		to = &d
	}

	count, err := h.repo.CountByOwner(c.Request.Context(), organizerID, from, to)
	if err != nil {
		response.Internal(c, "failed to count events")
		return
	}
	response.OK(c, gin.H{"organizer_id": organizerID, "count": count})
}

func parseEventDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if d, err := time.Parse(layout, raw); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func normalizePriceType(raw string, price *float64) string {
	switch raw {
	case models.PriceTypeFree, models.PriceTypePaid:
		return raw
	}
	if price != nil && *price > 0 {
		return models.PriceTypePaid
	}
	return models.PriceTypeFree
}
