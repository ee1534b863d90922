package organizer

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventora/backend/internal/middleware"
	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/internal/roles"
	"github.com/eventora/backend/pkg/apperr"
	"github.com/eventora/backend/pkg/queue"
	"github.com/eventora/backend/pkg/response"
)

// Store is the persistence surface of the organizer workflow.
type Store interface {
	SubmitRequest(ctx context.Context, userID uuid.UUID, profile ProfileParams) error
	Adjudicate(ctx context.Context, p AdjudicateParams) (*models.User, int64, error)
	Revoke(ctx context.Context, targetUserID uuid.UUID, userRoleID int) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.OrganizerProfile, error)
	ListPendingRequests(ctx context.Context) ([]RequestWithUser, error)
	ListAllRequests(ctx context.Context) ([]RequestWithReviewer, error)
	ListOrganizers(ctx context.Context, organizerRoleID int) ([]OrganizerSummary, error)
}

// Notifier enqueues outbound notification email.
type Notifier interface {
	EnqueueEmail(ctx context.Context, payload queue.EmailPayload) error
}

// CacheInvalidator drops cached user rows after privilege changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID)
}

// Handler handles the organizer request workflow endpoints.
type Handler struct {
	store    Store
	roles    *roles.Registry
	notifier Notifier
	cache    CacheInvalidator
	logger   *zap.Logger
}

// NewHandler creates an organizer workflow handler. notifier and cache may
// be nil.
func NewHandler(store Store, reg *roles.Registry, notifier Notifier, cache CacheInvalidator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, roles: reg, notifier: notifier, cache: cache, logger: logger}
}

// SubmitRequestBody is the body for POST /organizer/request.
type SubmitRequestBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Phone       string `json:"phone"`
}

// Submit handles POST /organizer/request. The caller must be a simple user
// (or moderator): admins and organizers have nothing to request.
func (h *Handler) Submit(c *gin.Context) {
	user := middleware.User(c)

	if user.RoleID == h.roles.Admin() || user.RoleID == h.roles.Organizer() {
		response.Error(c, apperr.Forbidden("your role is not eligible for an organizer request"))
		return
	}

	var body SubmitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if body.Name == "" {
		response.Error(c, apperr.Invalid("organization name is required"))
		return
	}

	err := h.store.SubmitRequest(c.Request.Context(), user.ID, ProfileParams{
		Name:        body.Name,
		Description: body.Description,
		Website:     body.Website,
		Phone:       body.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), user.ID)
	}

	h.logger.Info("organizer request submitted", zap.String("user_id", user.ID.String()))
	response.Created(c, gin.H{"status": models.RequestStatusPending})
}

// ValidateBody is the body for POST /admin/organizer/validate.
type ValidateBody struct {
	UserID  uuid.UUID `json:"user_id" binding:"required"`
	Action  string    `json:"action" binding:"required"`
	Comment string    `json:"comment"`
}

// Validate handles POST /admin/organizer/validate: approve or reject a
// user's pending request. The decision is validated before any write.
func (h *Handler) Validate(c *gin.Context) {
	admin := middleware.User(c)

	var body ValidateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "user_id and action are required")
		return
	}
	if body.Action != "approve" && body.Action != "reject" {
		response.Error(c, apperr.Invalid("invalid action, must be 'approve' or 'reject'"))
		return
	}

	approve := body.Action == "approve"
	newRole := h.roles.User()
	if approve {
		newRole = h.roles.Organizer()
	}

	user, adjudicated, err := h.store.Adjudicate(c.Request.Context(), AdjudicateParams{
		TargetUserID: body.UserID,
		Approve:      approve,
		NewRoleID:    newRole,
		ReviewerID:   admin.ID,
		Comment:      body.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), user.ID)
	}
	if adjudicated == 0 {
		// Another admin adjudicated concurrently; the user row took this
		// decision anyway (last-write-wins, accepted race).
		h.logger.Warn("no pending request matched adjudication",
			zap.String("user_id", body.UserID.String()),
			zap.String("action", body.Action))
	}

	h.notifyDecision(c.Request.Context(), user, approve, body.Comment)

	h.logger.Info("organizer request adjudicated",
		zap.String("user_id", user.ID.String()),
		zap.String("reviewed_by", admin.ID.String()),
		zap.String("status", user.OrganizerStatus))
	response.OK(c, gin.H{"status": user.OrganizerStatus, "user": user.ToPublic()})
}

// Revoke handles DELETE /admin/organizer/:id: demotes an organizer back to
// a simple user and removes the organizer profile.
func (h *Handler) Revoke(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.store.Revoke(c.Request.Context(), targetID, h.roles.User())
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), user.ID)
	}

	h.logger.Info("organizer revoked", zap.String("user_id", user.ID.String()))
	response.OK(c, gin.H{"message": "organizer demoted to simple user", "user": user.ToPublic()})
}

// Profile handles GET /organizer/profile: the caller's own organizer profile.
func (h *Handler) Profile(c *gin.Context) {
	user := middleware.User(c)
	profile, err := h.store.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}

// ListPending handles GET /admin/organizer/requests.
func (h *Handler) ListPending(c *gin.Context) {
	list, err := h.store.ListPendingRequests(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load requests")
		return
	}
	response.OK(c, list)
}

// ListAll handles GET /admin/organizer/all-requests.
func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.store.ListAllRequests(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load requests")
		return
	}
	response.OK(c, list)
}

// ListOrganizers handles GET /admin/organizer/all.
func (h *Handler) ListOrganizers(c *gin.Context) {
	list, err := h.store.ListOrganizers(c.Request.Context(), h.roles.Organizer())
	if err != nil {
		response.Internal(c, "failed to load organizers")
		return
	}
	response.OK(c, list)
}

func (h *Handler) notifyDecision(ctx context.Context, user *models.User, approved bool, comment string) {
	if h.notifier == nil {
		return
	}
	subject := "Your organizer request was rejected"
	bodyText := "Your organizer request was rejected."
	if approved {
		subject = "Your organizer request was approved"
		bodyText = "Congratulations, your organizer request was approved. You can now publish events."
	}
	if comment != "" {
		bodyText = fmt.Sprintf("%s\n\nReviewer comment: %s", bodyText, comment)
	}
	err := h.notifier.EnqueueEmail(ctx, queue.EmailPayload{
		EmailType: queue.EmailTypeOrganizerDecided,
		Recipient: user.Email,
		Subject:   subject,
		Body:      bodyText,
	})
	if err != nil {
		h.logger.Warn("failed to enqueue decision email", zap.Error(err), zap.String("user_id", user.ID.String()))
	}
}
