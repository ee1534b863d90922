package users

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventora/backend/internal/middleware"
	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/internal/roles"
	"github.com/eventora/backend/pkg/apperr"
	"github.com/eventora/backend/pkg/response"
)

// Store is the persistence surface of the admin user mutators.
type Store interface {
	SetRole(ctx context.Context, userID uuid.UUID, roleID int) (*models.User, error)
	SetStatus(ctx context.Context, userID uuid.UUID, status string) (*models.User, error)
	List(ctx context.Context) ([]models.UserPublic, error)
}

// CacheInvalidator drops cached user rows after a mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID)
}

// Handler handles admin user moderation endpoints. All routes are mounted
// behind the admin guard.
type Handler struct {
	store  Store
	roles  *roles.Registry
	cache  CacheInvalidator
	logger *zap.Logger
}

// NewHandler creates a users handler. cache may be nil.
func NewHandler(store Store, reg *roles.Registry, cache CacheInvalidator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, roles: reg, cache: cache, logger: logger}
}

// SetRoleBody is the body for PATCH /admin/users/:id/role.
type SetRoleBody struct {
	RoleID int `json:"role_id" binding:"required"`
}

// SetRole handles PATCH /admin/users/:id/role.
func (h *Handler) SetRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var body SetRoleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "role_id is required")
		return
	}
	if !h.roles.Exists(body.RoleID) {
		response.Error(c, apperr.Invalid("unknown role id"))
		return
	}

	user, err := h.store.SetRole(c.Request.Context(), userID, body.RoleID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c, user.ID)

	admin := middleware.User(c)
	h.logger.Info("user role updated",
		zap.String("user_id", user.ID.String()),
		zap.Int("role_id", body.RoleID),
		zap.String("updated_by", admin.ID.String()))
	response.OK(c, h.public(user))
}

// SetStatusBody is the body for PATCH /admin/users/:id/status.
type SetStatusBody struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus handles PATCH /admin/users/:id/status. Switching a user to
// inactive drops their cached row so the session resolver treats them as
// anonymous on the very next request.
func (h *Handler) SetStatus(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var body SetStatusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "status is required")
		return
	}
	if body.Status != models.StatusActive && body.Status != models.StatusInactive {
		response.Error(c, apperr.Invalid("status must be 'active' or 'inactive'"))
		return
	}

	user, err := h.store.SetStatus(c.Request.Context(), userID, body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c, user.ID)

	admin := middleware.User(c)
	h.logger.Info("user status updated",
		zap.String("user_id", user.ID.String()),
		zap.String("status", body.Status),
		zap.String("updated_by", admin.ID.String()))
	response.OK(c, h.public(user))
}

// List handles GET /admin/users.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	for i := range list {
		list[i].Role = h.roles.NameOf(list[i].RoleID)
	}
	response.OK(c, list)
}

func (h *Handler) invalidate(c *gin.Context, id uuid.UUID) {
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), id)
	}
}

func (h *Handler) public(u *models.User) models.UserPublic {
	pub := u.ToPublic()
	pub.Role = h.roles.NameOf(u.RoleID)
	return pub
}
