package categories

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventora/backend/pkg/response"
)

// Handler handles category HTTP endpoints. Mutations are mounted behind
// the moderator guard.
type Handler struct {
	repo *Repository
}

// NewHandler creates a categories handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// NameBody is the body for category create and rename.
type NameBody struct {
	Name string `json:"name" binding:"required"`
}

// Create handles POST /categories.
func (h *Handler) Create(c *gin.Context) {
	var body NameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "category name is required")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		response.BadRequest(c, "category name is required")
		return
	}
	cat, err := h.repo.Create(c.Request.Context(), name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cat)
}

// List handles GET /categories.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load categories")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /categories/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	cat, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cat)
}

// Update handles PATCH /categories/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	var body NameBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "category name is required")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		response.BadRequest(c, "category name is required")
		return
	}
	cat, err := h.repo.Rename(c.Request.Context(), id, name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cat)
}

// Delete handles DELETE /categories/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "category deleted"})
}
