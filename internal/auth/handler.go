package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventora/backend/internal/middleware"
	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/internal/roles"
	"github.com/eventora/backend/pkg/apperr"
	"github.com/eventora/backend/pkg/response"
	"github.com/eventora/backend/pkg/utils"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with the session token.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	tokens *TokenService
	roles  *roles.Registry
	cache  *UserCache
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, tokens *TokenService, reg *roles.Registry, cache *UserCache, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, tokens: tokens, roles: reg, cache: cache, logger: logger}
}

// Register handles POST /auth/register. New accounts always start as simple
// users; privileges are granted only through the organizer workflow or an
// admin mutation.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.CreateUser(c.Request.Context(), req.Email, hash, req.Name, h.roles.User())
	if err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.repo.CreateSession(c.Request.Context(), user.ID, h.tokens.Lifetime())
	if err != nil {
		response.Internal(c, "failed to create session")
		return
	}
	token, err := h.tokens.Generate(session.ID, user.ID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: h.public(user)})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}
	if user.Status == models.StatusInactive {
		response.Error(c, apperr.Forbidden("account disabled"))
		return
	}

	session, err := h.repo.CreateSession(c.Request.Context(), user.ID, h.tokens.Lifetime())
	if err != nil {
		response.Internal(c, "failed to create session")
		return
	}
	token, err := h.tokens.Generate(session.ID, user.ID)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: h.public(user)})
}

// Logout handles POST /auth/logout. Deletes the session row so the token
// stops resolving, and drops the cached user.
func (h *Handler) Logout(c *gin.Context) {
	identity := middleware.Identity(c)
	if identity.Anonymous() {
		response.OK(c, gin.H{"message": "logged out"})
		return
	}
	if err := h.repo.DeleteSession(c.Request.Context(), identity.Session.ID); err != nil {
		response.Internal(c, "failed to log out")
		return
	}
	if h.cache != nil {
		h.cache.Invalidate(c.Request.Context(), identity.User.ID)
	}
	response.OK(c, gin.H{"message": "logged out"})
}

// Me handles GET /me. Anonymous callers get null user and session with 200.
func (h *Handler) Me(c *gin.Context) {
	identity := middleware.Identity(c)
	if identity.Anonymous() {
		response.OK(c, gin.H{"user": nil, "session": nil})
		return
	}
	response.OK(c, gin.H{
		"user":    h.public(identity.User),
		"session": identity.Session,
	})
}

func (h *Handler) public(u *models.User) models.UserPublic {
	pub := u.ToPublic()
	pub.Role = h.roles.NameOf(u.RoleID)
	return pub
}
