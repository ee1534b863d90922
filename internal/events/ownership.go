package events

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventora/backend/internal/middleware"
	"github.com/eventora/backend/internal/roles"
	"github.com/eventora/backend/pkg/response"
)

// RequireOwnership validates that the caller owns the event or is an admin.
// Mount after an auth guard so middleware.User is set.
func RequireOwnership(repo Store, reg *roles.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid event id")
			c.Abort()
			return
		}
		event, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		user := middleware.User(c)
		if user.RoleID != reg.Admin() && event.UserID != user.ID {
			response.Forbidden(c, "not authorized for this event")
			c.Abort()
			return
		}
		c.Next()
	}
}
