package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/eventora/backend/internal/access"
	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/pkg/response"
)

// ContextUser is the gin context key for the guarded user.
const ContextUser = "user"

// Guard adapts a pure access guard to a route middleware. The guarded user
// is stored in the context for the handler.
func Guard(check func(models.Identity) (*models.User, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := check(Identity(c))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(ContextUser, user)
		c.Next()
	}
}

// RequireAuth aborts anonymous requests with 401.
func RequireAuth(g *access.Guards) gin.HandlerFunc { return Guard(g.RequireAuth) }

// RequireAdmin aborts non-admin requests with 403 (401 when anonymous).
func RequireAdmin(g *access.Guards) gin.HandlerFunc { return Guard(g.RequireAdmin) }

// RequireModerator allows admins and moderators.
func RequireModerator(g *access.Guards) gin.HandlerFunc { return Guard(g.RequireModerator) }

// RequireOrganizer allows admins and organizers.
func RequireOrganizer(g *access.Guards) gin.HandlerFunc { return Guard(g.RequireOrganizer) }

// User returns the guarded user set by a preceding guard middleware.
func User(c *gin.Context) *models.User {
	return c.MustGet(ContextUser).(*models.User)
}
