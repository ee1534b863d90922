package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eventora/backend/internal/models"
)

// ContextIdentity is the gin context key for the resolved identity.
const ContextIdentity = "identity"

// SessionCookie is the cookie consulted when no Authorization header is set.
const SessionCookie = "session_token"

// IdentityResolver resolves a raw session token into an identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, rawToken string) models.Identity
}

// Session returns a middleware that resolves the caller's identity once per
// request and stores it in the context. It never aborts: anonymous callers
// proceed and hit the guards on protected routes.
func Session(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				token = cookie
			}
		}
		c.Set(ContextIdentity, resolver.Resolve(c.Request.Context(), token))
		c.Next()
	}
}

// Identity returns the resolved identity from the gin context, anonymous
// when the session middleware did not run.
func Identity(c *gin.Context) models.Identity {
	if v, ok := c.Get(ContextIdentity); ok {
		if id, ok := v.(models.Identity); ok {
			return id
		}
	}
	return models.Identity{}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
