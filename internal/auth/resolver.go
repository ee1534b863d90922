package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eventora/backend/internal/models"
)

// SessionStore is the persistence surface the resolver needs.
type SessionStore interface {
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenValidator validates raw session tokens.
type TokenValidator interface {
	Validate(token string) (*SessionClaims, error)
}

// IdentityCache caches user rows between requests.
type IdentityCache interface {
	Get(ctx context.Context, id uuid.UUID) *models.User
	Set(ctx context.Context, u *models.User)
}

// Resolver turns a raw session token into an Identity. Every failure mode
// degrades to the anonymous identity so public routes stay reachable.
type Resolver struct {
	store  SessionStore
	tokens TokenValidator
	cache  IdentityCache
	logger *zap.Logger
}

// NewResolver creates a session resolver. cache may be nil to disable
// identity caching.
func NewResolver(store SessionStore, tokens TokenValidator, cache IdentityCache, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, tokens: tokens, cache: cache, logger: logger}
}

// Resolve validates the token, loads session and user, and returns the
// caller's identity. Inactive accounts resolve to anonymous regardless of a
// valid session: disabling an account revokes all capability at once.
func (r *Resolver) Resolve(ctx context.Context, rawToken string) models.Identity {
	anonymous := models.Identity{}
	if rawToken == "" {
		return anonymous
	}

	claims, err := r.tokens.Validate(rawToken)
	if err != nil {
		return anonymous
	}

	session, err := r.store.GetSession(ctx, claims.SessionID)
	if err != nil {
		return anonymous
	}
	if session.UserID != claims.UserID || session.Expired(time.Now()) {
		return anonymous
	}

	user := r.lookupUser(ctx, session.UserID)
	if user == nil {
		return anonymous
	}
	if user.Status == models.StatusInactive {
		return anonymous
	}

	return models.Identity{User: user, Session: session}
}

func (r *Resolver) lookupUser(ctx context.Context, id uuid.UUID) *models.User {
	if r.cache != nil {
		if u := r.cache.Get(ctx, id); u != nil {
			return u
		}
	}
	user, err := r.store.GetUserByID(ctx, id)
	if err != nil {
		// Resolution failures degrade to anonymous, they never propagate.
		r.logger.Debug("identity lookup failed", zap.String("user_id", id.String()), zap.Error(err))
		return nil
	}
	if r.cache != nil {
		r.cache.Set(ctx, user)
	}
	return user
}
