package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/pkg/apperr"
)

type fakeStore struct {
	sessions map[uuid.UUID]*models.Session
	users    map[uuid.UUID]*models.User
	userGets int
}

func (f *fakeStore) GetSession(_ context.Context, id uuid.UUID) (*models.Session, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, apperr.NotFound("session not found")
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.userGets++
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user not found")
}

type fakeCache struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeCache) Get(_ context.Context, id uuid.UUID) *models.User { return f.users[id] }
func (f *fakeCache) Set(_ context.Context, u *models.User)            { f.users[u.ID] = u }

func newTestFixture(t *testing.T, status string) (*fakeStore, *TokenService, string, *models.User) {
	t.Helper()
	tokens := NewTokenService("test-secret", 1)
	user := &models.User{ID: uuid.New(), Email: "a@b.c", RoleID: 3, Status: status}
	session := &models.Session{ID: uuid.New(), UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	store := &fakeStore{
		sessions: map[uuid.UUID]*models.Session{session.ID: session},
		users:    map[uuid.UUID]*models.User{user.ID: user},
	}
	raw, err := tokens.Generate(session.ID, user.ID)
	require.NoError(t, err)
	return store, tokens, raw, user
}

func TestResolveActiveUser(t *testing.T) {
	store, tokens, raw, user := newTestFixture(t, models.StatusActive)
	r := NewResolver(store, tokens, nil, nil)

	id := r.Resolve(context.Background(), raw)
	require.False(t, id.Anonymous())
	require.Equal(t, user.ID, id.User.ID)
	require.Equal(t, user.ID, id.Session.UserID)
}

func TestResolveEmptyToken(t *testing.T) {
	store, tokens, _, _ := newTestFixture(t, models.StatusActive)
	r := NewResolver(store, tokens, nil, nil)

	require.True(t, r.Resolve(context.Background(), "").Anonymous())
}

func TestResolveGarbageToken(t *testing.T) {
	store, tokens, _, _ := newTestFixture(t, models.StatusActive)
	r := NewResolver(store, tokens, nil, nil)

	require.True(t, r.Resolve(context.Background(), "not-a-token").Anonymous())
}

func TestResolveWrongSecret(t *testing.T) {
	store, tokens, _, user := newTestFixture(t, models.StatusActive)
	other := NewTokenService("other-secret", 1)
	var sessionID uuid.UUID
	for id := range store.sessions {
		sessionID = id
	}
	forged, err := other.Generate(sessionID, user.ID)
	require.NoError(t, err)

	r := NewResolver(store, tokens, nil, nil)
	require.True(t, r.Resolve(context.Background(), forged).Anonymous())
}

func TestResolveRevokedSession(t *testing.T) {
	store, tokens, raw, _ := newTestFixture(t, models.StatusActive)
	// Logout deletes the row; the still-valid token must stop resolving.
	store.sessions = map[uuid.UUID]*models.Session{}

	r := NewResolver(store, tokens, nil, nil)
	require.True(t, r.Resolve(context.Background(), raw).Anonymous())
}

func TestResolveExpiredSession(t *testing.T) {
	store, tokens, raw, _ := newTestFixture(t, models.StatusActive)
	for _, s := range store.sessions {
		s.ExpiresAt = time.Now().Add(-time.Minute)
	}

	r := NewResolver(store, tokens, nil, nil)
	require.True(t, r.Resolve(context.Background(), raw).Anonymous())
}

func TestResolveSessionUserMismatch(t *testing.T) {
	store, tokens, _, user := newTestFixture(t, models.StatusActive)
	// A token whose user claim does not match the session row is rejected.
	var sessionID uuid.UUID
	for id := range store.sessions {
		sessionID = id
	}
	raw, err := tokens.Generate(sessionID, uuid.New())
	require.NoError(t, err)
	_ = user

	r := NewResolver(store, tokens, nil, nil)
	require.True(t, r.Resolve(context.Background(), raw).Anonymous())
}

func TestResolveInactiveUser(t *testing.T) {
	store, tokens, raw, _ := newTestFixture(t, models.StatusInactive)
	r := NewResolver(store, tokens, nil, nil)

	require.True(t, r.Resolve(context.Background(), raw).Anonymous())
}

func TestResolveUsesCache(t *testing.T) {
	store, tokens, raw, user := newTestFixture(t, models.StatusActive)
	cache := &fakeCache{users: map[uuid.UUID]*models.User{}}
	r := NewResolver(store, tokens, cache, nil)

	require.False(t, r.Resolve(context.Background(), raw).Anonymous())
	require.Equal(t, 1, store.userGets)

	// Second resolve hits the cache, not the store.
	require.False(t, r.Resolve(context.Background(), raw).Anonymous())
	require.Equal(t, 1, store.userGets)
	require.Equal(t, user.ID, cache.users[user.ID].ID)
}
