package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventora/backend/internal/middleware"
	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/internal/roles"
	"github.com/eventora/backend/pkg/apperr"
)

type fakeStore struct {
	users      map[uuid.UUID]*models.User
	roleSets   int
	statusSets int
	lastRoleID int
	lastStatus string
}

func (f *fakeStore) SetRole(_ context.Context, userID uuid.UUID, roleID int) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	f.roleSets++
	f.lastRoleID = roleID
	u.RoleID = roleID
	return u, nil
}

func (f *fakeStore) SetStatus(_ context.Context, userID uuid.UUID, status string) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	f.statusSets++
	f.lastStatus = status
	u.Status = status
	return u, nil
}

func (f *fakeStore) List(context.Context) ([]models.UserPublic, error) {
	var list []models.UserPublic
	for _, u := range f.users {
		list = append(list, u.ToPublic())
	}
	return list, nil
}

type fakeCache struct {
	invalidated []uuid.UUID
}

func (f *fakeCache) Invalidate(_ context.Context, id uuid.UUID) {
	f.invalidated = append(f.invalidated, id)
}

type fixture struct {
	store  *fakeStore
	cache  *fakeCache
	router *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg, err := roles.NewRegistry([]models.Role{
		{ID: 1, Name: roles.NameAdmin},
		{ID: 2, Name: roles.NameOrganizer},
		{ID: 3, Name: roles.NameUser},
		{ID: 4, Name: roles.NameModerator},
	})
	require.NoError(t, err)

	f := &fixture{
		store: &fakeStore{users: map[uuid.UUID]*models.User{}},
		cache: &fakeCache{},
	}
	h := NewHandler(f.store, reg, f.cache, nil)

	admin := &models.User{ID: uuid.New(), RoleID: 1, Status: models.StatusActive}
	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUser, admin)
	})
	f.router.PATCH("/admin/users/:id/role", h.SetRole)
	f.router.PATCH("/admin/users/:id/status", h.SetStatus)
	f.router.GET("/admin/users", h.List)
	return f
}

func (f *fixture) patch(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPatch, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func seedUser(f *fixture) *models.User {
	u := &models.User{ID: uuid.New(), Email: "u@example.com", RoleID: 3, Status: models.StatusActive}
	f.store.users[u.ID] = u
	return u
}

func TestSetRole(t *testing.T) {
	f := newFixture(t)
	target := seedUser(f)

	w := f.patch(t, fmt.Sprintf("/admin/users/%s/role", target.ID), gin.H{"role_id": 4})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 4, target.RoleID)
	require.Equal(t, []uuid.UUID{target.ID}, f.cache.invalidated)
}

func TestSetRoleUnknownRoleWritesNothing(t *testing.T) {
	f := newFixture(t)
	target := seedUser(f)

	w := f.patch(t, fmt.Sprintf("/admin/users/%s/role", target.ID), gin.H{"role_id": 42})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, f.store.roleSets)
	require.Equal(t, 3, target.RoleID)
	require.Empty(t, f.cache.invalidated)
}

func TestSetRoleUnknownUser(t *testing.T) {
	f := newFixture(t)

	w := f.patch(t, fmt.Sprintf("/admin/users/%s/role", uuid.New()), gin.H{"role_id": 2})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetRoleInvalidID(t *testing.T) {
	f := newFixture(t)

	w := f.patch(t, "/admin/users/nope/role", gin.H{"role_id": 2})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, f.store.roleSets)
}

func TestSetStatusDeactivates(t *testing.T) {
	f := newFixture(t)
	target := seedUser(f)

	w := f.patch(t, fmt.Sprintf("/admin/users/%s/status", target.ID), gin.H{"status": "inactive"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.StatusInactive, target.Status)
	// The cached row must be dropped so the resolver sees the new status.
	require.Equal(t, []uuid.UUID{target.ID}, f.cache.invalidated)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	f := newFixture(t)
	target := seedUser(f)

	for _, status := range []string{"banned", "ACTIVE", ""} {
		w := f.patch(t, fmt.Sprintf("/admin/users/%s/status", target.ID), gin.H{"status": status})
		require.Equal(t, http.StatusBadRequest, w.Code, "status %q", status)
	}
	require.Zero(t, f.store.statusSets)
	require.Equal(t, models.StatusActive, target.Status)
}

func TestListFillsRoleNames(t *testing.T) {
	f := newFixture(t)
	seedUser(f)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []models.UserPublic `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, roles.NameUser, body.Data[0].Role)
}
