package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventora/backend/internal/middleware"
	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/internal/roles"
	"github.com/eventora/backend/pkg/apperr"
)

type fakeStore struct {
	events  map[uuid.UUID]*models.Event
	updated []uuid.UUID
	deleted []uuid.UUID
}

func (f *fakeStore) Create(_ context.Context, p CreateParams) (*models.Event, error) {
	return nil, apperr.Internal("not implemented", nil)
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, apperr.NotFound("event not found")
	}
	return e, nil
}

func (f *fakeStore) ListAll(context.Context) ([]*models.Event, error) {
	var list []*models.Event
	for _, e := range f.events {
		list = append(list, e)
	}
	return list, nil
}

func (f *fakeStore) ListByOwner(_ context.Context, userID uuid.UUID) ([]*models.Event, error) {
	var list []*models.Event
	for _, e := range f.events {
		if e.UserID == userID {
			list = append(list, e)
		}
	}
	return list, nil
}

func (f *fakeStore) ListPublished(context.Context) ([]*models.Event, error) {
	return nil, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, _ UpdateParams) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, apperr.NotFound("event not found")
	}
	f.updated = append(f.updated, id)
	return e, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.events[id]; !ok {
		return apperr.NotFound("event not found")
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) IncrementViews(context.Context, uuid.UUID) error { return nil }

func (f *fakeStore) SetFeatured(_ context.Context, id uuid.UUID, _ bool) (*models.Event, error) {
	return f.GetByID(context.Background(), id)
}

func (f *fakeStore) CountByOwner(context.Context, uuid.UUID, *time.Time, *time.Time) (int, error) {
	return 0, nil
}

func (f *fakeStore) CountByOrganizers(context.Context, int) ([]OrganizerCount, error) {
	return nil, nil
}

func testRegistry(t *testing.T) *roles.Registry {
	t.Helper()
	reg, err := roles.NewRegistry([]models.Role{
		{ID: 1, Name: roles.NameAdmin},
		{ID: 2, Name: roles.NameOrganizer},
		{ID: 3, Name: roles.NameUser},
		{ID: 4, Name: roles.NameModerator},
	})
	require.NoError(t, err)
	return reg
}

func newTestRouter(store *fakeStore, reg *roles.Registry, caller *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, reg, nil, nil)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUser, caller)
	})
	router.GET("/events", h.List)
	router.PATCH("/events/:id", RequireOwnership(store, reg), h.Update)
	router.DELETE("/events/:id", RequireOwnership(store, reg), h.Delete)
	return router
}

func TestListRoleDispatch(t *testing.T) {
	reg := testRegistry(t)
	organizer := &models.User{ID: uuid.New(), RoleID: reg.Organizer()}
	other := &models.User{ID: uuid.New(), RoleID: reg.Organizer()}
	store := &fakeStore{events: map[uuid.UUID]*models.Event{}}
	for i, owner := range []*models.User{organizer, organizer, other} {
		id := uuid.New()
		store.events[id] = &models.Event{ID: id, Title: fmt.Sprintf("event %d", i), UserID: owner.ID}
	}

	listLen := func(t *testing.T, caller *models.User) int {
		t.Helper()
		router := newTestRouter(store, reg, caller)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Data []*models.Event `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return len(body.Data)
	}

	require.Equal(t, 3, listLen(t, &models.User{ID: uuid.New(), RoleID: reg.Admin()}))
	require.Equal(t, 2, listLen(t, organizer))
	require.Equal(t, 1, listLen(t, other))

	// Simple users and moderators are signed in but own nothing: they get
	// an empty list, not a 403.
	require.Equal(t, 0, listLen(t, &models.User{ID: uuid.New(), RoleID: reg.User()}))
	require.Equal(t, 0, listLen(t, &models.User{ID: uuid.New(), RoleID: reg.Moderator()}))
}

func TestRequireOwnership(t *testing.T) {
	reg := testRegistry(t)
	owner := &models.User{ID: uuid.New(), RoleID: reg.Organizer()}
	eventID := uuid.New()

	patch := func(t *testing.T, caller *models.User, target uuid.UUID) (*fakeStore, *httptest.ResponseRecorder) {
		t.Helper()
		store := &fakeStore{events: map[uuid.UUID]*models.Event{
			eventID: {ID: eventID, Title: "gallery night", UserID: owner.ID},
		}}
		router := newTestRouter(store, reg, caller)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/events/"+target.String(), bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return store, w
	}

	t.Run("owner may update", func(t *testing.T) {
		store, w := patch(t, owner, eventID)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, []uuid.UUID{eventID}, store.updated)
	})

	t.Run("admin may update any event", func(t *testing.T) {
		admin := &models.User{ID: uuid.New(), RoleID: reg.Admin()}
		store, w := patch(t, admin, eventID)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, []uuid.UUID{eventID}, store.updated)
	})

	t.Run("other organizer is rejected", func(t *testing.T) {
		intruder := &models.User{ID: uuid.New(), RoleID: reg.Organizer()}
		store, w := patch(t, intruder, eventID)
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Empty(t, store.updated)
	})

	t.Run("unknown event", func(t *testing.T) {
		store, w := patch(t, owner, uuid.New())
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Empty(t, store.updated)
	})

	t.Run("delete is guarded the same way", func(t *testing.T) {
		intruder := &models.User{ID: uuid.New(), RoleID: reg.Organizer()}
		store := &fakeStore{events: map[uuid.UUID]*models.Event{
			eventID: {ID: eventID, UserID: owner.ID},
		}}
		router := newTestRouter(store, reg, intruder)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/events/"+eventID.String(), nil))
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Empty(t, store.deleted)
	})
}

func TestParseEventDate(t *testing.T) {
	d, err := parseEventDate("2026-09-15")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = parseEventDate("2026-09-15T18:30:00Z")
	require.NoError(t, err)
	require.Equal(t, 18, d.Hour())

	for _, raw := range []string{"", "15/09/2026", "tomorrow"} {
		_, err := parseEventDate(raw)
		require.Error(t, err, "raw %q", raw)
	}
}

func TestNormalizePriceType(t *testing.T) {
	price := func(v float64) *float64 { return &v }

	require.Equal(t, models.PriceTypeFree, normalizePriceType("FREE", nil))
	require.Equal(t, models.PriceTypePaid, normalizePriceType("PAID", nil))

	// Unknown values fall back on the price.
	require.Equal(t, models.PriceTypePaid, normalizePriceType("", price(12.50)))
	require.Equal(t, models.PriceTypeFree, normalizePriceType("", price(0)))
	require.Equal(t, models.PriceTypeFree, normalizePriceType("gratuit", nil))
}
