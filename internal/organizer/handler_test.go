package organizer

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
	"github.com/eventora/backend/pkg/queue"
)

type fakeStore struct {
	submitted   []uuid.UUID
	submitErr   error
	adjudicated []AdjudicateParams
	adjudicateN int64
	users       map[uuid.UUID]*models.User
	revoked     []uuid.UUID
}

func (f *fakeStore) SubmitRequest(_ context.Context, userID uuid.UUID, _ ProfileParams) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, userID)
	return nil
}

func (f *fakeStore) Adjudicate(_ context.Context, p AdjudicateParams) (*models.User, int64, error) {
	u, ok := f.users[p.TargetUserID]
	if !ok {
		return nil, 0, apperr.NotFound("user not found")
	}
	f.adjudicated = append(f.adjudicated, p)
	u.RoleID = p.NewRoleID
	if p.Approve {
		u.OrganizerStatus = models.OrganizerStatusApproved
	} else {
		u.OrganizerStatus = models.OrganizerStatusRejected
	}
	return u, f.adjudicateN, nil
}

func (f *fakeStore) Revoke(_ context.Context, targetUserID uuid.UUID, userRoleID int) (*models.User, error) {
	u, ok := f.users[targetUserID]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	f.revoked = append(f.revoked, targetUserID)
	u.RoleID = userRoleID
	u.OrganizerStatus = models.OrganizerStatusNone
	return u, nil
}

func (f *fakeStore) GetProfile(_ context.Context, userID uuid.UUID) (*models.OrganizerProfile, error) {
	return &models.OrganizerProfile{UserID: userID, Name: "Acme Events"}, nil
}

func (f *fakeStore) ListPendingRequests(context.Context) ([]RequestWithUser, error) {
	return nil, nil
}

func (f *fakeStore) ListAllRequests(context.Context) ([]RequestWithReviewer, error) {
	return nil, nil
}

func (f *fakeStore) ListOrganizers(context.Context, int) ([]OrganizerSummary, error) {
	return nil, nil
}

type fakeNotifier struct {
	sent []queue.EmailPayload
}

func (f *fakeNotifier) EnqueueEmail(_ context.Context, p queue.EmailPayload) error {
	f.sent = append(f.sent, p)
	return nil
}

type fakeCache struct {
	invalidated []uuid.UUID
}

func (f *fakeCache) Invalidate(_ context.Context, id uuid.UUID) {
	f.invalidated = append(f.invalidated, id)
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

type fixture struct {
	store    *fakeStore
	notifier *fakeNotifier
	cache    *fakeCache
	router   *gin.Engine
}

func newFixture(t *testing.T, caller *models.User) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		store:    &fakeStore{users: map[uuid.UUID]*models.User{}, adjudicateN: 1},
		notifier: &fakeNotifier{},
		cache:    &fakeCache{},
	}
	h := NewHandler(f.store, testRegistry(t), f.notifier, f.cache, nil)

	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUser, caller)
	})
	f.router.POST("/organizer/request", h.Submit)
	f.router.POST("/admin/organizer/validate", h.Validate)
	f.router.DELETE("/admin/organizer/:id", h.Revoke)
	return f
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func simpleUser() *models.User {
	return &models.User{
		ID:     uuid.New(),
		Email:  "user@example.com",
		RoleID: 3,
		Status: models.StatusActive,
	}
}

func adminUser() *models.User {
	return &models.User{
		ID:     uuid.New(),
		Email:  "admin@example.com",
		RoleID: 1,
		Status: models.StatusActive,
	}
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	caller := simpleUser()
	f := newFixture(t, caller)

	w := do(t, f.router, http.MethodPost, "/organizer/request",
		gin.H{"name": "Acme Events", "website": "https://acme.example"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, []uuid.UUID{caller.ID}, f.store.submitted)
	require.Equal(t, []uuid.UUID{caller.ID}, f.cache.invalidated)
}

func TestSubmitRejectsIneligibleRoles(t *testing.T) {
	for _, roleID := range []int{1, 2} {
		caller := simpleUser()
		caller.RoleID = roleID
		f := newFixture(t, caller)

		w := do(t, f.router, http.MethodPost, "/organizer/request", gin.H{"name": "Acme"})
		require.Equal(t, http.StatusForbidden, w.Code, "role %d", roleID)
		require.Empty(t, f.store.submitted)
	}
}

func TestSubmitRequiresName(t *testing.T) {
	f := newFixture(t, simpleUser())

	w := do(t, f.router, http.MethodPost, "/organizer/request", gin.H{"description": "no name"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, f.store.submitted)
}

func TestSubmitDuplicateIsConflict(t *testing.T) {
	f := newFixture(t, simpleUser())
	f.store.submitErr = apperr.Conflict("an organizer request is already pending")

	w := do(t, f.router, http.MethodPost, "/organizer/request", gin.H{"name": "Acme"})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestValidateApprovePromotesToOrganizer(t *testing.T) {
	admin := adminUser()
	f := newFixture(t, admin)
	target := simpleUser()
	target.OrganizerStatus = models.OrganizerStatusPending
	f.store.users[target.ID] = target

	w := do(t, f.router, http.MethodPost, "/admin/organizer/validate",
		gin.H{"user_id": target.ID, "action": "approve", "comment": "welcome"})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, f.store.adjudicated, 1)
	p := f.store.adjudicated[0]
	require.True(t, p.Approve)
	require.Equal(t, 2, p.NewRoleID)
	require.Equal(t, admin.ID, p.ReviewerID)
	require.Equal(t, "welcome", p.Comment)

	require.Equal(t, []uuid.UUID{target.ID}, f.cache.invalidated)
	require.Len(t, f.notifier.sent, 1)
	require.Equal(t, queue.EmailTypeOrganizerDecided, f.notifier.sent[0].EmailType)
	require.Equal(t, target.Email, f.notifier.sent[0].Recipient)
	require.Contains(t, f.notifier.sent[0].Body, "welcome")
}

func TestValidateRejectKeepsSimpleRole(t *testing.T) {
	f := newFixture(t, adminUser())
	target := simpleUser()
	target.OrganizerStatus = models.OrganizerStatusPending
	f.store.users[target.ID] = target

	w := do(t, f.router, http.MethodPost, "/admin/organizer/validate",
		gin.H{"user_id": target.ID, "action": "reject"})
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, f.store.adjudicated, 1)
	p := f.store.adjudicated[0]
	require.False(t, p.Approve)
	require.Equal(t, 3, p.NewRoleID)
	require.Equal(t, models.OrganizerStatusRejected, target.OrganizerStatus)
}

func TestValidateInvalidActionWritesNothing(t *testing.T) {
	f := newFixture(t, adminUser())
	target := simpleUser()
	f.store.users[target.ID] = target

	w := do(t, f.router, http.MethodPost, "/admin/organizer/validate",
		gin.H{"user_id": target.ID, "action": "maybe"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, f.store.adjudicated)
	require.Empty(t, f.notifier.sent)
	require.Empty(t, f.cache.invalidated)
}

func TestValidateUnknownUserIsNotFound(t *testing.T) {
	f := newFixture(t, adminUser())

	w := do(t, f.router, http.MethodPost, "/admin/organizer/validate",
		gin.H{"user_id": uuid.New(), "action": "approve"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Empty(t, f.notifier.sent)
}

func TestValidateConcurrentDecisionStillApplies(t *testing.T) {
	// When another admin already closed the request, the user row still
	// takes this decision (last write wins).
	f := newFixture(t, adminUser())
	f.store.adjudicateN = 0
	target := simpleUser()
	f.store.users[target.ID] = target

	w := do(t, f.router, http.MethodPost, "/admin/organizer/validate",
		gin.H{"user_id": target.ID, "action": "approve"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, target.RoleID)
}

func TestRevokeDemotesOrganizer(t *testing.T) {
	f := newFixture(t, adminUser())
	target := simpleUser()
	target.RoleID = 2
	target.OrganizerStatus = models.OrganizerStatusApproved
	f.store.users[target.ID] = target

	w := do(t, f.router, http.MethodDelete, fmt.Sprintf("/admin/organizer/%s", target.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []uuid.UUID{target.ID}, f.store.revoked)
	require.Equal(t, 3, target.RoleID)
	require.Equal(t, models.OrganizerStatusNone, target.OrganizerStatus)
	require.Equal(t, []uuid.UUID{target.ID}, f.cache.invalidated)
}

func TestRevokeInvalidID(t *testing.T) {
	f := newFixture(t, adminUser())

	w := do(t, f.router, http.MethodDelete, "/admin/organizer/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, f.store.revoked)
}
