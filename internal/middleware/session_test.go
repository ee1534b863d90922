package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eventora/backend/internal/access"
	"github.com/eventora/backend/internal/models"
	"github.com/eventora/backend/internal/roles"
)

type stubResolver struct {
	wantToken string
	identity  models.Identity
}

func (s *stubResolver) Resolve(_ context.Context, rawToken string) models.Identity {
	if rawToken == s.wantToken && s.wantToken != "" {
		return s.identity
	}
	return models.Identity{}
}

func resolvedIdentity() models.Identity {
	return models.Identity{
		User:    &models.User{ID: uuid.New(), RoleID: 3, Status: models.StatusActive},
		Session: &models.Session{ID: uuid.New()},
	}
}

func performSession(t *testing.T, resolver IdentityResolver, mutate func(*http.Request)) models.Identity {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var got models.Identity
	router := gin.New()
	router.Use(Session(resolver))
	router.GET("/probe", func(c *gin.Context) {
		got = Identity(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	mutate(req)
	router.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestSessionBearerToken(t *testing.T) {
	want := resolvedIdentity()
	resolver := &stubResolver{wantToken: "tok123", identity: want}

	got := performSession(t, resolver, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer tok123")
	})
	require.False(t, got.Anonymous())
	require.Equal(t, want.User.ID, got.User.ID)
}

func TestSessionCookieFallback(t *testing.T) {
	want := resolvedIdentity()
	resolver := &stubResolver{wantToken: "tok456", identity: want}

	got := performSession(t, resolver, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok456"})
	})
	require.False(t, got.Anonymous())
}

func TestSessionHeaderWinsOverCookie(t *testing.T) {
	want := resolvedIdentity()
	resolver := &stubResolver{wantToken: "header-token", identity: want}

	got := performSession(t, resolver, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer header-token")
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-token"})
	})
	require.False(t, got.Anonymous())
}

func TestSessionMalformedHeaderIsAnonymous(t *testing.T) {
	resolver := &stubResolver{wantToken: "tok", identity: resolvedIdentity()}

	for _, header := range []string{"tok", "Basic tok", ""} {
		got := performSession(t, resolver, func(r *http.Request) {
			if header != "" {
				r.Header.Set("Authorization", header)
			}
		})
		require.True(t, got.Anonymous(), "header %q", header)
	}
}

func TestGuardAbortsWithStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg, err := roles.NewRegistry([]models.Role{
		{ID: 1, Name: roles.NameAdmin},
		{ID: 2, Name: roles.NameOrganizer},
		{ID: 3, Name: roles.NameUser},
		{ID: 4, Name: roles.NameModerator},
	})
	require.NoError(t, err)
	guards := access.NewGuards(reg)

	simpleUser := models.Identity{
		User:    &models.User{ID: uuid.New(), RoleID: 3, Status: models.StatusActive},
		Session: &models.Session{ID: uuid.New()},
	}

	cases := []struct {
		name     string
		identity models.Identity
		status   int
	}{
		{"anonymous gets 401", models.Identity{}, http.StatusUnauthorized},
		{"wrong role gets 403", simpleUser, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := &stubResolver{wantToken: "tok", identity: tc.identity}
			router := gin.New()
			router.Use(Session(resolver))
			router.GET("/admin", RequireAdmin(guards), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer tok")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, tc.status, w.Code)
		})
	}
}
