package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locationShare/internal/api"
	"locationShare/internal/auth"
	"locationShare/internal/authz"
	"locationShare/internal/config"
	"locationShare/internal/mapview"
	"locationShare/internal/service"
	"locationShare/internal/testutil"
	"locationShare/models"
	"locationShare/repository"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, t.Name())
	signer, err := auth.NewTokenSigner("client-test-secret")
	require.NoError(t, err)
	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)

	s := api.NewServer(config.HTTPConfig{Address: ":0"}, api.Deps{
		Accounts: service.NewAccounts(repository.NewUserRepository(d), 4),
		Sessions: auth.NewSessionManager(auth.NewMemorySessionStore(), signer, auth.SessionConfig{TTL: time.Hour}),
		Enforcer: enforcer,
		DB:       d,
	})
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, srv *httptest.Server) *App {
	t.Helper()
	c, err := New(srv.URL)
	require.NoError(t, err)
	return NewApp(c)
}

func people(ms []models.Marker) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.Person)
	}
	return out
}

func signIn(t *testing.T, a *App, user, pass string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	a.Form = Form{Username: user, Password: pass}
	require.NoError(t, a.Submit(ctx))
	require.Equal(t, Authenticated, a.State())
}

func TestApp_BootstrapThenMap(t *testing.T) {
	srv := newTestServer(t)
	a := newTestApp(t, srv)
	ctx := context.Background()

	require.NoError(t, a.Start(ctx))
	assert.Equal(t, Unauthenticated, a.State())
	assert.Equal(t, ModeBootstrap, a.Mode())

	a.Form = Form{Username: "root", Password: "pw"}
	require.NoError(t, a.Submit(ctx))
	assert.Equal(t, Authenticated, a.State())
	assert.True(t, a.User().IsAdmin())
	assert.Equal(t, "root", a.User().Username)

	assert.Equal(t, []string{"Alice", "Bob"}, a.People())
	assert.Equal(t, mapview.DefaultDate, a.Selection().Date())
	assert.Equal(t, []string{"Alice", "Bob"}, people(a.Markers()))
}

func TestApp_ToggleAndDate(t *testing.T) {
	srv := newTestServer(t)
	a := newTestApp(t, srv)
	signIn(t, a, "root", "pw")

	require.NoError(t, a.Toggle("Bob"))
	assert.Equal(t, []string{"Alice"}, people(a.Markers()))
	assert.Equal(t, 40.7128, a.Markers()[0].Location.Lat)

	require.NoError(t, a.Toggle("Bob"))
	assert.ElementsMatch(t, []string{"Alice", "Bob"}, people(a.Markers()))

	require.NoError(t, a.SetDate("2025-01-02"))
	assert.Equal(t, []string{"Alice"}, people(a.Markers()))

	require.NoError(t, a.SetDate("2025-01-03"))
	assert.Equal(t, []string{"Bob"}, people(a.Markers()))

	require.NoError(t, a.SetDate("2025-01-04"))
	assert.Empty(t, a.Markers())
	assert.Nil(t, a.View().Bounds)
}

func TestApp_StaleAdminFlag(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	first := newTestApp(t, srv)
	second := newTestApp(t, srv)
	require.NoError(t, first.Start(ctx))
	require.NoError(t, second.Start(ctx))
	require.Equal(t, ModeBootstrap, second.Mode())

	first.Form = Form{Username: "root", Password: "pw"}
	require.NoError(t, first.Submit(ctx))

	// second still believes no admin exists and posts to /api/init.
	second.Form = Form{Username: "root", Password: "pw"}
	err := second.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "admin already exists", err.Error())
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.Equal(t, Unauthenticated, second.State())

	// Restarting refreshes the flag.
	require.NoError(t, second.Start(ctx))
	assert.Equal(t, ModeLogin, second.Mode())
	require.NoError(t, second.Submit(ctx))
	assert.Equal(t, Authenticated, second.State())
}

func TestApp_LoginFailureStays(t *testing.T) {
	srv := newTestServer(t)
	signIn(t, newTestApp(t, srv), "root", "pw")

	a := newTestApp(t, srv)
	ctx := context.Background()
	require.NoError(t, a.Start(ctx))
	require.Equal(t, ModeLogin, a.Mode())

	a.Form = Form{Username: "root", Password: "wrong"}
	err := a.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, "invalid", err.Error())
	assert.Equal(t, Unauthenticated, a.State())
	assert.Nil(t, a.Markers())
	assert.ErrorIs(t, a.Toggle("Alice"), ErrNotAuthenticated)
}

func TestApp_CreateUserClearsForm(t *testing.T) {
	srv := newTestServer(t)
	admin := newTestApp(t, srv)
	signIn(t, admin, "root", "pw")
	ctx := context.Background()

	admin.Form = Form{Username: "bob", Password: "pw"}
	id, err := admin.CreateUser(ctx)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, Form{}, admin.Form)

	admin.Form = Form{Username: "carol", Password: ""}
	_, err = admin.CreateUser(ctx)
	require.Error(t, err)
	assert.Equal(t, "missing", err.Error())
	assert.Equal(t, Form{}, admin.Form)

	// The admin is still signed in as themselves.
	u, err := admin.api.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "root", u.Username)

	bob := newTestApp(t, srv)
	signIn(t, bob, "bob", "pw")
	assert.False(t, bob.User().IsAdmin())
	bob.Form = Form{Username: "eve", Password: "pw"}
	_, err = bob.CreateUser(ctx)
	require.Error(t, err)
	assert.Equal(t, "unauthorized", err.Error())
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestApp_ResumesSessionAndLogout(t *testing.T) {
	srv := newTestServer(t)
	c, err := New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	first := NewApp(c)
	signIn(t, first, "root", "pw")

	// A new app on the same cookie jar picks the session up.
	resumed := NewApp(c)
	require.NoError(t, resumed.Start(ctx))
	assert.Equal(t, Authenticated, resumed.State())

	require.NoError(t, resumed.Logout(ctx))
	assert.Equal(t, Unauthenticated, resumed.State())
	u, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:3000", "://bad"} {
		_, err := New(raw)
		assert.Error(t, err, raw)
	}
}
