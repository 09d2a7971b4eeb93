// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package web_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
	"github.com/JJHAVOK/full-admin-panel/internal/auth/memory"
	"github.com/JJHAVOK/full-admin-panel/internal/web"
)

const testCookieName = "panel_session"

type fixture struct {
	handler  http.Handler
	service  *auth.Service
	users    *memory.UserRepository
	sessions *memory.SessionRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := memory.NewUserRepository()
	sessions := memory.NewSessionRepository()
	hasher := auth.NewArgon2idHasherWithParams(auth.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1})
	service, err := auth.NewService(users, sessions, hasher)
	require.NoError(t, err)

	server, err := web.NewServer(service, web.Options{
		Addr:       ":0",
		CookieName: testCookieName,
	})
	require.NoError(t, err)

	return &fixture{
		handler:  server.Handler(),
		service:  service,
		users:    users,
		sessions: sessions,
	}
}

func (f *fixture) createAccount(t *testing.T, email, password string) {
	t.Helper()
	_, err := f.service.CreateAccount(context.Background(), email, password, "employee")
	require.NoError(t, err)
}

// postLogin submits the login form and returns the response.
func (f *fixture) postLogin(t *testing.T, email, password string) *http.Response {
	t.Helper()
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec.Result()
}

// sessionCookie extracts the session cookie from a login response.
func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func (f *fixture) get(path string, cookie *http.Cookie) *http.Response {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec.Result()
}

func TestLoginPage(t *testing.T) {
	f := newFixture(t)

	t.Run("serves the form", func(t *testing.T) {
		resp := f.get("/login", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `action="/login"`)
		assert.NotContains(t, string(body), "Incorrect email or password")
	})

	t.Run("shows rejection message after failed attempt", func(t *testing.T) {
		resp := f.get("/login?error=1", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Incorrect email or password")
	})

	t.Run("redirects authenticated visitors to the dashboard", func(t *testing.T) {
		f.createAccount(t, "alice@company.com", "Secret1!")
		cookie := sessionCookie(t, f.postLogin(t, "alice@company.com", "Secret1!"))

		resp := f.get("/login", cookie)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
	})
}

func TestLoginSubmit(t *testing.T) {
	t.Run("valid credentials set the session cookie", func(t *testing.T) {
		f := newFixture(t)
		f.createAccount(t, "alice@company.com", "Secret1!")

		resp := f.postLogin(t, "alice@company.com", "Secret1!")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

		cookie := sessionCookie(t, resp)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.Equal(t, "/", cookie.Path)
		assert.Equal(t, int(auth.DefaultSessionTTL/time.Second), cookie.MaxAge)
	})

	t.Run("wrong password redirects back with the error flag", func(t *testing.T) {
		f := newFixture(t)
		f.createAccount(t, "alice@company.com", "Secret1!")

		resp := f.postLogin(t, "alice@company.com", "wrong")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/login?error=1", resp.Header.Get("Location"))
		assert.Empty(t, resp.Cookies())
	})

	t.Run("unknown email gets the identical redirect", func(t *testing.T) {
		f := newFixture(t)
		f.createAccount(t, "alice@company.com", "Secret1!")

		wrongPassword := f.postLogin(t, "alice@company.com", "wrong")
		unknownEmail := f.postLogin(t, "nobody@company.com", "wrong")

		assert.Equal(t, wrongPassword.StatusCode, unknownEmail.StatusCode)
		assert.Equal(t, wrongPassword.Header.Get("Location"), unknownEmail.Header.Get("Location"))
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "alice@company.com", "Secret1!")
	cookie := sessionCookie(t, f.postLogin(t, "alice@company.com", "Secret1!"))

	resp := f.get("/logout", cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	cleared := sessionCookie(t, resp)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// The session is gone server-side: the old token no longer opens the gate.
	assert.Equal(t, 0, f.sessions.Len())
	resp = f.get("/dashboard", cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// Logging out again with the dead cookie still succeeds.
	resp = f.get("/logout", cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "alice@company.com", "Secret1!")
	cookie := sessionCookie(t, f.postLogin(t, "alice@company.com", "Secret1!"))

	resp := f.get("/dashboard", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "alice@company.com")
	assert.Contains(t, string(body), "employee")
}

func TestRoot(t *testing.T) {
	f := newFixture(t)

	t.Run("redirects to the dashboard", func(t *testing.T) {
		resp := f.get("/", nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/dashboard", resp.Header.Get("Location"))
	})

	t.Run("unknown paths are 404", func(t *testing.T) {
		resp := f.get("/nope", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

// failingSessionRepo simulates a broken session store.
type failingSessionRepo struct{}

var errStoreDown = errors.New("store down")

func (failingSessionRepo) Create(context.Context, *auth.Session) error { return errStoreDown }
func (failingSessionRepo) GetByTokenHash(context.Context, string) (*auth.Session, error) {
	return nil, errStoreDown
}
func (failingSessionRepo) UpdateLastSeen(context.Context, ulid.ULID, time.Time) error {
	return errStoreDown
}
func (failingSessionRepo) DeleteByTokenHash(context.Context, string) error { return errStoreDown }
func (failingSessionRepo) DeleteByUser(context.Context, ulid.ULID) error   { return errStoreDown }
func (failingSessionRepo) DeleteExpired(context.Context) (int64, error)    { return 0, errStoreDown }

func TestBrokenStoreNeverFailsOpen(t *testing.T) {
	users := memory.NewUserRepository()
	hasher := auth.NewArgon2idHasherWithParams(auth.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1})
	service, err := auth.NewService(users, failingSessionRepo{}, hasher)
	require.NoError(t, err)

	server, err := web.NewServer(service, web.Options{Addr: ":0", CookieName: testCookieName})
	require.NoError(t, err)
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "sometoken"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	resp := rec.Result()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Location"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "Dashboard")
}
