package manager

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "visortmo.com"})
	assert.Error(t, err)

	m, err := New(Options{})
	require.NoError(t, err)
	assert.Equal(t, "visortmo.com", m.String())
}

func TestLogin_PostsExtractedToken(t *testing.T) {
	s := newSite(t, map[string]string{"/": "<html><body>inicio</body></html>"})
	m := newTestManager(t, s.URL, true)

	require.False(t, m.Authenticated())
	require.NoError(t, m.Login(context.Background(), "reader@example.com", "secret", true))

	assert.True(t, m.Authenticated())
	assert.Equal(t, map[string]string{
		"email":    "reader@example.com",
		"password": "secret",
		"remember": "true",
		"_token":   "csrf-Zx81-token",
	}, s.loginForm)

	assert.Equal(t, []string{"GET /login", "POST /login", "GET /"}, s.requests())
}

func TestLogin_SendsRandomUserAgent(t *testing.T) {
	s := newSite(t, map[string]string{"/": "<html></html>"})
	m := newTestManager(t, s.URL, true)

	require.NoError(t, m.Login(context.Background(), "reader@example.com", "secret", false))

	require.NotEmpty(t, s.agents)
	for _, ua := range s.agents {
		assert.NotEmpty(t, ua)
		assert.False(t, strings.HasPrefix(ua, "colly"), ua)
	}
	assert.Equal(t, "false", s.loginForm["remember"])
}

func TestLogin_SessionCookieIsKept(t *testing.T) {
	s := newSite(t, map[string]string{
		"/": "<html></html>",
		"/profile/groups": listsPage(
			[2]string{"Leyendo", "/lists/reading"},
		),
	})
	m := newTestManager(t, s.URL, true)

	require.NoError(t, m.Login(context.Background(), "reader@example.com", "secret", false))

	lists, err := m.GetURLState(context.Background())
	require.NoError(t, err)
	assert.Len(t, lists, 1)
}

func TestLogin_Rejected(t *testing.T) {
	s := newSite(t, nil)
	m := newTestManager(t, s.URL, true)

	err := m.Login(context.Background(), "reader@example.com", "wrong", false)

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr), "got %v", err)
	assert.Equal(t, 422, authErr.StatusCode)
	assert.Contains(t, authErr.Body, "credentials do not match")
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.False(t, m.Authenticated())
}

func TestLogin_FailedRetryClearsSession(t *testing.T) {
	s := newSite(t, map[string]string{"/": "<html><body>inicio</body></html>"})
	m := newTestManager(t, s.URL, true)

	require.NoError(t, m.Login(context.Background(), "reader@example.com", "secret", false))
	require.True(t, m.Authenticated())

	err := m.Login(context.Background(), "reader@example.com", "wrong", false)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.False(t, m.Authenticated())

	_, err = m.GetURLState(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestLogin_MissingToken(t *testing.T) {
	s := newSite(t, nil)
	s.loginHTML = `<html><body><form><input name="email"><input name="password"></form></body></html>`
	m := newTestManager(t, s.URL, true)

	err := m.Login(context.Background(), "reader@example.com", "secret", false)

	assert.ErrorIs(t, err, ErrParse)
	assert.NotErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), "csrf token")
	assert.Zero(t, s.hitCount("POST /login"))
	assert.False(t, m.Authenticated())
}

func TestLogin_Offline(t *testing.T) {
	s := newSite(t, nil)
	m := newTestManager(t, s.URL, true)
	s.Close()

	err := m.Login(context.Background(), "reader@example.com", "secret", false)

	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrParse)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Zero(t, netErr.StatusCode)
}

func TestLogin_CancelledContext(t *testing.T) {
	s := newSite(t, nil)
	m := newTestManager(t, s.URL, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Login(ctx, "reader@example.com", "secret", false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.requests())
}
