package modal

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorRequest(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/users/5?tab=profile", strings.NewReader("name=Jane"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("X-Inertia", "true")
	r.AddCookie(&http.Cookie{Name: "session", Value: "abc"})
	r.RemoteAddr = "10.0.0.1:1234"

	m, err := mirrorRequest(r, "/users?tab=all&page=2", DefaultMaxMirrorDepth)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, m.Method)
	assert.Equal(t, "/users", m.URL.Path)
	assert.Equal(t, "profile", m.URL.Query().Get("tab"))
	assert.Equal(t, "2", m.URL.Query().Get("page"))
	assert.Equal(t, m.URL.RequestURI(), m.RequestURI)
	assert.Equal(t, r.Host, m.Host)
	assert.Equal(t, "10.0.0.1:1234", m.RemoteAddr)
	assert.Equal(t, "true", m.Header.Get("X-Inertia"))

	c, err := m.Cookie("session")
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Value)

	assert.Equal(t, 1, MirrorDepth(m.Context()))
	assert.Equal(t, "/users/5?tab=profile", pageURL(m))

	body, err := io.ReadAll(m.Body)
	require.NoError(t, err)
	assert.Equal(t, "name=Jane", string(body))

	require.NoError(t, r.ParseForm())
	assert.Equal(t, "Jane", r.PostForm.Get("name"), "original body must stay readable")
}

func TestMirrorRequest_HeadersAreCopied(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/users/5", nil)
	r.Header.Set("X-Custom", "a")

	m, err := mirrorRequest(r, "/users", DefaultMaxMirrorDepth)
	require.NoError(t, err)

	m.Header.Set("X-Custom", "b")
	assert.Equal(t, "a", r.Header.Get("X-Custom"))
}

func TestMirrorRequest_AbsoluteTarget(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/users/5", nil)

	m, err := mirrorRequest(r, "https://app.test/dashboard", DefaultMaxMirrorDepth)
	require.NoError(t, err)

	assert.Equal(t, "app.test", m.Host)
	assert.Equal(t, "/dashboard", m.URL.Path)
	assert.Empty(t, m.URL.Host)
	assert.Equal(t, "/dashboard", m.RequestURI)
}

func TestMirrorRequest_RelativeTarget(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/users/5/edit", nil)

	m, err := mirrorRequest(r, "../index", DefaultMaxMirrorDepth)
	require.NoError(t, err)

	assert.Equal(t, "/users/index", m.URL.Path)
}

func TestMirrorRequest_Depth(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/a", nil)
	assert.Equal(t, 0, MirrorDepth(r.Context()))
	assert.Equal(t, "/a", pageURL(r))

	m1, err := mirrorRequest(r, "/b", 2)
	require.NoError(t, err)

	m2, err := mirrorRequest(m1, "/c", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, MirrorDepth(m2.Context()))
	assert.Equal(t, "/a", pageURL(m2))

	_, err = mirrorRequest(m2, "/d", 2)
	require.ErrorIs(t, err, ErrMirrorDepthExceeded)
}

func TestMirrorRequest_InvalidTarget(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/a", nil)

	_, err := mirrorRequest(r, "http://[::1", DefaultMaxMirrorDepth)
	require.Error(t, err)
}
