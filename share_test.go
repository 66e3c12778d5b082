package modal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShare(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, SharedProps(r.Context()))

	assert.Same(t, r, Share(r, nil), "sharing nothing keeps the request")
	assert.Same(t, r, Share(r, Props{}), "sharing nothing keeps the request")

	r1 := Share(r, NewProp("a", 1, nil))
	r2 := Share(r1, Props{NewProp("b", 2, nil), NewProp("a", 3, nil)})

	assert.Empty(t, SharedProps(r.Context()), "original request is untouched")
	assert.Len(t, SharedProps(r1.Context()), 1)
	assert.Len(t, SharedProps(r2.Context()), 3)

	a, ok := SharedProps(r2.Context()).Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, a.val)

	a, ok = SharedProps(r1.Context()).Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, a.val, "later sharing must not leak into earlier requests")

	_, ok = SharedProps(r2.Context()).Get("c")
	assert.False(t, ok)
}

func TestShare_RenderPrecedence(t *testing.T) {
	t.Parallel()

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = Share(r, Props{NewProp("title", "shared", nil), NewProp("user", "Jane", nil)})

		assert.NoError(t, Render(w, r, "Users/Index", NewRenderContext(
			WithProps(NewProp("title", "page", nil)),
		)))
	})

	r := httptest.NewRequest(http.MethodGet, "/users", nil)
	r.Header.Set("X-Inertia", "true")

	w := httptest.NewRecorder()
	NewMiddleware(NewRenderer(tpl, nil))(h).ServeHTTP(w, r)

	page, _ := decodePage(t, w)
	assert.JSONEq(t, `"page"`, string(page.Props["title"]))
	assert.JSONEq(t, `"Jane"`, string(page.Props["user"]))
}

func TestShareValidationErrors(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/users/5/edit", nil)

	assert.Same(t, r, ShareValidationErrors(r, nil, DefaultErrorBag))
	assert.Same(t, r, ShareValidationErrors(r, ValidationErrorMap{}, DefaultErrorBag))

	errorers, bag := validationErrors(r, NewRenderContext())
	assert.Empty(t, errorers)
	assert.Equal(t, DefaultErrorBag, bag)

	shared := ShareValidationErrors(r, ValidationErrorMap{"name": "Taken."}, "editUser")

	mirrored, err := mirrorRequest(shared, "/users", DefaultMaxMirrorDepth)
	require.NoError(t, err)

	errorers, bag = validationErrors(mirrored, NewRenderContext())
	require.Len(t, errorers, 1, "mirrored requests keep shared errors")
	assert.Equal(t, "editUser", bag)
}
